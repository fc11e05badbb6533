package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go-photomap/config"
	"go-photomap/types"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Client wraps a MinIO client bound to one bucket.
type S3Client struct {
	client *minio.Client
	bucket string
	region string
	logger *zap.Logger
}

func NewS3Client(cfg config.MinIOConfig, logger *zap.Logger) (*S3Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: missing one or more of MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY", config.ErrInvalidConfig)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.Info("Connected to MinIO endpoint", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return &S3Client{client: client, bucket: cfg.Bucket, region: cfg.Region, logger: logger}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Client) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created bucket", zap.String("bucket", s.bucket))
	return nil
}

func (s *S3Client) SnapshotStore(key string) *S3Store {
	return &S3Store{s3: s, key: key}
}

func (s *S3Client) Exporter(key string) *S3Exporter {
	return &S3Exporter{s3: s, key: key}
}

// S3Store reads a LocationsPayload JSON snapshot object.
type S3Store struct {
	s3  *S3Client
	key string
}

func (s *S3Store) ListLocations(ctx context.Context) ([]types.LocationRecord, error) {
	object, err := s.s3.client.GetObject(ctx, s.s3.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	// GetObject is lazy; a missing key only surfaces on the first read.
	var payload types.LocationsPayload
	if err := json.NewDecoder(object).Decode(&payload); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrSnapshotNotFound, s.s3.bucket, s.key)
		}
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.key, err)
	}
	if payload.Locations == nil {
		payload.Locations = []types.LocationRecord{}
	}
	return payload.Locations, nil
}

// S3Exporter overwrites one object with the current listing.
type S3Exporter struct {
	s3  *S3Client
	key string
}

func (e *S3Exporter) Export(ctx context.Context, payload *types.LocationsPayload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	_, err = e.s3.client.PutObject(
		ctx,
		e.s3.bucket,
		e.key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to store export in S3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", e.s3.bucket, e.key), nil
}
