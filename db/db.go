// Package db reads photo location records from the configured backend and
// keeps a TTL snapshot of them for the map views.
package db

import (
	"context"
	"errors"
	"fmt"

	"go-photomap/config"
	"go-photomap/types"

	"go.uber.org/zap"
)

var ErrSnapshotNotFound = errors.New("location snapshot not found")

// LocationStore lists every photo location record.
type LocationStore interface {
	ListLocations(ctx context.Context) ([]types.LocationRecord, error)
}

// Exporter writes a location listing somewhere and reports where.
type Exporter interface {
	Export(ctx context.Context, payload *types.LocationsPayload) (string, error)
}

// Backend bundles the store, exporter and the cleanup for whatever clients
// were opened to build them.
type Backend struct {
	Store    LocationStore
	Exporter Exporter
	closers  []func()
}

func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// NewBackend opens the store selected by cfg.Store.Backend. Exports go to
// MinIO when it is configured, otherwise to a local file.
func NewBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	b := &Backend{}

	var s3 *S3Client
	if cfg.MinIO.Enabled() {
		var err error
		s3, err = NewS3Client(cfg.MinIO, logger)
		if err != nil {
			return nil, err
		}
	}

	switch cfg.Store.Backend {
	case config.BackendFile:
		b.Store = NewFileStore(cfg.Store.LocationsFile)
	case config.BackendFirestore:
		fs, err := NewFirestoreStore(ctx, cfg.Store.FirebaseCredentials, cfg.Store.FirestoreCollection)
		if err != nil {
			return nil, err
		}
		b.Store = fs
		b.closers = append(b.closers, fs.Close)
	case config.BackendPostgres:
		pg, err := NewPostgresStore(ctx, cfg.Store.DatabaseURL, cfg.Store.PostgresTable)
		if err != nil {
			return nil, err
		}
		b.Store = pg
		b.closers = append(b.closers, pg.Close)
	case config.BackendS3:
		if s3 == nil {
			return nil, fmt.Errorf("%w: s3 backend without MinIO settings", config.ErrInvalidConfig)
		}
		b.Store = s3.SnapshotStore(cfg.Store.SnapshotKey)
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Store.Backend)
	}

	if s3 != nil {
		if err := s3.EnsureBucket(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Exporter = s3.Exporter(cfg.ExportKey)
	} else {
		b.Exporter = NewFileExporter(cfg.ExportFile)
	}

	logger.Info("Location store ready",
		zap.String("backend", cfg.Store.Backend),
		zap.Bool("s3Export", s3 != nil))
	return b, nil
}
