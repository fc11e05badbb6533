// Package events refreshes the location snapshot when a Kafka message says
// it changed.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"time"

	"go-photomap/config"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const readBackoff = time.Second

// KafkaReader is the part of kafka.Reader the consumer needs.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Refresher reloads the location snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Consumer reads snapshot-update messages. A message that is a MinIO bucket
// notification triggers a refresh only when one of its records names the
// snapshot key; any other message always triggers one.
type Consumer struct {
	reader      KafkaReader
	refresher   Refresher
	snapshotKey string
	backoff     time.Duration
	logger      *zap.Logger
}

func NewConsumer(cfg config.KafkaConfig, refresher Refresher, snapshotKey string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Broker},
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		// offsets are committed after the refresh
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader, refresher, snapshotKey, logger)
}

func newConsumer(reader KafkaReader, refresher Refresher, snapshotKey string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader:      reader,
		refresher:   refresher,
		snapshotKey: snapshotKey,
		backoff:     readBackoff,
		logger:      logger,
	}
}

// Run consumes until ctx is cancelled or the reader is closed, then closes
// the reader.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("Failed to close Kafka reader", zap.Error(err))
		}
	}()

	c.logger.Info("Starting Kafka consumer loop")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Info("Kafka consumer stopped")
				return nil
			}
			c.logger.Error("Error reading message", zap.Error(err))
			if !c.wait(ctx) {
				return nil
			}
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			if !c.wait(ctx) {
				return nil
			}
			if err := c.handle(ctx, msg); err != nil {
				// left uncommitted so the group redelivers it after a restart
				c.logger.Error("Giving up on message",
					zap.Int64("offset", msg.Offset),
					zap.Error(err))
				continue
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Warn("Failed to commit offset",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

// wait sleeps for the backoff and reports false if ctx ended first.
func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.backoff):
		return true
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	if !c.relevant(msg.Value) {
		c.logger.Debug("Ignoring notification for another object", zap.Int64("offset", msg.Offset))
		return nil
	}

	n, err := c.refresher.Refresh(ctx)
	if err != nil {
		c.logger.Error("Snapshot refresh failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		return err
	}
	c.logger.Info("Snapshot refreshed from event", zap.Int("locations", n), zap.Int64("offset", msg.Offset))
	return nil
}

func (c *Consumer) relevant(value []byte) bool {
	var event notification.Info
	if err := json.Unmarshal(value, &event); err != nil || len(event.Records) == 0 {
		return true
	}

	for _, record := range event.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			key = record.S3.Object.Key
		}
		if key == c.snapshotKey {
			return true
		}
	}
	return false
}
