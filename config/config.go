// Package config loads service settings from the environment (and an optional
// .env file) into a typed Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile      = "file"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendS3        = "s3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogDev   bool

	// LocationsAPIURL, when set, makes map views fetch locations over HTTP
	// from that base URL instead of reading the local store.
	LocationsAPIURL string
	FetchTimeout    time.Duration

	Store   StoreConfig
	MinIO   MinIOConfig
	Kafka   KafkaConfig
	Refresh RefreshConfig
	ViewTTL time.Duration

	ExportFile string
	ExportKey  string
}

type StoreConfig struct {
	Backend             string
	LocationsFile       string
	FirebaseCredentials string // base64 encoded service account JSON
	FirestoreCollection string
	DatabaseURL         string
	PostgresTable       string
	SnapshotKey         string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// Enabled reports whether enough settings are present to talk to MinIO.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != "" && m.AccessKey != "" && m.SecretKey != ""
}

type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
}

func (k KafkaConfig) Enabled() bool {
	return k.Broker != "" && k.Topic != ""
}

type RefreshConfig struct {
	Schedule string
	CacheTTL time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("LOCATIONS_API_URL", "")
	v.SetDefault("FETCH_TIMEOUT", "10s")

	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("LOCATIONS_FILE", "./data/locations.json")
	v.SetDefault("FIRESTORE_COLLECTION", "photoLocations")
	v.SetDefault("POSTGRES_TABLE", "photo_locations")
	v.SetDefault("SNAPSHOT_KEY", "snapshots/locations.json")

	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "photomap")
	v.SetDefault("MINIO_REGION", "")

	v.SetDefault("KAFKA_GROUP_ID", "go-photomap")

	v.SetDefault("REFRESH_SCHEDULE", "*/10 * * * *")
	v.SetDefault("LOCATIONS_CACHE_TTL", "15m")
	v.SetDefault("VIEW_TTL", "30m")

	v.SetDefault("EXPORT_FILE", "locations_export.json")
	v.SetDefault("EXPORT_KEY", "exports/locations_export.json")
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:            v.GetString("PORT"),
		GinMode:         v.GetString("GIN_MODE"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		LogDev:          v.GetBool("LOG_DEVELOPMENT"),
		LocationsAPIURL: v.GetString("LOCATIONS_API_URL"),
		FetchTimeout:    v.GetDuration("FETCH_TIMEOUT"),
		Store: StoreConfig{
			Backend:             strings.ToLower(v.GetString("STORE_BACKEND")),
			LocationsFile:       v.GetString("LOCATIONS_FILE"),
			FirebaseCredentials: v.GetString("FIREBASE_CREDENTIALS"),
			FirestoreCollection: v.GetString("FIRESTORE_COLLECTION"),
			DatabaseURL:         v.GetString("DATABASE_URL"),
			PostgresTable:       v.GetString("POSTGRES_TABLE"),
			SnapshotKey:         v.GetString("SNAPSHOT_KEY"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Region:    v.GetString("MINIO_REGION"),
		},
		Kafka: KafkaConfig{
			Broker:  v.GetString("KAFKA_BROKER"),
			Topic:   v.GetString("KAFKA_TOPIC"),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		Refresh: RefreshConfig{
			Schedule: v.GetString("REFRESH_SCHEDULE"),
			CacheTTL: v.GetDuration("LOCATIONS_CACHE_TTL"),
		},
		ViewTTL:    v.GetDuration("VIEW_TTL"),
		ExportFile: v.GetString("EXPORT_FILE"),
		ExportKey:  v.GetString("EXPORT_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings each store backend needs.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.LocationsFile == "" {
			problems = append(problems, "LOCATIONS_FILE is required for the file backend")
		}
	case BackendFirestore:
		if c.Store.FirebaseCredentials == "" {
			problems = append(problems, "FIREBASE_CREDENTIALS is required for the firestore backend")
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres backend")
		}
	case BackendS3:
		if !c.MinIO.Enabled() {
			problems = append(problems, "MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the s3 backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	if c.ViewTTL <= 0 {
		problems = append(problems, "VIEW_TTL must be positive")
	}
	if c.FetchTimeout <= 0 {
		problems = append(problems, "FETCH_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
