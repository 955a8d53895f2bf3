// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, object store, token store) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported storage backends.
const (
	DocumentBackendPostgres = "postgres"
	DocumentBackendMongo    = "mongo"

	AssetBackendS3     = "s3"
	AssetBackendMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the geopost API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	Version     string `env:"VERSION"      envDefault:"0.1.0-dev"`

	// EnableDevRoutes exposes the raw CRUD and image endpoints.
	// They are always enabled in development.
	EnableDevRoutes bool `env:"ENABLE_DEV_ROUTES" envDefault:"false"`

	// Document storage
	DocumentBackend string `env:"DOCUMENT_BACKEND" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Document Database (MongoDB)
	MongoURL      string `env:"MONGO_URL"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"geopost"`

	// Key-Value Cache (Redis). Optional: without it the orphan ledger is process-local.
	RedisURL string `env:"REDIS_URL"`

	// OrphanReapInterval is how often the API retries deleting orphaned assets. 0 disables.
	OrphanReapInterval time.Duration `env:"ORPHAN_REAP_INTERVAL" envDefault:"15m"`

	// Object Storage (S3-compatible)
	AssetBackend  string `env:"ASSET_BACKEND"  envDefault:"s3"`
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3Region      string `env:"S3_REGION"      envDefault:"us-east-1"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`
	S3UseSSL      bool   `env:"S3_USE_SSL"     envDefault:"true"`
	S3PublicURL   string `env:"S3_PUBLIC_URL"`
	AssetCacheLen int    `env:"ASSET_CACHE_SIZE" envDefault:"4096"`

	// Authentication tokens
	TokenTTL           time.Duration `env:"TOKEN_TTL"            envDefault:"24h"`
	TokenSweepInterval time.Duration `env:"TOKEN_SWEEP_INTERVAL" envDefault:"10m"`

	// StepTimeout bounds every individual asset store or document store call.
	StepTimeout time.Duration `env:"STEP_TIMEOUT" envDefault:"10s"`

	// MaxImageBytes is the per-image upload limit.
	MaxImageBytes int64 `env:"MAX_IMAGE_BYTES" envDefault:"5000000"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.DocumentBackend {
	case DocumentBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for document backend %q", c.DocumentBackend)
		}
	case DocumentBackendMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("config: MONGO_URL is required for document backend %q", c.DocumentBackend)
		}
	default:
		return fmt.Errorf("config: unknown DOCUMENT_BACKEND %q", c.DocumentBackend)
	}

	switch c.AssetBackend {
	case AssetBackendS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return fmt.Errorf("config: S3_ENDPOINT and S3_BUCKET are required for asset backend %q", c.AssetBackend)
		}
	case AssetBackendMemory:
	default:
		return fmt.Errorf("config: unknown ASSET_BACKEND %q", c.AssetBackend)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive")
	}

	if c.StepTimeout <= 0 {
		return fmt.Errorf("config: STEP_TIMEOUT must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DevRoutesEnabled reports whether the raw CRUD and image endpoints are mounted.
func (c *Config) DevRoutesEnabled() bool {
	return c.EnableDevRoutes || c.IsDevelopment()
}
