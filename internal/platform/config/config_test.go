// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/platform/config"
)

/*
TestLoad_Defaults verifies that defaults are applied when only required values are set.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/geopost")
	t.Setenv("ASSET_BACKEND", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.DocumentBackendPostgres, cfg.DocumentBackend)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.StepTimeout)
	assert.Equal(t, int64(5000000), cfg.MaxImageBytes)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.DevRoutesEnabled())
}

/*
TestValidate_Backends checks the cross-field backend requirements.
*/
func TestValidate_Backends(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{
			name: "postgres_without_url",
			cfg: config.Config{DocumentBackend: "postgres", AssetBackend: "memory",
				TokenTTL: time.Hour, StepTimeout: time.Second},
			wantErr: true,
		},
		{
			name: "mongo_with_url",
			cfg: config.Config{DocumentBackend: "mongo", MongoURL: "mongodb://localhost", AssetBackend: "memory",
				TokenTTL: time.Hour, StepTimeout: time.Second},
			wantErr: false,
		},
		{
			name: "s3_without_bucket",
			cfg: config.Config{DocumentBackend: "mongo", MongoURL: "mongodb://localhost", AssetBackend: "s3",
				S3Endpoint: "localhost:9000", TokenTTL: time.Hour, StepTimeout: time.Second},
			wantErr: true,
		},
		{
			name: "unknown_backend",
			cfg: config.Config{DocumentBackend: "sqlite", AssetBackend: "memory",
				TokenTTL: time.Hour, StepTimeout: time.Second},
			wantErr: true,
		},
		{
			name: "zero_ttl",
			cfg: config.Config{DocumentBackend: "mongo", MongoURL: "mongodb://localhost", AssetBackend: "memory",
				StepTimeout: time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestDevRoutesEnabled checks that production only exposes raw routes when asked.
*/
func TestDevRoutesEnabled(t *testing.T) {
	cfg := config.Config{Environment: "production"}
	assert.False(t, cfg.DevRoutesEnabled())

	cfg.EnableDevRoutes = true
	assert.True(t, cfg.DevRoutesEnabled())
}
