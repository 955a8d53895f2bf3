// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/geopost/internal/api"
	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/platform/config"
	"github.com/taibuivan/geopost/internal/platform/migration"
	mongostore "github.com/taibuivan/geopost/internal/platform/mongo"
	"github.com/taibuivan/geopost/internal/platform/objectstore"
	pgstore "github.com/taibuivan/geopost/internal/platform/postgres"
	redisstore "github.com/taibuivan/geopost/internal/platform/redis"
	"github.com/taibuivan/geopost/internal/post"
	"github.com/taibuivan/geopost/internal/user"
)

// # Document Store

type documentStore struct {
	posts  post.Repository
	users  user.Repository
	checks []api.Check
	close  func()
}

// openDocuments connects the configured document backend and prepares its schema.
func openDocuments(ctx context.Context, cfg *config.Config, log *slog.Logger) (*documentStore, error) {
	switch cfg.DocumentBackend {
	case config.DocumentBackendMongo:
		database, err := mongostore.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase, log)
		if err != nil {
			return nil, err
		}

		posts := post.NewMongoRepository(database)
		users := user.NewMongoRepository(database)
		if err := posts.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo: post indexes: %w", err)
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo: user indexes: %w", err)
		}

		return &documentStore{
			posts: posts,
			users: users,
			checks: []api.Check{{Name: "mongo", Ping: func(ctx context.Context) error {
				return mongostore.Ping(ctx, database.Client())
			}}},
			close: func() {
				log.Info("closing_mongo_client")
				if err := database.Client().Disconnect(context.Background()); err != nil {
					log.Error("mongo_close_error", slog.Any("error", err))
				}
			},
		}, nil

	default:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}

		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log, cfg.Debug); err != nil {
			pool.Close()
			return nil, err
		}

		db := pgstore.OpenDB(pool)
		return &documentStore{
			posts: post.NewPostgresRepository(db),
			users: user.NewPostgresRepository(db),
			checks: []api.Check{{Name: "postgres", Ping: func(ctx context.Context) error {
				return pgstore.Ping(ctx, pool)
			}}},
			close: func() {
				log.Info("closing_postgres_pool")
				_ = db.Close()
				pool.Close()
			},
		}, nil
	}
}

// # Asset Store

type assetStore struct {
	store  asset.Store
	checks []api.Check
}

// openAssets builds the configured object store behind the existence cache.
func openAssets(ctx context.Context, cfg *config.Config, log *slog.Logger) (*assetStore, error) {
	var (
		backend asset.Store
		checks  []api.Check
	)

	switch cfg.AssetBackend {
	case config.AssetBackendMemory:
		publicURL := cfg.S3PublicURL
		if publicURL == "" {
			publicURL = "http://localhost:" + cfg.ServerPort + "/api/v1/image"
		}
		backend = asset.NewMemoryStore(publicURL)
		log.Warn("asset_store_in_memory", slog.String("public_url", publicURL))

	default:
		client, err := objectstore.NewClient(ctx, objectstore.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		}, log)
		if err != nil {
			return nil, err
		}

		backend = asset.NewMinioStore(client, cfg.S3Bucket, cfg.S3PublicURL)
		checks = append(checks, api.Check{Name: "objectstore", Ping: func(ctx context.Context) error {
			return objectstore.Ping(ctx, client, cfg.S3Bucket)
		}})
	}

	cached, err := asset.NewCachedStore(backend, cfg.AssetCacheLen)
	if err != nil {
		return nil, err
	}
	return &assetStore{store: cached, checks: checks}, nil
}

// # Orphan Ledger

type orphanLedger struct {
	ledger asset.OrphanLedger
	checks []api.Check
	close  func()
}

// openLedger uses Redis when configured. Otherwise orphaned keys only live in process memory and logs.
func openLedger(ctx context.Context, cfg *config.Config, log *slog.Logger) (*orphanLedger, error) {
	if cfg.RedisURL == "" {
		log.Warn("orphan_ledger_in_memory")
		return &orphanLedger{ledger: asset.NewMemoryLedger(log), close: func() {}}, nil
	}

	client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return nil, err
	}

	return &orphanLedger{
		ledger: asset.NewRedisLedger(client),
		checks: []api.Check{{Name: "redis", Ping: func(ctx context.Context) error {
			return redisstore.Ping(ctx, client)
		}}},
		close: func() {
			log.Info("closing_redis_client")
			if err := client.Close(); err != nil {
				log.Error("redis_close_error", slog.Any("error", err))
			}
		},
	}, nil
}
