// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command reaper makes one pass over the orphaned asset ledger in Redis and
// deletes every listed key from the object store.
//
// Keys whose delete fails stay in the ledger for the next run. The command is
// meant to be scheduled (cron, Kubernetes CronJob) next to API instances that
// share the same Redis and bucket.
//
// # Usage
//
//	REDIS_URL=redis://... S3_ENDPOINT=... S3_BUCKET=... reaper -timeout 5m
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/internal/platform/objectstore"
	redisstore "github.com/taibuivan/geopost/internal/platform/redis"
)

// settings is the subset of the API configuration the reaper needs.
type settings struct {
	RedisURL    string        `env:"REDIS_URL,required"`
	S3Endpoint  string        `env:"S3_ENDPOINT,required"`
	S3Region    string        `env:"S3_REGION"     envDefault:"us-east-1"`
	S3Bucket    string        `env:"S3_BUCKET,required"`
	S3AccessKey string        `env:"S3_ACCESS_KEY"`
	S3SecretKey string        `env:"S3_SECRET_KEY"`
	S3UseSSL    bool          `env:"S3_USE_SSL"    envDefault:"true"`
	StepTimeout time.Duration `env:"STEP_TIMEOUT"  envDefault:"10s"`
}

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "upper bound for the whole pass")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
		With(slog.String("app", constants.AppName), slog.String("command", "reaper"))

	if err := run(log, *timeout); err != nil {
		log.Error("reaper_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, timeout time.Duration) error {
	var cfg settings
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	objects, err := objectstore.NewClient(ctx, objectstore.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
	}, log)
	if err != nil {
		return err
	}

	reaper := asset.NewReaper(asset.NewMinioStore(objects, cfg.S3Bucket, ""), asset.NewRedisLedger(client), log, nil, cfg.StepTimeout)

	reaped, err := reaper.Once(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("reaper_finished", slog.Int("reaped", reaped))
	return nil
}
