// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the geopost HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the document store (PostgreSQL with migrations, or MongoDB with indexes).
//  4. Open the asset store (S3-compatible, or in-process for development).
//  5. Open the orphan ledger (Redis when configured).
//  6. Start the token sweeper and the orphan reaper.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/geopost/internal/api"
	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/auth"
	"github.com/taibuivan/geopost/internal/platform/config"
	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/internal/platform/metrics"
	"github.com/taibuivan/geopost/internal/post"
	"github.com/taibuivan/geopost/internal/user"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("document_backend", cfg.DocumentBackend),
		slog.String("asset_backend", cfg.AssetBackend),
		slog.Bool("dev_routes", cfg.DevRoutesEnabled()),
	)

	// Root context for background loops; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Document Store ─────────────────────────────────────────────────
	documents, err := openDocuments(startupCtx, cfg, log)
	must(log, err, "open document store")
	defer documents.close()

	// ── 4. Asset Store ────────────────────────────────────────────────────
	assets, err := openAssets(startupCtx, cfg, log)
	must(log, err, "open asset store")

	// ── 5. Orphan Ledger ──────────────────────────────────────────────────
	ledger, err := openLedger(startupCtx, cfg, log)
	must(log, err, "open orphan ledger")
	defer ledger.close()

	// ── 6. Background Loops ───────────────────────────────────────────────
	registry := metrics.New()
	tokens := auth.NewTokenStore(cfg.TokenTTL, nil)

	go tokens.Run(rootCtx, cfg.TokenSweepInterval, func(removed int) {
		if removed > 0 {
			log.Debug("token_sweep_finished", slog.Int("removed", removed), slog.Int("live", tokens.Len()))
		}
	})

	reaper := asset.NewReaper(assets.store, ledger.ledger, log, registry, cfg.StepTimeout)
	go reaper.Run(rootCtx, cfg.OrphanReapInterval)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	checks := append(append(documents.checks, assets.checks...), ledger.checks...)
	liveness, readiness := api.NewHealthHandlers(checks, log)

	deps := post.Dependencies{
		Posts:       documents.posts,
		Users:       documents.users,
		Assets:      assets.store,
		Ledger:      ledger.ledger,
		Recorder:    registry,
		StepTimeout: cfg.StepTimeout,
	}

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(tokens, registry),
		Post:      post.NewHandler(post.NewService(deps), post.NewOrchestrator(deps), cfg.MaxImageBytes),
		User:      user.NewHandler(user.NewService(documents.users, nil)),
		Image:     asset.NewHandler(assets.store, cfg.MaxImageBytes),
	}

	server := api.NewServer(rootCtx, cfg, log, registry, tokens, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete, including their compensation.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		rootCancel()
		os.Exit(1)
	}

	rootCancel()
	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
