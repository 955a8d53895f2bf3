// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taibuivan/geopost/internal/asset"
	"github.com/taibuivan/geopost/internal/auth"
	"github.com/taibuivan/geopost/internal/platform/config"
	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/internal/platform/metrics"
	"github.com/taibuivan/geopost/internal/platform/middleware"
	"github.com/taibuivan/geopost/internal/platform/respond"
	"github.com/taibuivan/geopost/internal/post"
	"github.com/taibuivan/geopost/internal/user"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all backends answer.
	Readiness http.HandlerFunc

	// Auth issues and revokes tokens.
	Auth *auth.Handler

	// Post creates, lists and deletes posts.
	Post *post.Handler

	// User serves the raw user CRUD (development routes).
	User *user.Handler

	// Image serves the raw image endpoints (development routes).
	Image *asset.Handler
}

// # Server Initialization

/*
NewServer constructs the chi router with the full middleware chain and
registers all route groups.

Parameters:
  - context: Bounds background middleware work (rate limiter cleanup)
  - cfg: Runtime configuration
  - log: Root logger
  - registry: Metrics registry (HTTP instrumentation, token outcomes, /metrics)
  - verifier: Token check used by the gate
  - h: Domain handlers
*/
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, registry *metrics.Registry, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(registry.Instrument)
	r.Use(middleware.PanicRecovery())
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", constants.HeaderToken, constants.HeaderAuthorization, constants.HeaderXRequestID},
		ExposedHeaders:   []string{constants.HeaderXRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated endpoints for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", registry.Handler())

	// # Application API
	gate := middleware.RequireToken(verifier, registry, time.Now)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		api.Group(func(protected chi.Router) {
			protected.Use(gate)

			protected.Get("/version", func(writer http.ResponseWriter, request *http.Request) {
				respond.Text(writer, "Service v"+cfg.Version)
			})

			protected.Mount("/post", h.Post.Routes())
			protected.Mount("/userpost", h.Post.RecordRoutes(cfg.DevRoutesEnabled()))
			protected.Mount("/userposts", h.Post.ListRoutes())

			if cfg.DevRoutesEnabled() {
				protected.Mount("/user", h.User.Routes())
				protected.Mount("/image", h.Image.Routes())
				protected.Mount("/imageurl", h.Image.URLRoutes())
			}
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
