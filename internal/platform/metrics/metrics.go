// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics owns the Prometheus collectors exported on /metrics.

Collectors are grouped in a [Registry] instead of package globals so tests can
build an isolated instance and read counters back without cross-talk.

Families:

  - HTTP: in-flight gauge, request counter and latency histogram.
  - Auth: token verification outcomes.
  - Saga: post-creation results and compensation failures.
  - Assets: orphaned keys recorded and reaped.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/geopost/internal/platform/constants"
)

// Token verification outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeAbsent  = "absent"
	OutcomeMissing = "missing"
	OutcomeStale   = "stale"
)

// Registry holds every collector used by the service.
type Registry struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	tokenVerifications *prometheus.CounterVec
	tokensIssued       prometheus.Counter

	sagaResults          *prometheus.CounterVec
	compensationFailures *prometheus.CounterVec

	orphansRecorded prometheus.Counter
	orphansReaped   prometheus.Counter
}

// New builds a Registry and registers all collectors plus the Go runtime collectors.
func New() *Registry {
	namespace := constants.AppName

	registry := &Registry{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		tokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Token verification attempts by outcome.",
		}, []string{"outcome"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Tokens issued.",
		}),

		sagaResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_creation_total",
			Help:      "Post creation attempts by result.",
		}, []string{"result"}),
		compensationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensation_failures_total",
			Help:      "Failed compensation steps by resource kind.",
		}, []string{"resource"}),

		orphansRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_assets_recorded_total",
			Help:      "Asset keys recorded in the orphan ledger.",
		}),
		orphansReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_assets_reaped_total",
			Help:      "Orphaned asset keys removed by the reaper.",
		}),
	}

	registry.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		registry.httpInFlight,
		registry.httpRequestsTotal,
		registry.httpRequestDuration,
		registry.tokenVerifications,
		registry.tokensIssued,
		registry.sagaResults,
		registry.compensationFailures,
		registry.orphansRecorded,
		registry.orphansReaped,
	)

	return registry
}

// Handler exposes the registry in the Prometheus text format.
func (registry *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(registry.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying gatherer, mostly for tests.
func (registry *Registry) Gatherer() prometheus.Gatherer {
	return registry.registry
}

// # HTTP

// Instrument measures in-flight requests, throughput and latency.
//
// The route label is the chi route pattern, so ids in the path do not explode
// label cardinality. Unmatched requests are labelled "unmatched".
func (registry *Registry) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		registry.httpInFlight.Inc()
		defer registry.httpInFlight.Dec()

		start := time.Now()
		recorder := &statusWriter{ResponseWriter: writer, code: http.StatusOK}
		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := strconv.Itoa(recorder.code)
		registry.httpRequestDuration.WithLabelValues(request.Method, route, status).Observe(time.Since(start).Seconds())
		registry.httpRequestsTotal.WithLabelValues(request.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (writer *statusWriter) WriteHeader(code int) {
	writer.code = code
	writer.ResponseWriter.WriteHeader(code)
}

// # Auth

// TokenVerified counts one verification attempt with the given outcome.
func (registry *Registry) TokenVerified(outcome string) {
	registry.tokenVerifications.WithLabelValues(outcome).Inc()
}

// TokenIssued counts one issued token.
func (registry *Registry) TokenIssued() {
	registry.tokensIssued.Inc()
}

// # Saga

// PostCreation counts one saga run. result is "ok" or the failing error code.
func (registry *Registry) PostCreation(result string) {
	registry.sagaResults.WithLabelValues(result).Inc()
}

// CompensationFailed counts one failed cleanup of the given resource kind.
func (registry *Registry) CompensationFailed(resource string) {
	registry.compensationFailures.WithLabelValues(resource).Inc()
}

// # Assets

// OrphanRecorded counts one key written to the orphan ledger.
func (registry *Registry) OrphanRecorded() {
	registry.orphansRecorded.Inc()
}

// OrphanReaped counts one orphaned key cleaned up.
func (registry *Registry) OrphanReaped() {
	registry.orphansReaped.Inc()
}
