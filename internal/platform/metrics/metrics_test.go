// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/platform/metrics"
)

/*
TestInstrument_UsesRoutePattern checks that ids in the path are folded into the chi pattern.
*/
func TestInstrument_UsesRoutePattern(t *testing.T) {
	registry := metrics.New()

	router := chi.NewRouter()
	router.Use(registry.Instrument)
	router.Get("/userpost/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/userpost/"+id, nil))
	}

	expected := `
# HELP geopost_http_requests_total Total number of HTTP requests.
# TYPE geopost_http_requests_total counter
geopost_http_requests_total{method="GET",route="/userpost/{id}",status="404"} 3
`
	require.NoError(t, testutil.GatherAndCompare(registry.Gatherer(), strings.NewReader(expected), "geopost_http_requests_total"))
}

/*
TestTokenVerified_CountsByOutcome checks the auth outcome counter.
*/
func TestTokenVerified_CountsByOutcome(t *testing.T) {
	registry := metrics.New()

	registry.TokenVerified(metrics.OutcomeOK)
	registry.TokenVerified(metrics.OutcomeStale)
	registry.TokenVerified(metrics.OutcomeStale)

	count, err := testutil.GatherAndCount(registry.Gatherer(), "geopost_token_verifications_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

/*
TestHandler_ServesTextFormat checks that the exposition endpoint works.
*/
func TestHandler_ServesTextFormat(t *testing.T) {
	registry := metrics.New()
	registry.OrphanRecorded()

	recorder := httptest.NewRecorder()
	registry.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "geopost_orphaned_assets_recorded_total 1")
}
