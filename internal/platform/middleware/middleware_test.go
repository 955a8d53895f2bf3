// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/auth"
	"github.com/taibuivan/geopost/internal/platform/ctxutil"
	"github.com/taibuivan/geopost/internal/platform/middleware"
)

type outcomeLog struct{ outcomes []string }

func (log *outcomeLog) TokenVerified(outcome string) { log.outcomes = append(log.outcomes, outcome) }

var epoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// gatedRouter wraps a handler that echoes the verified token.
func gatedRouter(store *auth.TokenStore, log *outcomeLog, now time.Time) http.Handler {
	echo := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(ctxutil.GetToken(request.Context())))
	})
	return middleware.RequireToken(store, log, func() time.Time { return now })(echo)
}

/*
TestRequireToken covers every gate outcome and the uniform rejection body.
*/
func TestRequireToken(t *testing.T) {
	ttl := time.Hour
	store := auth.NewTokenStore(ttl, func() time.Time { return epoch })

	live, err := store.Issue()
	require.NoError(t, err)
	stale, err := store.Issue()
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		value   string
		now     time.Time
		status  int
		outcome string
	}{
		{"token_header", "Token", live.ID, epoch, http.StatusOK, "ok"},
		{"bearer_fallback", "Authorization", "Bearer " + live.ID, epoch, http.StatusOK, "ok"},
		{"absent", "", "", epoch, http.StatusUnauthorized, "absent"},
		{"malformed_bearer", "Authorization", "Basic abc", epoch, http.StatusUnauthorized, "absent"},
		{"unknown", "Token", "unknown", epoch, http.StatusUnauthorized, "missing"},
		{"stale", "Token", stale.ID, epoch.Add(ttl + time.Second), http.StatusUnauthorized, "stale"},
		{"stale_then_missing", "Token", stale.ID, epoch.Add(ttl + time.Second), http.StatusUnauthorized, "missing"},
	}

	var rejections []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &outcomeLog{}
			request := httptest.NewRequest(http.MethodGet, "/userposts", nil)
			if tt.header != "" {
				request.Header.Set(tt.header, tt.value)
			}

			recorder := httptest.NewRecorder()
			gatedRouter(store, log, tt.now).ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, []string{tt.outcome}, log.outcomes)

			if tt.status == http.StatusOK {
				assert.Equal(t, live.ID, recorder.Body.String())
				return
			}
			rejections = append(rejections, recorder.Body.String())
		})
	}

	// Every rejection is byte-identical so callers cannot learn token state.
	require.NotEmpty(t, rejections)
	for _, body := range rejections {
		assert.Equal(t, rejections[0], body)
	}

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(rejections[0]), &envelope))
	assert.Equal(t, "UNAUTHORIZED", envelope["code"])
	assert.Equal(t, "Invalid or missing authentication token", envelope["error"])
}

/*
TestRequestID_GeneratesAndPropagates checks correlation id handling.
*/
func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-supplied")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-supplied", seen)
}

/*
TestRateLimit_RejectsBurst checks that a client over its burst gets 429.
*/
func TestRateLimit_RejectsBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.001, 2)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:1234"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

/*
TestPanicRecovery_Returns500 checks that a panicking handler yields a generic error.
*/
func TestPanicRecovery_Returns500(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

/*
TestRealIP checks proxy header precedence.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))
}
