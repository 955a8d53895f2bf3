// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/geopost/internal/auth"
	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/internal/platform/ctxutil"
	"github.com/taibuivan/geopost/internal/platform/metrics"
	"github.com/taibuivan/geopost/internal/platform/respond"
)

// unauthenticatedMessage is the single body returned for every gate rejection.
const unauthenticatedMessage = "Invalid or missing authentication token"

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token store
// implementation, allowing us to easily inject fakes during unit testing.
type TokenVerifier interface {
	Verify(identifier string, now time.Time) error
}

// OutcomeRecorder receives one outcome per verification attempt.
type OutcomeRecorder interface {
	TokenVerified(outcome string)
}

// RequireToken blocks every request that does not carry a live token.
//
// # Flow
//  1. Read the identifier from the 'Token' header, or 'Authorization: Bearer <token>'.
//  2. Verify it against [TokenVerifier] using the current wall-clock time.
//  3. On any failure respond 401 with one uniform message. The reason
//     (absent, missing, stale) is only logged and counted.
//  4. On success inject the identifier into the context and pass the request through.
//
// # Parameters
//   - verifier: The token store.
//   - recorder: Outcome sink, usually the metrics registry. May be nil.
//   - clock: Time source. nil means [time.Now].
func RequireToken(verifier TokenVerifier, recorder OutcomeRecorder, clock func() time.Time) func(http.Handler) http.Handler {
	if clock == nil {
		clock = time.Now
	}
	record := func(outcome string) {
		if recorder != nil {
			recorder.TokenVerified(outcome)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			logger := ctxutil.GetLogger(request.Context())

			// ── 1. Extraction ─────────────────────────────────────────────────
			identifier := tokenFromRequest(request)
			if identifier == "" {
				record(metrics.OutcomeAbsent)
				logger.WarnContext(request.Context(), "auth_rejected", slog.String("reason", metrics.OutcomeAbsent))
				respond.Error(writer, request, apperr.Unauthorized(unauthenticatedMessage))
				return
			}

			// ── 2. Verification ───────────────────────────────────────────────
			if err := verifier.Verify(identifier, clock()); err != nil {
				outcome := metrics.OutcomeMissing
				if errors.Is(err, auth.ErrTokenStale) {
					outcome = metrics.OutcomeStale
				}
				record(outcome)
				logger.WarnContext(request.Context(), "auth_rejected", slog.String("reason", outcome))
				respond.Error(writer, request, apperr.Unauthorized(unauthenticatedMessage))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			record(metrics.OutcomeOK)
			ctx := ctxutil.WithToken(request.Context(), identifier)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// tokenFromRequest returns the raw identifier, or "" if the request carries none.
func tokenFromRequest(request *http.Request) string {
	if token := strings.TrimSpace(request.Header.Get(constants.HeaderToken)); token != "" {
		return token
	}

	parts := strings.Fields(request.Header.Get(constants.HeaderAuthorization))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
