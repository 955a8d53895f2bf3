// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/geopost/internal/platform/constants"
	"github.com/taibuivan/geopost/internal/platform/ctxutil"
	"github.com/taibuivan/geopost/internal/platform/respond"
	"github.com/taibuivan/geopost/internal/platform/validate"
)

// IssueRecorder counts issued tokens.
type IssueRecorder interface {
	TokenIssued()
}

// Handler implements the token endpoints.
//
// # Scope
//
// These routes sit outside the token gate: issuing is the only way to obtain
// a token, and revoking needs nothing beyond the token itself.
type Handler struct {
	store    *TokenStore
	recorder IssueRecorder
}

// NewHandler constructs a new [Handler]. recorder may be nil.
func NewHandler(store *TokenStore, recorder IssueRecorder) *Handler {
	return &Handler{store: store, recorder: recorder}
}

// Routes returns a [chi.Router] configured with the token routes.
//
// # Endpoints
//   - POST   / : Issues a new token.
//   - DELETE / : Revokes the token carried by the request.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.issue)
	router.Delete("/", handler.revoke)

	return router
}

// issueResponse is the body returned by POST /auth.
type issueResponse struct {
	Token string `json:"token"`
	// Timestamp is the issue instant in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// issue handles POST /auth requests.
//
// # Returns
//   - Writes HTTP 200 OK with the token and its issue timestamp.
func (handler *Handler) issue(writer http.ResponseWriter, request *http.Request) {
	token, err := handler.store.Issue()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if handler.recorder != nil {
		handler.recorder.TokenIssued()
	}

	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "token_issued",
		slog.Int("live_tokens", handler.store.Len()),
	)

	respond.OK(writer, issueResponse{
		Token:     token.ID,
		Timestamp: token.IssuedAt.UnixMilli(),
	})
}

// revoke handles DELETE /auth requests.
//
// # Returns
//   - Writes HTTP 204 No Content, whether or not the token existed.
//   - Writes HTTP 400 Bad Request if no token was supplied.
func (handler *Handler) revoke(writer http.ResponseWriter, request *http.Request) {
	identifier := strings.TrimSpace(request.Header.Get(constants.HeaderToken))
	if identifier == "" {
		respond.Error(writer, request, validate.FieldError(constants.HeaderToken, "This header is required"))
		return
	}

	handler.store.Revoke(identifier)
	respond.NoContent(writer)
}
