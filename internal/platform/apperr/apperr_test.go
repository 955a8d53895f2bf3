// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/platform/apperr"
)

/*
TestConstructors checks status and code mapping of every constructor.
*/
func TestConstructors(t *testing.T) {
	cause := errors.New("bucket unreachable")

	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"not_found", apperr.NotFound("User Post"), http.StatusNotFound, apperr.CodeNotFound},
		{"unauthorized", apperr.Unauthorized("nope"), http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"conflict", apperr.Conflict("dup"), http.StatusConflict, apperr.CodeConflict},
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest, apperr.CodeValidation},
		{"rate_limited", apperr.RateLimited(1), http.StatusTooManyRequests, apperr.CodeRateLimited},
		{"too_large", apperr.PayloadTooLarge("big"), http.StatusRequestEntityTooLarge, apperr.CodePayloadTooLarge},
		{"internal", apperr.Internal(cause), http.StatusInternalServerError, apperr.CodeInternal},
		{"upload", apperr.AssetUploadFailed(cause), http.StatusInternalServerError, apperr.CodeAssetUploadFailed},
		{"persist", apperr.PersistFailed(cause), http.StatusInternalServerError, apperr.CodePersistFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}

	assert.Equal(t, "User Post not found", apperr.NotFound("User Post").Error())
}

/*
TestInternal_HidesCause ensures the client message never contains the cause.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation \"posts\" does not exist")
	err := apperr.Internal(cause)

	assert.NotContains(t, err.Error(), "posts")
	assert.ErrorIs(t, err, cause)
}

/*
TestAs_TraversesWrapping verifies extraction through fmt.Errorf chains.
*/
func TestAs_TraversesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("post_service_get_failed: %w", apperr.NotFound("User Post"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
	assert.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.HasCode(wrapped, apperr.CodeNotFound))
	assert.False(t, apperr.HasCode(errors.New("plain"), apperr.CodeNotFound))
	assert.Nil(t, apperr.As(errors.New("plain")))
}
