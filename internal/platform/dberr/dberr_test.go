// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/platform/dberr"
)

/*
TestWrap maps every driver error family onto the expected HTTP status.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"sql_no_rows", sql.ErrNoRows, http.StatusNotFound},
		{"pgx_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), http.StatusNotFound},
		{"mongo_no_documents", mongo.ErrNoDocuments, http.StatusNotFound},
		{"unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, http.StatusConflict},
		{"other_pg_error", &pgconn.PgError{Code: pgerrcode.SyntaxError}, http.StatusInternalServerError},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
		{"already_classified", apperr.ValidationError("bad"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "User Post")
			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.status, ae.HTTPStatus)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "User Post"))
}
