// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Both document backends funnel through [Wrap], so services see the same
// [apperr.AppError] codes whether a post lives in PostgreSQL or MongoDB.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/geopost/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Parameters
//   - err: The raw driver error.
//   - resource: Human name used in the client message (e.g. "User Post").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 0. Already classified upstream
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(resource)
	}

	// 2. Unique constraint violations
	if IsUniqueViolation(err) {
		conflict := apperr.Conflict(resource + " already exists")
		conflict.Cause = err
		return conflict
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", resource, err))
}

// IsUniqueViolation reports whether err is a PostgreSQL SQLSTATE 23505 or a
// MongoDB duplicate key error.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code == pgerrcode.UniqueViolation
	}
	return mongo.IsDuplicateKeyError(err)
}
