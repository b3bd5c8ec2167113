// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Classification
//
// Three outcomes only: a missing row becomes not-found, SQLSTATE 23505
// becomes a unique violation, and everything else stays under the generic
// database kind. Storage details never leak to clients.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/torii/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful
// [apperr.AppError].
//
// # Parameters
//   - err: The raw pgx error (may be nil).
//   - notFoundMsg: Client-safe message used when the row does not exist.
func Wrap(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFoundMsg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.UniqueViolation("Resource already exists", err)
	}

	return apperr.Database(err)
}
