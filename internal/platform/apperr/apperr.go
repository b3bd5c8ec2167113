// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Torii.

It provides a rich error type that bridges the gap between low-level Domain/
Storage/Token errors and the transport status codes returned to clients.

Architecture:

  - AppError: A struct carrying the taxonomy kind, a canonical status name,
    and a client-safe message.
  - Taxonomy: One closed set of kinds (database, not-found, bad-request,
    unique-violation, unauthorized, invalid-provider, OTP-required,
    OTP-invalid, incorrect-credentials, validation, other).
  - Mapping: Each kind projects onto exactly one canonical status
    (NOT_FOUND, INVALID_ARGUMENT, ALREADY_EXISTS, PERMISSION_DENIED,
    FAILED_PRECONDITION, INTERNAL) and its HTTP equivalent.

Every error that leaves the service layer must be wrapped as an [AppError];
the respond boundary logs it at error level with its kind tag before mapping
it to a status code.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// # Taxonomy

// Kind is the machine-readable taxonomy tag attached to every [AppError].
// It doubles as the log tag emitted at the respond boundary.
type Kind string

const (
	KindDatabase             Kind = "database_error"
	KindNotFound             Kind = "not_found"
	KindBadRequest           Kind = "bad_request"
	KindUniqueViolation      Kind = "unique_violation"
	KindUnauthorized         Kind = "unauthorized"
	KindInvalidProvider      Kind = "invalid_provider"
	KindOTPRequired          Kind = "otp_required"
	KindOTPInvalid           Kind = "otp_invalid"
	KindIncorrectCredentials Kind = "incorrect_credentials"
	KindValidation           Kind = "validation_error"
	KindOther                Kind = "other_error"
)

// Canonical transport status names, as carried on the wire.
const (
	StatusNotFound           = "NOT_FOUND"
	StatusInvalidArgument    = "INVALID_ARGUMENT"
	StatusAlreadyExists      = "ALREADY_EXISTS"
	StatusPermissionDenied   = "PERMISSION_DENIED"
	StatusFailedPrecondition = "FAILED_PRECONDITION"
	StatusInternal           = "INTERNAL"
)

// # Error Type

// AppError is the canonical error type for the Torii API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to
// clients to avoid leaking internal implementation details (SQL, key
// material, cache topology).
type AppError struct {
	// Kind is the taxonomy tag; also used as the log tag.
	Kind Kind `json:"-"`
	// Status is the canonical transport status name (e.g. "NOT_FOUND").
	Status string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP projection of Status.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for validation responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface.
//
// Validation errors render their field map as a compact JSON-like object so
// the full failure set survives a plain-string transport.
func (e *AppError) Error() string {
	if e.Kind == KindValidation && len(e.Details) > 0 {
		parts := make([]string, 0, len(e.Details))
		for _, detail := range e.Details {
			parts = append(parts, fmt.Sprintf("%q: %q", detail.Field, detail.Message))
		}
		return strings.Join(parts, ", ")
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Constructors

// Database wraps an unexpected storage error (everything that is not a
// unique violation or a missing row).
func Database(cause error) *AppError {
	return &AppError{
		Kind:       KindDatabase,
		Status:     StatusInternal,
		Message:    "A storage error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NotFound creates an [AppError] for a missing resource.
func NotFound(msg string) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Status:     StatusNotFound,
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// BadRequest creates an [AppError] for a malformed request.
func BadRequest(msg string) *AppError {
	return &AppError{
		Kind:       KindBadRequest,
		Status:     StatusInvalidArgument,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// UniqueViolation creates an [AppError] for duplicate unique keys
// (translated from SQLSTATE 23505 by the dberr package).
func UniqueViolation(msg string, cause error) *AppError {
	return &AppError{
		Kind:       KindUniqueViolation,
		Status:     StatusAlreadyExists,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
		Cause:      cause,
	}
}

// Unauthorized creates an [AppError] for requests lacking a valid credential.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Kind:       KindUnauthorized,
		Status:     StatusPermissionDenied,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// InvalidProvider creates an [AppError] for password logins against accounts
// created through an external identity provider.
func InvalidProvider(msg string) *AppError {
	return &AppError{
		Kind:       KindInvalidProvider,
		Status:     StatusInvalidArgument,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// OTPRequired creates an [AppError] for two-factor logins missing their code.
func OTPRequired(msg string) *AppError {
	return &AppError{
		Kind:       KindOTPRequired,
		Status:     StatusFailedPrecondition,
		Message:    msg,
		HTTPStatus: http.StatusPreconditionFailed,
	}
}

// OTPInvalid creates an [AppError] for missing, expired, or mismatched codes.
func OTPInvalid(msg string) *AppError {
	return &AppError{
		Kind:       KindOTPInvalid,
		Status:     StatusInvalidArgument,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// IncorrectCredentials creates an [AppError] for failed password checks.
func IncorrectCredentials(cause error) *AppError {
	return &AppError{
		Kind:       KindIncorrectCredentials,
		Status:     StatusPermissionDenied,
		Message:    "Incorrect credentials",
		HTTPStatus: http.StatusForbidden,
		Cause:      cause,
	}
}

// ValidationError creates an [AppError] with per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Status:     StatusFailedPrecondition,
		Message:    msg,
		HTTPStatus: http.StatusPreconditionFailed,
		Details:    details,
	}
}

// Internal wraps any unexpected server-side error under the generic kind.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Kind:       KindOther,
		Status:     StatusInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
