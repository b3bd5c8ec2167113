// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import "fmt"

// failure is the category of a token-engine error. The service boundary maps
// these onto the outer error taxonomy.
type failure int

const (
	failureCreation failure = iota
	failureValidation
	failureParsing
	failureInvalidFormat
	failureMissingClaims
	failureOther
)

func (f failure) tag() string {
	switch f {
	case failureCreation:
		return "[creation_failed]"
	case failureValidation:
		return "[validation_failed]"
	case failureParsing:
		return "[parsing_failed]"
	case failureInvalidFormat:
		return "[invalid_format]"
	case failureMissingClaims:
		return "[missing_claims]"
	default:
		return "[other]"
	}
}

// Error is the error type produced inside the token engine.
type Error struct {
	failure failure
	message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s %s", e.failure.tag(), e.message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s %s", e.failure.tag(), e.cause.Error())
	}
	return e.failure.tag()
}

// Unwrap exposes the cause for errors.Is / errors.As traversal.
func (e *Error) Unwrap() error { return e.cause }

// # Constructors

// ErrCreation wraps a signing failure.
func ErrCreation(cause error) *Error {
	return &Error{failure: failureCreation, cause: cause}
}

// ErrValidation marks a token that failed signature, expiry, or cache-binding
// checks. Message is safe to surface to callers.
func ErrValidation(message string) *Error {
	return &Error{failure: failureValidation, message: message}
}

// ErrValidationCause wraps a decode failure under the validation category.
func ErrValidationCause(cause error) *Error {
	return &Error{failure: failureValidation, cause: cause}
}

// ErrParsing wraps a malformed compact-serialization failure.
func ErrParsing(cause error) *Error {
	return &Error{failure: failureParsing, cause: cause}
}

// ErrInvalidFormat wraps key-material problems (bad PEM, wrong key type).
func ErrInvalidFormat(cause error) *Error {
	return &Error{failure: failureInvalidFormat, cause: cause}
}

// ErrMissingClaims marks an envelope lacking a claim the caller requires.
func ErrMissingClaims(message string) *Error {
	return &Error{failure: failureMissingClaims, message: message}
}

// ErrOther wraps infrastructure failures (cache, durable store) that surface
// through the engine.
func ErrOther(cause error) *Error {
	return &Error{failure: failureOther, cause: cause}
}

// # Classification

// IsValidation reports whether err is a token validation failure.
func IsValidation(err error) bool {
	tokenErr, ok := err.(*Error)
	return ok && tokenErr.failure == failureValidation
}
