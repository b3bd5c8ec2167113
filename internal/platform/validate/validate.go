// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the service layer — never in handlers or
// storage. It ensures that business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/torii/internal/platform/apperr"
)

var (
	// usernameRegex matches lowercase letters, digits, dots, and underscores.
	usernameRegex = regexp.MustCompile(`^[a-z0-9._]+$`)
	// otpRegex matches the 6-digit numeric one-time password format.
	otpRegex = regexp.MustCompile(`^[0-9]{6}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Username fails if the value is not a valid account handle.
//
// # Format
//
// Handles are 1–64 characters of lowercase letters, digits, dots, and
// underscores.
func (v *Validator) Username(field, value string) *Validator {
	if utf8.RuneCountInString(value) > 64 || !usernameRegex.MatchString(value) {
		v.add(field, "Must be 1-64 lowercase letters, digits, dots, or underscores")
	}
	return v
}

// Password fails unless the value is 8–64 characters and contains at least
// one uppercase letter, one lowercase letter, and one digit.
func (v *Validator) Password(field, value string) *Validator {
	length := utf8.RuneCountInString(value)
	if length < 8 || length > 64 {
		v.add(field, "Must be between 8 and 64 characters")
		return v
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		v.add(field, "Must contain an uppercase letter, a lowercase letter, and a digit")
	}
	return v
}

// OTP fails if the value is not a 6-digit numeric code.
func (v *Validator) OTP(field, value string) *Validator {
	if !otpRegex.MatchString(value) {
		v.add(field, "Must be a 6-digit code")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("port", port < 50050, "Out of range")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
