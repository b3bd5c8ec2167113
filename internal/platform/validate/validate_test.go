// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/torii/internal/platform/apperr"
	"github.com/taibuivan/torii/internal/platform/validate"
)

/*
TestValidator_Chain verifies that a passing chain returns nil and that a
failing chain collects every field error.
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("email", "user@torii.local").
		Email("email", "user@torii.local").
		Password("password", "Sup3rSecret").
		Err()
	assert.NoError(t, err)

	v = &validate.Validator{}
	err = v.
		Required("email", " ").
		Password("password", "short").
		Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.KindValidation, appError.Kind)
	assert.Len(t, appError.Details, 2)
}

/*
TestValidator_Password exercises the complexity rules.
*/
func TestValidator_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Sup3rSecret", true},
		{"too_short", "Ab1", false},
		{"no_uppercase", "sup3rsecret", false},
		{"no_lowercase", "SUP3RSECRET", false},
		{"no_digit", "SuperSecret", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Password("password", tt.password).Err()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

/*
TestValidator_Username exercises the handle format rules.
*/
func TestValidator_Username(t *testing.T) {
	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{"valid", "john.doe_42", true},
		{"uppercase", "JohnDoe", false},
		{"spaces", "john doe", false},
		{"empty", "", false},
		{"hyphen", "john-doe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Username("username", tt.username).Err()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

/*
TestValidator_OTP accepts only 6-digit numeric codes.
*/
func TestValidator_OTP(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"valid", "042137", true},
		{"too_short", "1234", false},
		{"too_long", "1234567", false},
		{"letters", "12a456", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.OTP("code", tt.code).Err()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
