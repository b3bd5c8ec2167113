// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/torii/pkg/clock"
	"github.com/taibuivan/torii/pkg/ulid"
)

// Claims is the read-only accessor contract every envelope satisfies.
//
// It extends [jwt.Claims] so envelopes plug straight into the codec's
// signature and registered-claim validation.
type Claims interface {
	jwt.Claims

	// Subject is the user id the token was issued for.
	Subject() string
	// TokenID is this token's own jti.
	TokenID() string
	// RefreshID is the jti of the refresh token this token belongs to.
	// Equal to TokenID for refresh tokens themselves.
	RefreshID() string
	// CustomValue is the free-form claim; refresh tokens carry the paired
	// access jti here. Empty when unused.
	CustomValue() string
	// ExpiresUnix is the expiry instant in whole seconds since epoch.
	ExpiresUnix() int64
}

// # Primary Envelope

// PrimaryClaims is the envelope for refresh, access, and reauth tokens.
type PrimaryClaims struct {
	Sub    string `json:"sub"`
	JTI    string `json:"jti"`
	RJTI   string `json:"rjti"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
	Nbf    int64  `json:"nbf"`
	Custom string `json:"custom,omitempty"`
}

// NewPrimaryClaims builds an envelope issued now, expiring after exp seconds.
//
// Empty jti or rjti select the defaults: a fresh ULID for jti, and jti itself
// for rjti (a refresh token owns itself).
func NewPrimaryClaims(sub string, exp int64, jti, rjti, custom string) *PrimaryClaims {
	if jti == "" {
		jti = ulid.New()
	}
	if rjti == "" {
		rjti = jti
	}
	now := clock.Now()

	return &PrimaryClaims{
		Sub:    sub,
		JTI:    jti,
		RJTI:   rjti,
		Exp:    now + exp,
		Iat:    now,
		Nbf:    now,
		Custom: custom,
	}
}

// Accessor contract.

func (c *PrimaryClaims) Subject() string     { return c.Sub }
func (c *PrimaryClaims) TokenID() string     { return c.JTI }
func (c *PrimaryClaims) RefreshID() string   { return c.RJTI }
func (c *PrimaryClaims) CustomValue() string { return c.Custom }
func (c *PrimaryClaims) ExpiresUnix() int64  { return c.Exp }

// jwt.Claims contract. The library validates exp and nbf through these.

func (c *PrimaryClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

func (c *PrimaryClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

func (c *PrimaryClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Nbf, 0)), nil
}

func (c *PrimaryClaims) GetIssuer() (string, error) { return "", nil }

func (c *PrimaryClaims) GetSubject() (string, error) { return c.Sub, nil }

func (c *PrimaryClaims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// # User Profile

// UserDetails is the public profile carried by session tokens. The token
// engine defines its own copy so the claims envelope has no dependency on the
// storage layer.
type UserDetails struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Username           string `json:"username"`
	Name               string `json:"name"`
	PhotoURL           string `json:"photo_url,omitempty"`
	IsEmailVerified    bool   `json:"is_email_verified"`
	IsTwoFactorEnabled bool   `json:"is_two_factor_enabled"`
}

// # Extended Envelope

// ExtendedClaims flattens the primary envelope alongside the user's public
// profile. Used exclusively by the session token so clients can read profile
// data without a round-trip. Anonymous embedding flattens both structs into
// one JSON object.
type ExtendedClaims struct {
	PrimaryClaims
	UserDetails
}

// NewExtendedClaims builds a session envelope for the given user profile.
func NewExtendedClaims(user UserDetails, exp int64) *ExtendedClaims {
	return &ExtendedClaims{
		PrimaryClaims: *NewPrimaryClaims(user.ID, exp, "", "", ""),
		UserDetails:   user,
	}
}

// CustomValue is always empty on the extended envelope.
func (c *ExtendedClaims) CustomValue() string { return "" }
