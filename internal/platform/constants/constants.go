// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and the cache-key taxonomy shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Cache Taxonomy: Redis key prefixes and code lifetimes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "torii-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful drain of in-flight requests.
	ShutdownTimeout = 15 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Cache Taxonomy (Redis Prefixes)

// Token-binding keys are namespaced per deployment under the configured Redis
// schema; the short-lived code keys below are global, fixed prefixes.
const (
	// RedisPrefixTwoFactorOTP stores the 6-digit login second factor per email.
	RedisPrefixTwoFactorOTP = "twofactor:otp:"

	// RedisPrefixAdminVerification stores OTPs that gate privileged admin calls.
	RedisPrefixAdminVerification = "admin:verification:"

	// RedisPrefixEmailVerification stores email-ownership confirmation codes.
	RedisPrefixEmailVerification = "email:verification:"

	// RedisPrefixEmailChange stores the pending address during an email change.
	RedisPrefixEmailChange = "email:newemail:"

	// RedisPrefixPasswordReset stores forgot-password codes.
	RedisPrefixPasswordReset = "password:reset:"
)

// # Code Lifetimes

const (
	// OTPTTL is the lifetime of every emailed one-time code.
	OTPTTL = time.Hour
)

// # Session Housekeeping

const (
	// ExpirySkew widens the expired-session sweep so rows on the boundary are
	// collected in the same pass rather than one sweep later.
	ExpirySkew = 60 * time.Second
)
