// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, token engine) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Key material arrives base64-encoded so that multi-line PEM blocks survive
environment-variable transport; the [PEMKey] type decodes transparently.
*/
package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Key Material

// PEMKey is a base64-encoded PEM block decoded during env parsing.
type PEMKey []byte

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (k *PEMKey) UnmarshalText(text []byte) error {
	decoded, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("config: key is not valid base64: %w", err)
	}
	*k = decoded
	return nil
}

// # Expiration Bounds

// Hard bounds on the configurable token lifetimes, in seconds.
const (
	minRefreshExp = int64(15 * 24 * time.Hour / time.Second) // 15 days
	maxRefreshExp = int64(90 * 24 * time.Hour / time.Second) // 90 days
	minAccessExp  = int64(30 * time.Minute / time.Second)    // 30 minutes
	maxAccessExp  = int64(6 * time.Hour / time.Second)       // 6 hours
	minReauthExp  = int64(1 * time.Minute / time.Second)     // 1 minute
	maxReauthExp  = int64(10 * time.Minute / time.Second)    // 10 minutes

	minPort = 50050
	maxPort = 50060
)

// # Configuration Schema

// Config holds all runtime configuration for the Torii API server.
type Config struct {

	// Relational database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseSchema string `env:"DATABASE_SCHEMA,required,notEmpty"`

	// Key-value cache (Redis). RedisSchema namespaces every cache key.
	RedisURL    string `env:"REDIS_URL,required,notEmpty"`
	RedisSchema string `env:"REDIS_SCHEMA,required,notEmpty"`

	// Deployment identity
	Environment string `env:"ENV,required,notEmpty"`
	Domain      string `env:"DOMAIN,required,notEmpty"`
	Port        int    `env:"PORT,required,notEmpty"`

	// External collaborators
	IPInfoAPIKey        string `env:"IPINFO_API_KEY,required,notEmpty"`
	PostmarkServerToken string `env:"POSTMARK_SERVER_TOKEN,required,notEmpty"`
	EmailFrom           string `env:"EMAIL_FROM,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Asymmetric signing keys, one RSA pair per token type.
	RefreshTokenPrivateKey PEMKey `env:"REFRESH_TOKEN_PRIVATE_KEY,required,notEmpty"`
	RefreshTokenPublicKey  PEMKey `env:"REFRESH_TOKEN_PUBLIC_KEY,required,notEmpty"`
	AccessTokenPrivateKey  PEMKey `env:"ACCESS_TOKEN_PRIVATE_KEY,required,notEmpty"`
	AccessTokenPublicKey   PEMKey `env:"ACCESS_TOKEN_PUBLIC_KEY,required,notEmpty"`
	SessionTokenPrivateKey PEMKey `env:"SESSION_TOKEN_PRIVATE_KEY,required,notEmpty"`
	SessionTokenPublicKey  PEMKey `env:"SESSION_TOKEN_PUBLIC_KEY,required,notEmpty"`
	ReauthTokenPrivateKey  PEMKey `env:"REAUTH_TOKEN_PRIVATE_KEY,required,notEmpty"`
	ReauthTokenPublicKey   PEMKey `env:"REAUTH_TOKEN_PUBLIC_KEY,required,notEmpty"`

	// Token lifetimes in seconds, bounded by Validate.
	RefreshTokenExpiration int64 `env:"REFRESH_TOKEN_EXPIRATION,required,notEmpty"`
	AccessTokenExpiration  int64 `env:"ACCESS_TOKEN_EXPIRATION,required,notEmpty"`
	SessionTokenExpiration int64 `env:"SESSION_TOKEN_EXPIRATION,required,notEmpty"`
	ReauthTokenExpiration  int64 `env:"REAUTH_TOKEN_EXPIRATION,required,notEmpty"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the expiration and port bounds.
//
// Bounds matter for correctness, not just hygiene: access lifetimes above the
// refresh floor would break the "access TTL ≤ refresh TTL" cache invariant.
func (c *Config) Validate() error {
	if c.RefreshTokenExpiration < minRefreshExp || c.RefreshTokenExpiration > maxRefreshExp {
		return fmt.Errorf("config: REFRESH_TOKEN_EXPIRATION must be between 15 and 90 days, got %d", c.RefreshTokenExpiration)
	}
	if c.SessionTokenExpiration < minRefreshExp || c.SessionTokenExpiration > maxRefreshExp {
		return fmt.Errorf("config: SESSION_TOKEN_EXPIRATION must be between 15 and 90 days, got %d", c.SessionTokenExpiration)
	}
	if c.AccessTokenExpiration < minAccessExp || c.AccessTokenExpiration > maxAccessExp {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRATION must be between 30 minutes and 6 hours, got %d", c.AccessTokenExpiration)
	}
	if c.ReauthTokenExpiration < minReauthExp || c.ReauthTokenExpiration > maxReauthExp {
		return fmt.Errorf("config: REAUTH_TOKEN_EXPIRATION must be between 1 and 10 minutes, got %d", c.ReauthTokenExpiration)
	}
	if c.Port < minPort || c.Port > maxPort {
		return fmt.Errorf("config: PORT must be between %d and %d, got %d", minPort, maxPort, c.Port)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
