// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package state defines the shared application state handle.

It bundles the two long-lived external connections (the PostgreSQL pool and
the Redis client) with the immutable configuration. The handle is created
once at startup and passed by reference into every handler, service, and
token type.

Concurrency:

  - The handle itself is immutable after construction and safe to share.
  - All mutation lives inside the external stores' own concurrency control
    (pgxpool row semantics, Redis server-side atomicity). No process-local
    mutex exists anywhere in the request path.
*/
package state

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/torii/internal/platform/config"
)

// State is the immutable shared handle threaded through the application.
type State struct {
	// DB is the PostgreSQL connection pool (durable store).
	DB *pgxpool.Pool

	// Redis is the multiplexed cache client (live token bindings).
	Redis *redis.Client

	// Env is the validated process configuration.
	Env *config.Config
}

// New constructs the shared handle. No I/O happens here; the pool and client
// are expected to be connected and pinged by the caller.
func New(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *State {
	return &State{DB: db, Redis: rdb, Env: cfg}
}
