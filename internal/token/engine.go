// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package token implements the credential lifecycle engine: four coordinated
token classes (refresh, access, session, reauth), their RS256 signing and
verification contracts, and the cache-coherence protocol that binds live
tokens to server-side state.

# Dual-Store Model

The durable store holds session rows keyed by refresh jti; the cache holds
the authoritative "live" bindings:

	<schema>:refresh_token:<rjti> -> <ajti>    TTL = refresh lifetime
	<schema>:access_token:<ajti>  -> <user_id> TTL = access lifetime

Deleting a cache binding revokes the token before its signed expiry. All
multi-key cache mutations run inside a MULTI/EXEC pipeline so other clients
never observe a refresh binding without its paired access binding.

# Concurrency

The engine is immutable after construction and safe for concurrent use; all
coordination is mediated by the cache's server-side atomicity.
*/
package token

import (
	"context"

	"github.com/taibuivan/torii/internal/platform/state"
)

// SessionDeleter removes the durable session row for a refresh jti. The auth
// package's session store satisfies it; the indirection keeps the engine free
// of a storage-layer dependency.
type SessionDeleter interface {
	DeleteSession(ctx context.Context, rjti string) error
}

// Engine bundles the shared state, the key set, and the session store hook
// used by refresh deletion. One engine serves the whole process.
type Engine struct {
	state    *state.State
	keys     *KeySet
	sessions SessionDeleter
}

// NewEngine constructs the process-wide token engine.
func NewEngine(st *state.State, keys *KeySet, sessions SessionDeleter) *Engine {
	return &Engine{state: st, keys: keys, sessions: sessions}
}

// schema returns the cache namespace prefix.
func (engine *Engine) schema() string {
	return engine.state.Env.RedisSchema
}

// Refresh returns a refresh-token handle bound to a user.
func (engine *Engine) Refresh(userID string) *Refresh {
	return &Refresh{engine: engine, userID: userID}
}

// Access returns an access-token handle bound to a user.
func (engine *Engine) Access(userID string) *Access {
	return &Access{engine: engine, userID: userID}
}

// Session returns a session-token handle carrying a user profile.
func (engine *Engine) Session(user UserDetails) *Session {
	return &Session{engine: engine, user: user}
}

// Reauth returns a reauth-token handle bound to a user.
func (engine *Engine) Reauth(userID string) *Reauth {
	return &Reauth{engine: engine, userID: userID}
}
