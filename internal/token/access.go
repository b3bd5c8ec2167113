// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// noKeySentinel is deleted in place of the previous access binding when the
// refresh binding is missing; DEL on a non-existent key keeps the pipeline
// shape fixed without a conditional round-trip.
const noKeySentinel = "no_key"

// Access is the short-lived credential presented on every authenticated call.
// Its cache binding access_token:<ajti> -> <user_id> is the revocation hook:
// deleting it invalidates the token before its signed expiry.
type Access struct {
	engine *Engine
	userID string
}

// Exp returns the configured access lifetime in seconds.
func (t *Access) Exp() int64 { return t.engine.keys.Access.Exp }

// Create issues an access token in one of two modes.
//
// Bound mode (params supplies both AJTI and RJTI) signs and returns without
// touching the cache; the owning refresh token's Create already wrote the
// bindings. Used exclusively by the factory during login.
//
// Rotation mode (params supplies RJTI only) generates a fresh ajti and
// atomically: deletes the previous access binding, repoints the refresh
// binding at the new ajti with KEEPTTL, and writes the new access binding.
// KEEPTTL guarantees rotations never extend the refresh lifetime.
func (t *Access) Create(ctx context.Context, params Params) (*Response[*PrimaryClaims], error) {
	if params.RJTI == "" {
		return nil, ErrMissingClaims("refresh token jti is required to create an access token")
	}

	claims := NewPrimaryClaims(t.userID, t.Exp(), params.AJTI, params.RJTI, "")
	signed, err := encode(claims, t.engine.keys.Access.Private)
	if err != nil {
		return nil, err
	}
	response := &Response[*PrimaryClaims]{Claims: claims, Token: signed}

	// Bound mode: the refresh creation already wrote both bindings.
	if params.AJTI != "" {
		return response, nil
	}

	if err := t.rotate(ctx, params.RJTI, claims.JTI); err != nil {
		return nil, err
	}
	return response, nil
}

// Refresh is the rotation-mode convenience wrapper: it issues a new access
// token under an existing refresh binding and returns the token string only.
func (t *Access) Refresh(ctx context.Context, rjti string) (string, error) {
	response, err := t.Create(ctx, Params{RJTI: rjti})
	if err != nil {
		return "", err
	}
	return response.Token, nil
}

// rotate performs the three-command pipeline that swaps the live access
// binding under a refresh.
func (t *Access) rotate(ctx context.Context, rjti, newAJTI string) error {
	schema := t.engine.schema()

	previousAJTI, err := t.engine.state.Redis.Get(ctx, KindRefresh.Key(schema, rjti)).Result()
	staleKey := noKeySentinel
	switch {
	case err == redis.Nil:
		// No prior binding: the DEL below becomes a no-op on the sentinel.
	case err != nil:
		return ErrOther(err)
	default:
		staleKey = KindAccess.Key(schema, previousAJTI)
	}

	pipe := t.engine.state.Redis.TxPipeline()
	pipe.Del(ctx, staleKey)
	pipe.Set(ctx, KindRefresh.Key(schema, rjti), newAJTI, redis.KeepTTL)
	pipe.Set(ctx, KindAccess.Key(schema, newAJTI), t.userID, time.Duration(t.Exp())*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return ErrOther(err)
	}

	return nil
}

// Verify decodes an access token and asserts that its cache binding is live
// and owned by the claim subject. A missing entry or owner mismatch fails
// even when the signature is valid; this is the per-request revocation path.
func (t *Access) Verify(ctx context.Context, tokenString string) (*PrimaryClaims, error) {
	claims, err := decode(tokenString, t.engine.keys.Access.Public, &PrimaryClaims{})
	if err != nil {
		return nil, err
	}

	value, err := t.engine.state.Redis.Get(ctx, KindAccess.Key(t.engine.schema(), claims.JTI)).Result()
	if err == redis.Nil {
		return nil, ErrValidation("access token is invalid")
	}
	if err != nil {
		return nil, ErrOther(err)
	}
	if value != claims.Sub {
		return nil, ErrValidation("access token is invalid")
	}

	return claims, nil
}
