// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/torii/pkg/ulid"
)

// Refresh is the long-lived credential that anchors a login session. Its jti
// (the rjti) keys both the cache binding and the durable session row; its
// custom claim carries the paired access jti.
type Refresh struct {
	engine *Engine
	userID string
}

// Exp returns the configured refresh lifetime in seconds.
func (t *Refresh) Exp() int64 { return t.engine.keys.Refresh.Exp }

// Create issues a refresh token and atomically writes both cache bindings:
// refresh_token:<rjti> -> <ajti> and access_token:<ajti> -> <user_id>.
//
// There is no window in which the refresh binding exists without its paired
// access binding.
func (t *Refresh) Create(ctx context.Context) (*Response[*PrimaryClaims], error) {
	ajti := ulid.New()
	claims := NewPrimaryClaims(t.userID, t.Exp(), "", "", ajti)

	signed, err := encode(claims, t.engine.keys.Refresh.Private)
	if err != nil {
		return nil, err
	}

	schema := t.engine.schema()
	pipe := t.engine.state.Redis.TxPipeline()
	pipe.Set(ctx, KindRefresh.Key(schema, claims.JTI), ajti, time.Duration(t.Exp())*time.Second)
	pipe.Set(ctx, KindAccess.Key(schema, ajti), t.userID, time.Duration(t.engine.keys.Access.Exp)*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, ErrOther(err)
	}

	return &Response[*PrimaryClaims]{Claims: claims, Token: signed}, nil
}

// Verify decodes a refresh token and asserts its cache binding is live.
// A missing binding means the refresh was revoked or expired server-side.
func (t *Refresh) Verify(ctx context.Context, tokenString string) (*PrimaryClaims, error) {
	claims, err := decode(tokenString, t.engine.keys.Refresh.Public, &PrimaryClaims{})
	if err != nil {
		return nil, err
	}

	value, err := t.engine.state.Redis.Get(ctx, KindRefresh.Key(t.engine.schema(), claims.JTI)).Result()
	if err == redis.Nil {
		return nil, ErrValidation("token not found")
	}
	if err != nil {
		return nil, ErrOther(err)
	}
	if value == "" {
		return nil, ErrValidation("refresh token is invalid")
	}

	return claims, nil
}

// Delete revokes a refresh token: the durable session row is removed, then
// both cache bindings are dropped in one atomic pipeline.
//
// The cache removal proceeds even when the session delete fails; the cache is
// the authoritative revocation point, so a durable-store outage must not
// leave the binding alive. The store error is still surfaced to the caller.
func (t *Refresh) Delete(ctx context.Context, rjti string) error {
	var sessionErr error
	if err := t.engine.sessions.DeleteSession(ctx, rjti); err != nil {
		sessionErr = ErrOther(err)
	}

	schema := t.engine.schema()
	ajti, err := t.engine.state.Redis.Get(ctx, KindRefresh.Key(schema, rjti)).Result()
	if err == redis.Nil {
		return ErrValidation("token not found in redis")
	}
	if err != nil {
		return ErrOther(err)
	}

	pipe := t.engine.state.Redis.TxPipeline()
	pipe.Del(ctx, KindRefresh.Key(schema, rjti))
	pipe.Del(ctx, KindAccess.Key(schema, ajti))
	if _, err := pipe.Exec(ctx); err != nil {
		return ErrOther(err)
	}

	return sessionErr
}
