// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import "context"

// Session is the stateless profile carrier returned alongside the refresh and
// access tokens. It holds extended claims so clients can read the user's
// public profile without a round-trip; it has no cache binding and therefore
// no per-request revocation path.
type Session struct {
	engine *Engine
	user   UserDetails
}

// Exp returns the configured session lifetime in seconds.
func (t *Session) Exp() int64 { return t.engine.keys.Session.Exp }

// Create signs and returns the extended envelope. No cache interaction.
func (t *Session) Create(_ context.Context) (*Response[*ExtendedClaims], error) {
	claims := NewExtendedClaims(t.user, t.Exp())
	signed, err := encode(claims, t.engine.keys.Session.Private)
	if err != nil {
		return nil, err
	}
	return &Response[*ExtendedClaims]{Claims: claims, Token: signed}, nil
}

// Verify relies solely on the signature and expiry.
func (t *Session) Verify(_ context.Context, tokenString string) (*ExtendedClaims, error) {
	return decode(tokenString, t.engine.keys.Session.Public, &ExtendedClaims{})
}
