// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import "context"

// Reauth is the short-lived (1-10 minute) credential that gates sensitive
// operations: account deletion, email, username, and password changes.
type Reauth struct {
	engine *Engine
	userID string
}

// Exp returns the configured reauth lifetime in seconds.
func (t *Reauth) Exp() int64 { return t.engine.keys.Reauth.Exp }

// Create signs and returns a primary envelope. No cache interaction.
func (t *Reauth) Create(_ context.Context) (*Response[*PrimaryClaims], error) {
	claims := NewPrimaryClaims(t.userID, t.Exp(), "", "", "")
	signed, err := encode(claims, t.engine.keys.Reauth.Private)
	if err != nil {
		return nil, err
	}
	return &Response[*PrimaryClaims]{Claims: claims, Token: signed}, nil
}

// Verify relies solely on the signature and expiry.
func (t *Reauth) Verify(_ context.Context, tokenString string) (*PrimaryClaims, error) {
	return decode(tokenString, t.engine.keys.Reauth.Public, &PrimaryClaims{})
}
