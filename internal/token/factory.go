// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import "context"

// Triple is the (refresh, access, session) set returned by a successful
// login or refresh-anchored reissue.
type Triple struct {
	Refresh *Response[*PrimaryClaims]
	Access  *Response[*PrimaryClaims]
	Session *Response[*ExtendedClaims]
}

// IssueTriple runs the login issuance choreography:
//
//  1. Issue the refresh token (writes both cache bindings atomically).
//  2. Extract the rjti and the paired ajti from the refresh claims.
//  3. Issue the access token in bound mode with those identifiers.
//  4. Issue the session token over the extended user profile.
//
// An error in any step is fatal to the call; the caller compensates by
// deleting the freshly written refresh binding if one was created.
func (engine *Engine) IssueTriple(ctx context.Context, user UserDetails) (*Triple, error) {
	refresh, err := engine.Refresh(user.ID).Create(ctx)
	if err != nil {
		return nil, err
	}

	ajti := refresh.Claims.Custom
	if ajti == "" {
		return nil, ErrMissingClaims("refresh token must carry the paired access token jti")
	}

	access, err := engine.Access(user.ID).Create(ctx, Params{
		AJTI: ajti,
		RJTI: refresh.Claims.JTI,
	})
	if err != nil {
		return nil, err
	}

	session, err := engine.Session(user).Create(ctx)
	if err != nil {
		return nil, err
	}

	return &Triple{Refresh: refresh, Access: access, Session: session}, nil
}
