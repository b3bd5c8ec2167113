// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

// Response carries both the claims envelope and the serialized token string
// produced by a create call.
type Response[C Claims] struct {
	Claims C
	Token  string
}

// Params selects the create mode for token types that support more than one.
//
// The access token's bound mode requires both AJTI and RJTI; rotation mode
// requires RJTI alone. Refresh, session, and reauth creation ignore Params.
type Params struct {
	// AJTI is the pre-generated access jti (bound mode).
	AJTI string
	// RJTI is the owning refresh token's jti.
	RJTI string
}
