// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

// Kind identifies one of the four credential classes. It selects both the
// signing key pair and the cache namespace for a token.
type Kind int

const (
	KindRefresh Kind = iota
	KindAccess
	KindSession
	KindReauth
)

// String returns the wire-visible name used in cache keys.
func (kind Kind) String() string {
	switch kind {
	case KindRefresh:
		return "refresh_token"
	case KindAccess:
		return "access_token"
	case KindSession:
		return "session_token"
	case KindReauth:
		return "reauth_token"
	default:
		return "unknown_token"
	}
}

// Key builds the namespaced cache key for a token identifier:
// <schema>:<kind>:<jti>.
func (kind Kind) Key(schema, jti string) string {
	return schema + ":" + kind.String() + ":" + jti
}
