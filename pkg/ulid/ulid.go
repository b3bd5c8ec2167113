// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ulid provides time-ordered unique identifiers for the platform.

It wraps oklog/ulid to generate 26-character, lexicographically sortable
identifiers (48-bit millisecond timestamp + 80 bits of entropy).

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Friendly: Prevents index fragmentation in PostgreSQL (B-tree optimal).
  - Compact: 26 characters of Crockford base32, URL-safe.

This is the mandatory ID type for users, admins, API keys, and every token
jti in the Torii ecosystem.
*/
package ulid

import "github.com/oklog/ulid/v2"

// Len is the canonical length of a ULID string.
const Len = 26

// New generates a new ULID string.
//
// The underlying entropy source is monotonic and safe for concurrent use, so
// IDs generated within the same millisecond still sort in creation order.
func New() string {
	return ulid.Make().String()
}

// IsValid reports whether value parses as a ULID.
func IsValid(value string) bool {
	if len(value) != Len {
		return false
	}
	_, err := ulid.ParseStrict(value)
	return err == nil
}
