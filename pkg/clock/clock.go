// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package clock provides the canonical time source for the platform.

All token lifetimes, cache TTLs, and session expirations are computed in whole
seconds since the Unix epoch. Centralizing the conversion here keeps every
component on the same resolution and prevents sub-second drift between the
claims a token carries and the TTLs written to the cache.
*/
package clock

import "time"

// Now returns the current wall-clock time in whole seconds since the Unix epoch.
func Now() int64 {
	return time.Now().Unix()
}
