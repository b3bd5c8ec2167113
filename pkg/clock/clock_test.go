// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/torii/pkg/clock"
)

/*
TestNow verifies second resolution against the standard library.
*/
func TestNow(t *testing.T) {
	before := time.Now().Unix()
	now := clock.Now()
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, now, before)
	assert.LessOrEqual(t, now, after)
}
