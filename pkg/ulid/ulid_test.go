// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ulid_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/torii/pkg/ulid"
)

/*
TestNew_Format verifies the canonical 26-character shape.
*/
func TestNew_Format(t *testing.T) {
	id := ulid.New()

	require.Len(t, id, ulid.Len)
	assert.True(t, ulid.IsValid(id))
}

/*
TestNew_Unique verifies that rapid generation never collides.
*/
func TestNew_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		id := ulid.New()
		_, duplicate := seen[id]
		require.False(t, duplicate, "duplicate ULID: %s", id)
		seen[id] = struct{}{}
	}
}

/*
TestNew_Sortable verifies that IDs generated over time sort by creation order.
*/
func TestNew_Sortable(t *testing.T) {
	first := ulid.New()
	time.Sleep(2 * time.Millisecond)
	second := ulid.New()

	ids := []string{second, first}
	sort.Strings(ids)

	assert.Equal(t, first, ids[0])
	assert.Equal(t, second, ids[1])
}

/*
TestIsValid rejects malformed identifiers.
*/
func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"generated", ulid.New(), true},
		{"empty", "", false},
		{"too_short", "01ARZ3NDEKTSV4RRFFQ69G5FA", false},
		{"invalid_chars", "01ARZ3NDEKTSV4RRFFQ69G5Fium", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ulid.IsValid(tt.value))
		})
	}
}
