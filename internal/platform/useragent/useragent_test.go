// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/torii/internal/platform/useragent"
)

/*
TestParse_Desktop extracts browser and OS from a desktop agent.
*/
func TestParse_Desktop(t *testing.T) {
	raw := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	device := useragent.Parse(raw)

	assert.Equal(t, "Chrome", device.BrowserName)
	assert.Equal(t, "Windows", device.OSName)
	assert.NotEmpty(t, device.BrowserVersion)
}

/*
TestParse_Mobile extracts device metadata from a phone agent.
*/
func TestParse_Mobile(t *testing.T) {
	raw := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"

	device := useragent.Parse(raw)

	assert.Equal(t, "iOS", device.OSName)
	assert.NotEmpty(t, device.Vendor)
}

/*
TestParse_Empty yields a zero device for an empty header.
*/
func TestParse_Empty(t *testing.T) {
	assert.Equal(t, useragent.Device{}, useragent.Parse(""))
}
