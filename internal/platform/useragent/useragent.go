// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package useragent parses raw User-Agent strings into the device metadata
// stored on session rows.
package useragent

import (
	ua "github.com/mileusna/useragent"
)

// Device holds the parsed fields persisted with each session.
type Device struct {
	Vendor         string
	Model          string
	OSName         string
	OSVersion      string
	BrowserName    string
	BrowserVersion string
}

// Parse extracts device metadata from a raw User-Agent header.
//
// Unknown fields come back empty; an empty input yields a zero [Device].
func Parse(rawUserAgent string) Device {
	if rawUserAgent == "" {
		return Device{}
	}

	parsed := ua.Parse(rawUserAgent)

	device := Device{
		Model:          parsed.Device,
		OSName:         parsed.OS,
		OSVersion:      parsed.OSVersion,
		BrowserName:    parsed.Name,
		BrowserVersion: parsed.Version,
	}

	// The library folds vendor into the device string for mobile agents;
	// desktop agents report no device at all.
	if parsed.Mobile || parsed.Tablet {
		device.Vendor = parsed.Device
	}

	return device
}
