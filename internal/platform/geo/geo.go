// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package geo resolves client addresses to coarse location metadata for
// session enrichment.
//
// # Architecture
//
// Lookups are best-effort: a failed or slow resolution never blocks a login;
// the session row simply carries empty location fields. The [Locator]
// interface keeps the service layer testable without network access.
package geo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/ipinfo/go/v2/ipinfo"
)

// Location is the coarse location attached to a session row.
type Location struct {
	Address  string
	Country  string
	Region   string
	City     string
	Timezone string
	Lat      float64
	Lon      float64
	// Resolved reports whether a lookup produced coordinates.
	Resolved bool
	// MapURL is an OpenStreetMap link built from the reported coordinates.
	MapURL string
}

// Locator resolves a client address into a [Location].
type Locator interface {
	Locate(ctx context.Context, address string) Location
}

// # IPinfo Implementation

// IPInfoLocator resolves locations through the IPinfo API.
type IPInfoLocator struct {
	client *ipinfo.Client
}

// NewIPInfoLocator creates a locator backed by the IPinfo API.
func NewIPInfoLocator(apiToken string) *IPInfoLocator {
	return &IPInfoLocator{client: ipinfo.NewClient(nil, nil, apiToken)}
}

// Locate implements [Locator]. Any failure yields a zero-valued [Location]
// with only the raw address filled in.
func (locator *IPInfoLocator) Locate(ctx context.Context, address string) Location {
	location := Location{Address: address}

	parsed := net.ParseIP(address)
	if parsed == nil || !parsed.IsGlobalUnicast() || parsed.IsPrivate() {
		return location
	}

	info, err := locator.client.GetIPInfo(parsed)
	if err != nil {
		return location
	}

	location.Country = info.CountryName
	location.Region = info.Region
	location.City = info.City
	location.Timezone = info.Timezone
	location.Resolved = true

	// info.Location is "lat,lon"
	if lat, lon, ok := splitCoordinates(info.Location); ok {
		location.Lat = lat
		location.Lon = lon
	}
	location.MapURL = fmt.Sprintf("https://www.openstreetmap.org/?mlat=%g&mlon=%g", location.Lat, location.Lon)

	return location
}

// splitCoordinates parses the "lat,lon" pair reported by the API.
func splitCoordinates(raw string) (float64, float64, bool) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// # Null Implementation

// NullLocator performs no lookups. Used in tests and when no API key is set.
type NullLocator struct{}

// Locate implements [Locator].
func (NullLocator) Locate(_ context.Context, address string) Location {
	return Location{Address: address}
}
