// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package admin implements the operator surface: admin account CRUD and
// machine API-key issuance, every operation gated on a one-hour email OTP.
package admin

// Admin is an operator account.
type Admin struct {
	// ID is the 26-character ULID primary key.
	ID          string `json:"id"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// APIKey is a machine credential owned by an admin. The stored secret is a
// one-way hash; the cleartext is returned exactly once at creation.
type APIKey struct {
	// ID is the ULID primary key, returned to callers as the api_key.
	ID          string `json:"api_key"`
	Description string `json:"description"`
	// OwnedBy is the owning admin's email.
	OwnedBy   string `json:"owned_by"`
	CreatedAt int64  `json:"created_at"`
	LastUsed  *int64 `json:"last_used,omitempty"`
}
