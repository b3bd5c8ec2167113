// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import "context"

// Store defines the durable storage contract for operator accounts and
// their API keys.
type Store interface {
	// CreateAdmin persists a new operator account.
	CreateAdmin(ctx context.Context, email, description string) (*Admin, error)

	// DeleteAdmin removes the account by email; API keys cascade.
	DeleteAdmin(ctx context.Context, email string) error

	// ListAPIKeys returns every key owned by the admin, newest first.
	// Secrets are never returned.
	ListAPIKeys(ctx context.Context, ownerEmail string) ([]APIKey, error)

	// CreateAPIKey persists a hashed secret and returns the key's ULID.
	CreateAPIKey(ctx context.Context, ownerEmail, description, secretHash string) (string, error)

	// DeleteAPIKey removes a key by its ULID.
	DeleteAPIKey(ctx context.Context, id string) error
}
