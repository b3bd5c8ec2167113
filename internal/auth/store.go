// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// CreateUserInput holds the data required to enroll a new account.
type CreateUserInput struct {
	Provider string
	Email    string
	Username string
	Name     string
	// Password is the plain-text secret; nil for provider-created accounts.
	Password *string
	PhotoURL *string
}

// UserStore defines the durable storage contract for accounts.
type UserStore interface {
	// Create persists a user and its provider linkage in one transaction.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// GetByCredential resolves a user by email or username.
	GetByCredential(ctx context.Context, credential string) (*User, error)

	// GetByID resolves a user by primary key.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail resolves a user by unique email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateEmail swaps the address and clears the verified flag.
	UpdateEmail(ctx context.Context, id, newEmail string) error

	// UpdateUsername swaps the unique handle.
	UpdateUsername(ctx context.Context, id, newUsername string) error

	// UpdatePassword replaces the stored hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetEmailVerified marks the account's address as confirmed.
	SetEmailVerified(ctx context.Context, id string) error

	// Delete removes the account; sessions and linkages cascade.
	Delete(ctx context.Context, id string) error
}

// SessionStore defines the durable storage contract for login sessions.
type SessionStore interface {
	// Create writes an enriched session row for a fresh login.
	Create(ctx context.Context, rjti, userID, ipAddress, userAgent string) error

	// Delete removes the session row for a refresh jti.
	Delete(ctx context.Context, rjti string) error

	// DeleteExpired sweeps the user's rows whose exp falls inside the
	// 60-second grace window.
	DeleteExpired(ctx context.Context, userID string) error

	// ListRefreshIDs returns the rjti of every session row for a user.
	ListRefreshIDs(ctx context.Context, userID string) ([]string, error)
}
