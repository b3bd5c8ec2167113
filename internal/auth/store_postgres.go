// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementations of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] values by the dberr package so the
// service layer never sees driver detail.
package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/torii/internal/platform/dberr"
	"github.com/taibuivan/torii/internal/platform/geo"
	"github.com/taibuivan/torii/internal/platform/sec"
	"github.com/taibuivan/torii/internal/platform/useragent"
	"github.com/taibuivan/torii/pkg/clock"
)

const userColumns = `id, email, username, name, password, photo_url, is_email_verified, is_two_factor_enabled`

// PostgresUserStore implements [UserStore] using pgx.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates the PostgreSQL implementation of [UserStore].
func NewUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Create persists the user and its provider linkage in a single transaction.
//
// # Business Rules
//   - The password is stored as a bcrypt hash, never the literal.
//   - New accounts start with two-factor enabled and email unverified.
//   - A missing photo URL defaults to a generated avatar.
func (store *PostgresUserStore) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	var passwordHash *string
	if input.Password != nil {
		hashed, err := sec.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("auth_user_store_hash_failed: %w", err)
		}
		passwordHash = &hashed
	}

	photoURL := input.PhotoURL
	if photoURL == nil {
		generated := fmt.Sprintf("https://api.dicebear.com/9.x/pixel-art/svg?seed=%s", input.Name)
		photoURL = &generated
	}

	transaction, err := store.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	user := &User{
		Email:              input.Email,
		Username:           input.Username,
		Name:               input.Name,
		Password:           passwordHash,
		PhotoURL:           photoURL,
		IsEmailVerified:    false,
		IsTwoFactorEnabled: true,
	}

	const insertUser = `
		INSERT INTO "user" (email, username, name, password, photo_url, is_email_verified, is_two_factor_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = transaction.QueryRow(ctx, insertUser,
		user.Email,
		user.Username,
		user.Name,
		user.Password,
		user.PhotoURL,
		user.IsEmailVerified,
		user.IsTwoFactorEnabled,
	).Scan(&user.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}

	const insertLinkage = `
		INSERT INTO user_provider (user_id, provider_id)
		VALUES ($1, $2)`

	if _, err := transaction.Exec(ctx, insertLinkage, user.ID, input.Provider); err != nil {
		return nil, dberr.Wrap(err, "")
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "")
	}

	return user, nil
}

// GetByCredential resolves a user by email or username.
func (store *PostgresUserStore) GetByCredential(ctx context.Context, credential string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM "user" WHERE email = $1 OR username = $1`, userColumns)
	return store.queryOne(ctx, query, credential)
}

// GetByID resolves a user by primary key.
func (store *PostgresUserStore) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM "user" WHERE id = $1`, userColumns)
	return store.queryOne(ctx, query, id)
}

// GetByEmail resolves a user by unique email.
func (store *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM "user" WHERE email = $1`, userColumns)
	return store.queryOne(ctx, query, email)
}

// UpdateEmail swaps the address and clears the verified flag in one statement.
func (store *PostgresUserStore) UpdateEmail(ctx context.Context, id, newEmail string) error {
	const query = `UPDATE "user" SET email = $2, is_email_verified = FALSE WHERE id = $1`
	return store.exec(ctx, query, id, newEmail)
}

// UpdateUsername swaps the unique handle.
func (store *PostgresUserStore) UpdateUsername(ctx context.Context, id, newUsername string) error {
	const query = `UPDATE "user" SET username = $2 WHERE id = $1`
	return store.exec(ctx, query, id, newUsername)
}

// UpdatePassword replaces the stored hash.
func (store *PostgresUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE "user" SET password = $2 WHERE id = $1`
	return store.exec(ctx, query, id, passwordHash)
}

// SetEmailVerified marks the account's address as confirmed.
func (store *PostgresUserStore) SetEmailVerified(ctx context.Context, id string) error {
	const query = `UPDATE "user" SET is_email_verified = TRUE WHERE id = $1`
	return store.exec(ctx, query, id)
}

// Delete removes the account. Sessions and provider linkages cascade.
func (store *PostgresUserStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM "user" WHERE id = $1`
	return store.exec(ctx, query, id)
}

func (store *PostgresUserStore) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	user := &User{}
	err := store.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Name,
		&user.Password,
		&user.PhotoURL,
		&user.IsEmailVerified,
		&user.IsTwoFactorEnabled,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User not found")
	}
	return user, nil
}

func (store *PostgresUserStore) exec(ctx context.Context, query string, args ...any) error {
	tag, err := store.pool.Exec(ctx, query, args...)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User not found")
	}
	return nil
}

// # Session Store

// PostgresSessionStore implements [SessionStore] using pgx, enriching rows
// with parsed user-agent metadata and best-effort geolocation.
type PostgresSessionStore struct {
	pool    *pgxpool.Pool
	locator geo.Locator
	// refreshExp is the configured refresh lifetime, which bounds every
	// session row's expiry.
	refreshExp int64
}

// NewSessionStore creates the PostgreSQL implementation of [SessionStore].
func NewSessionStore(pool *pgxpool.Pool, locator geo.Locator, refreshExp int64) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool, locator: locator, refreshExp: refreshExp}
}

// Create writes an enriched session row.
//
// Geolocation and user-agent parsing are best-effort: unknown fields are
// stored as NULL and only database errors propagate. Loopback and empty
// addresses skip the lookup entirely.
func (store *PostgresSessionStore) Create(ctx context.Context, rjti, userID, ipAddress, userAgent string) error {
	now := clock.Now()
	session := &Session{
		ID:        rjti,
		UserID:    userID,
		IPAddress: ipAddress,
		LoginAt:   now,
		Exp:       now + store.refreshExp,
	}

	if device := useragent.Parse(userAgent); device != (useragent.Device{}) {
		session.DeviceVendor = nullable(device.Vendor)
		session.DeviceModel = nullable(device.Model)
		session.OSName = nullable(device.OSName)
		session.OSVersion = nullable(device.OSVersion)
		session.BrowserName = nullable(device.BrowserName)
		session.BrowserVersion = nullable(device.BrowserVersion)
	}

	if ipAddress != "" && ipAddress != "127.0.0.1" {
		if location := store.locator.Locate(ctx, ipAddress); location.Resolved {
			session.Country = nullable(location.Country)
			session.City = nullable(location.City)
			session.Region = nullable(location.Region)
			session.Timezone = nullable(location.Timezone)
			session.Lat = &location.Lat
			session.Lon = &location.Lon
			session.MapURL = nullable(location.MapURL)
		}
	}

	// borwser_version: the historical column name is wire-visible and kept.
	const query = `
		INSERT INTO session (
			id, user_id, ip_address, login_at, exp,
			device_vendor, device_model, os_name, os_version,
			browser_name, borwser_version,
			country, city, region, timezone, lat, lon, map_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := store.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.IPAddress,
		session.LoginAt,
		session.Exp,
		session.DeviceVendor,
		session.DeviceModel,
		session.OSName,
		session.OSVersion,
		session.BrowserName,
		session.BrowserVersion,
		session.Country,
		session.City,
		session.Region,
		session.Timezone,
		session.Lat,
		session.Lon,
		session.MapURL,
	)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	return nil
}

// Delete removes the session row for a refresh jti. Deleting a missing row
// is not an error; revocation is idempotent here.
func (store *PostgresSessionStore) Delete(ctx context.Context, rjti string) error {
	const query = `DELETE FROM session WHERE id = $1`
	if _, err := store.pool.Exec(ctx, query, rjti); err != nil {
		return dberr.Wrap(err, "")
	}
	return nil
}

// DeleteExpired sweeps the user's rows expiring inside the grace window, so
// sessions on the boundary are collected in the same pass.
func (store *PostgresSessionStore) DeleteExpired(ctx context.Context, userID string) error {
	const query = `DELETE FROM session WHERE user_id = $1 AND exp <= $2`
	if _, err := store.pool.Exec(ctx, query, userID, clock.Now()+60); err != nil {
		return dberr.Wrap(err, "")
	}
	return nil
}

// ListRefreshIDs returns the rjti of every session row for a user, newest
// login first.
func (store *PostgresSessionStore) ListRefreshIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT id FROM session WHERE user_id = $1 ORDER BY login_at DESC`

	rows, err := store.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return ids, nil
}

// DeleteSession satisfies the token engine's session hook.
func (store *PostgresSessionStore) DeleteSession(ctx context.Context, rjti string) error {
	return store.Delete(ctx, rjti)
}

// nullable maps an empty string to NULL.
func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
