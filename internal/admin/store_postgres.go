// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/torii/internal/platform/dberr"
)

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates the PostgreSQL implementation of [Store].
func NewStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateAdmin persists a new operator account.
func (store *PostgresStore) CreateAdmin(ctx context.Context, email, description string) (*Admin, error) {
	const query = `
		INSERT INTO admin (email, description)
		VALUES ($1, $2)
		RETURNING id`

	admin := &Admin{Email: email, Description: description}
	if err := store.pool.QueryRow(ctx, query, email, description).Scan(&admin.ID); err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return admin, nil
}

// DeleteAdmin removes the account by email. The owned_by foreign key cascades
// the deletion to every API key.
func (store *PostgresStore) DeleteAdmin(ctx context.Context, email string) error {
	const query = `DELETE FROM admin WHERE email = $1`

	tag, err := store.pool.Exec(ctx, query, email)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Admin not found")
	}
	return nil
}

// ListAPIKeys returns every key owned by the admin, newest first. The hashed
// secret column is never selected.
func (store *PostgresStore) ListAPIKeys(ctx context.Context, ownerEmail string) ([]APIKey, error) {
	const query = `
		SELECT id, description, owned_by, created_at, last_used
		FROM admin_api_key
		WHERE owned_by = $1
		ORDER BY created_at DESC`

	rows, err := store.pool.Query(ctx, query, ownerEmail)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var key APIKey
		if err := rows.Scan(&key.ID, &key.Description, &key.OwnedBy, &key.CreatedAt, &key.LastUsed); err != nil {
			return nil, dberr.Wrap(err, "")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return keys, nil
}

// CreateAPIKey persists a hashed secret and returns the row's ULID, which is
// what callers present as the api_key identifier.
func (store *PostgresStore) CreateAPIKey(ctx context.Context, ownerEmail, description, secretHash string) (string, error) {
	const query = `
		INSERT INTO admin_api_key (key, description, owned_by)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id string
	if err := store.pool.QueryRow(ctx, query, secretHash, description, ownerEmail).Scan(&id); err != nil {
		return "", dberr.Wrap(err, "Admin not found")
	}
	return id, nil
}

// DeleteAPIKey removes a key by its ULID.
func (store *PostgresStore) DeleteAPIKey(ctx context.Context, id string) error {
	const query = `DELETE FROM admin_api_key WHERE id = $1`

	tag, err := store.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "API key not found")
	}
	return nil
}
