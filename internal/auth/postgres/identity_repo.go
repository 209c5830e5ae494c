// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package postgres provides PostgreSQL implementations of the auth
// repositories.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/memberboard/memberboard/internal/auth"
	"github.com/memberboard/memberboard/internal/store"
)

// IdentityRepository implements auth.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	pool store.Querier
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(pool store.Querier) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// isUniqueViolation reports whether err is the unique constraint firing.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Create stores a new identity.
func (r *IdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO identities (id, username, credential_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		identity.ID.String(),
		identity.Username,
		identity.CredentialHash,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("IDENTITY_USERNAME_TAKEN").
				With("username", identity.Username).
				Wrap(auth.ErrUsernameTaken)
		}
		return oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "insert identity").
			With("username", identity.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, credential_hash, created_at, updated_at
		FROM identities
		WHERE id = $1
	`, id.String())

	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("IDENTITY_GET_BY_ID_FAILED").
			With("operation", "get identity by id").
			With("id", id.String()).
			Wrap(err)
	}
	return identity, nil
}

// GetByUsername retrieves an identity by exact, case-sensitive username.
func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, credential_hash, created_at, updated_at
		FROM identities
		WHERE username = $1
	`, username)

	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("IDENTITY_GET_BY_USERNAME_FAILED").
			With("operation", "get identity by username").
			With("username", username).
			Wrap(err)
	}
	return identity, nil
}

// Update updates an existing identity.
func (r *IdentityRepository) Update(ctx context.Context, identity *auth.Identity) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE identities SET
			username = $2,
			credential_hash = $3,
			updated_at = $4
		WHERE id = $1
	`,
		identity.ID.String(),
		identity.Username,
		identity.CredentialHash,
		identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("IDENTITY_USERNAME_TAKEN").
				With("username", identity.Username).
				Wrap(auth.ErrUsernameTaken)
		}
		return oops.Code("IDENTITY_UPDATE_FAILED").
			With("operation", "update identity").
			With("id", identity.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("IDENTITY_NOT_FOUND").
			With("id", identity.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// List returns all identities ordered by username. Credential hashes are
// not selected; the directory never needs them.
func (r *IdentityRepository) List(ctx context.Context) ([]*auth.Identity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, created_at, updated_at
		FROM identities
		ORDER BY username
	`)
	if err != nil {
		return nil, oops.Code("IDENTITY_LIST_FAILED").
			With("operation", "list identities").
			Wrap(err)
	}
	defer rows.Close()

	var identities []*auth.Identity
	for rows.Next() {
		var (
			idStr     string
			username  string
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&idStr, &username, &createdAt, &updatedAt); err != nil {
			return nil, oops.Code("IDENTITY_LIST_FAILED").
				With("operation", "scan identity row").
				Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("IDENTITY_LIST_FAILED").
				With("operation", "parse identity id").
				With("id", idStr).
				Wrap(err)
		}
		identities = append(identities, &auth.Identity{
			ID:        id,
			Username:  username,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("IDENTITY_LIST_FAILED").
			With("operation", "iterate identities").
			Wrap(err)
	}
	return identities, nil
}

// Count returns the number of registered identities.
func (r *IdentityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM identities`).Scan(&count)
	if err != nil {
		return 0, oops.Code("IDENTITY_COUNT_FAILED").
			With("operation", "count identities").
			Wrap(err)
	}
	return count, nil
}

// scanIdentity scans a single row into an Identity.
// Callers are responsible for handling pgx.ErrNoRows.
func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var (
		idStr          string
		username       string
		credentialHash string
		createdAt      time.Time
		updatedAt      time.Time
	)

	if err := row.Scan(&idStr, &username, &credentialHash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("IDENTITY_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Identity{
		ID:             id,
		Username:       username,
		CredentialHash: credentialHash,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.IdentityRepository = (*IdentityRepository)(nil)
