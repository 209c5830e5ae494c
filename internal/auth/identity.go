// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username length constraints. Usernames match case-sensitively and
// exactly; there is no normalization beyond whitespace trimming at the
// validation stage.
const (
	MinUsernameLength = 1
	MaxUsernameLength = 100
)

// Identity represents a registered account capable of owning messages.
type Identity struct {
	ID             ulid.ULID
	Username       string
	CredentialHash string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewIdentity creates a validated Identity with a fresh ID. The username
// is assumed to be trimmed and length-checked by the mutation pipeline;
// this constructor only enforces the structural invariants.
func NewIdentity(username, credentialHash string) (*Identity, error) {
	if username == "" {
		return nil, oops.Code("IDENTITY_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if credentialHash == "" {
		return nil, oops.Code("IDENTITY_INVALID_HASH").Errorf("credential hash cannot be empty")
	}
	if len(credentialHash) > MaxCredentialHashLength {
		return nil, oops.Code("IDENTITY_INVALID_HASH").
			With("length", len(credentialHash)).
			Errorf("credential hash exceeds %d characters", MaxCredentialHashLength)
	}

	now := time.Now()
	return &Identity{
		ID:             ulid.Make(),
		Username:       username,
		CredentialHash: credentialHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Touch updates the modification timestamp.
func (i *Identity) Touch() {
	i.UpdatedAt = time.Now()
}

// IdentityRepository manages identity persistence.
//
// There is deliberately no Delete: account deletion is unsupported in this
// core and must fail closed at the service layer rather than silently
// succeeding.
type IdentityRepository interface {
	// Create stores a new identity. Returns ErrUsernameTaken (wrapped) if
	// the username is already held.
	Create(ctx context.Context, identity *Identity) error

	// GetByID retrieves an identity by ID. Returns ErrNotFound (wrapped)
	// if no identity has the given ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Identity, error)

	// GetByUsername retrieves an identity by exact, case-sensitive
	// username match. Returns ErrNotFound (wrapped) on no match.
	GetByUsername(ctx context.Context, username string) (*Identity, error)

	// Update updates an existing identity. The ID never changes. Returns
	// ErrUsernameTaken (wrapped) if the new username is held by a
	// different identity, ErrNotFound (wrapped) if the ID does not exist.
	Update(ctx context.Context, identity *Identity) error

	// List returns all identities ordered by username. Credential hashes
	// are not populated; this feeds the member directory only.
	List(ctx context.Context) ([]*Identity, error)

	// Count returns the number of registered identities.
	Count(ctx context.Context) (int64, error)
}
