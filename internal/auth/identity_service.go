// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/memberboard/memberboard/internal/access"
	"github.com/memberboard/memberboard/internal/mutation"
)

// Credentials is the submitted form for registration and identity updates.
type Credentials struct {
	Username string
	Password string
}

// trimmed returns the form with surrounding whitespace removed from the
// username. The password is taken verbatim: whitespace may be deliberate.
func (c Credentials) trimmed() Credentials {
	c.Username = strings.TrimSpace(c.Username)
	return c
}

// echo returns the redisplayable submission. The password is never echoed.
func (c Credentials) echo() map[string]string {
	return map[string]string{"username": c.Username}
}

// validate accumulates field errors for the form.
func (c Credentials) validate() []mutation.FieldError {
	var errs mutation.Errors
	errs.CheckLength("username", c.Username, MinUsernameLength, MaxUsernameLength)
	errs.CheckComposition("password", c.Password)
	return errs.List()
}

// IdentityService handles registration and self-service identity updates.
type IdentityService struct {
	identities IdentityRepository
	hasher     PasswordHasher
	guard      access.AccessControl
}

// NewIdentityService creates a new IdentityService. All dependencies are required.
func NewIdentityService(identities IdentityRepository, hasher PasswordHasher, guard access.AccessControl) (*IdentityService, error) {
	if identities == nil {
		return nil, oops.Errorf("identities repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if guard == nil {
		return nil, oops.Errorf("access guard is required")
	}
	return &IdentityService{
		identities: identities,
		hasher:     hasher,
		guard:      guard,
	}, nil
}

// Register creates a new identity from submitted credentials.
//
// Pipeline: validate, uniqueness check, hash, persist. The pre-insert
// uniqueness check gives a friendly conflict for the common case without
// paying for a hash; the database unique constraint is the authoritative
// close of the check-then-insert race, and its violation maps to the same
// conflict.
func (s *IdentityService) Register(ctx context.Context, sub Credentials) (mutation.Result[*Identity], error) {
	sub = sub.trimmed()

	if errs := sub.validate(); len(errs) > 0 {
		return mutation.Invalid[*Identity](errs, sub.echo()), nil
	}

	_, err := s.identities.GetByUsername(ctx, sub.Username)
	switch {
	case err == nil:
		return mutation.Conflict[*Identity]("username", "is already taken", sub.echo()), nil
	case !errors.Is(err, ErrNotFound):
		return mutation.Result[*Identity]{}, oops.Code("IDENTITY_REGISTER_FAILED").
			With("operation", "check username uniqueness").
			Wrap(err)
	}

	credentialHash, err := s.hasher.Hash(sub.Password)
	if err != nil {
		return mutation.Result[*Identity]{}, oops.Code("IDENTITY_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	identity, err := NewIdentity(sub.Username, credentialHash)
	if err != nil {
		return mutation.Result[*Identity]{}, oops.Code("IDENTITY_REGISTER_FAILED").
			With("operation", "construct identity").
			Wrap(err)
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		// Concurrent registration of the same username lost the race to the
		// unique constraint.
		if errors.Is(err, ErrUsernameTaken) {
			return mutation.Conflict[*Identity]("username", "is already taken", sub.echo()), nil
		}
		return mutation.Result[*Identity]{}, oops.Code("IDENTITY_REGISTER_FAILED").
			With("operation", "insert identity").
			Wrap(err)
	}

	return mutation.OK(identity), nil
}

// Update applies a self-service username/password change to the target
// identity. Only the owner may update; a username held by a different
// identity is a conflict.
//
// Pipeline: validate, load target (not-found before the guard runs),
// authorize, uniqueness check, hash, persist.
func (s *IdentityService) Update(ctx context.Context, callerID, targetID ulid.ULID, sub Credentials) (mutation.Result[*Identity], error) {
	sub = sub.trimmed()

	if errs := sub.validate(); len(errs) > 0 {
		return mutation.Invalid[*Identity](errs, sub.echo()), nil
	}

	identity, err := s.identities.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return mutation.NotFound[*Identity](), nil
		}
		return mutation.Result[*Identity]{}, oops.Code("IDENTITY_UPDATE_FAILED").
			With("operation", "get identity by id").
			Wrap(err)
	}

	if !s.guard.Allows(callerID, identity.ID) {
		return mutation.Denied[*Identity](), nil
	}

	if sub.Username != identity.Username {
		existing, err := s.identities.GetByUsername(ctx, sub.Username)
		switch {
		case err == nil && existing.ID != identity.ID:
			return mutation.Conflict[*Identity]("username", "is already taken", sub.echo()), nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return mutation.Result[*Identity]{}, oops.Code("IDENTITY_UPDATE_FAILED").
				With("operation", "check username uniqueness").
				Wrap(err)
		}
	}

	credentialHash, err := s.hasher.Hash(sub.Password)
	if err != nil {
		return mutation.Result[*Identity]{}, oops.Code("IDENTITY_UPDATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	identity.Username = sub.Username
	identity.CredentialHash = credentialHash
	identity.Touch()

	if err := s.identities.Update(ctx, identity); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return mutation.Conflict[*Identity]("username", "is already taken", sub.echo()), nil
		}
		return mutation.Result[*Identity]{}, oops.Code("IDENTITY_UPDATE_FAILED").
			With("operation", "update identity").
			Wrap(err)
	}

	return mutation.OK(identity), nil
}

// Get retrieves a single identity for the member detail page.
func (s *IdentityService) Get(ctx context.Context, id ulid.ULID) (*Identity, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err //nolint:wrapcheck // Sentinel passthrough for callers
		}
		return nil, oops.Code("IDENTITY_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return identity, nil
}

// List returns the member directory, ordered by username. Credential
// hashes are never populated.
func (s *IdentityService) List(ctx context.Context) ([]*Identity, error) {
	identities, err := s.identities.List(ctx)
	if err != nil {
		return nil, oops.Code("IDENTITY_LIST_FAILED").Wrap(err)
	}
	return identities, nil
}

// Count returns the number of registered identities.
func (s *IdentityService) Count(ctx context.Context) (int64, error) {
	count, err := s.identities.Count(ctx)
	if err != nil {
		return 0, oops.Code("IDENTITY_COUNT_FAILED").Wrap(err)
	}
	return count, nil
}

// Delete always fails closed: account deletion is not supported by this
// core. Declared so callers get an explicit refusal instead of a silent
// no-op.
func (s *IdentityService) Delete(_ context.Context, _, _ ulid.ULID) error {
	return oops.Code("IDENTITY_DELETE_UNSUPPORTED").
		Errorf("identity deletion is not supported")
}
