// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides login, logout, and caller resolution. It is the only
// component that touches both identities and sessions.
type Service struct {
	identities IdentityRepository
	sessions   SessionRepository
	hasher     PasswordHasher
	logger     *slog.Logger
}

// NewService creates a new Service. All dependencies are required.
func NewService(identities IdentityRepository, sessions SessionRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(identities, sessions, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(identities IdentityRepository, sessions SessionRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if identities == nil {
		return nil, oops.Errorf("identities repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		identities: identities,
		sessions:   sessions,
		hasher:     hasher,
		logger:     logger,
	}, nil
}

// dummyCredentialHash is used when a username doesn't exist to prevent timing
// attacks. Verification still runs so response time stays consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyCredentialHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login authenticates an identity and creates a session.
// Returns the session, plaintext token, and any error.
//
// Failure never distinguishes an unknown username from a wrong password:
// both surface as AUTH_INVALID_CREDENTIALS with the same message, and a
// dummy hash is verified for unknown usernames so response time stays flat.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, string, error) {
	identity, lookupErr := s.identities.GetByUsername(ctx, username)

	var targetHash string
	var identityExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			targetHash = dummyCredentialHash
			identityExists = false
		} else {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get identity by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = identity.CredentialHash
		identityExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// Dummy-hash verification errors are just an invalid login
		if !identityExists {
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("incorrect username or password")
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !identityExists || !valid {
		s.logger.Warn("login failed", "username", username)
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("incorrect username or password")
	}

	// Re-hash with current parameters if the stored hash is stale.
	// Best effort: login succeeds regardless.
	if s.hasher.NeedsRehash(identity.CredentialHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			identity.CredentialHash = newHash
			identity.Touch()
			_ = s.identities.Update(ctx, identity) //nolint:errcheck // Best effort
		}
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(identity.ID, tokenHash, time.Now().Add(SessionTokenExpiry))
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	s.logger.Info("login succeeded", "identity_id", identity.ID.String())
	return session, token, nil
}

// Logout destroys a session. Idempotent: logging out a session that no
// longer exists is a success, so a double logout never errors.
func (s *Service) Logout(ctx context.Context, sessionID ulid.ULID) error {
	err := s.sessions.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			With("session_id", sessionID.String()).
			Wrap(err)
	}
	return nil
}

// LogoutByToken destroys the session carried by a plaintext token. Like
// Logout it is idempotent: an empty or unknown token is a success.
func (s *Service) LogoutByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	return s.Logout(ctx, session.ID)
}

// CurrentIdentity resolves a session token to the identity it is bound to.
// Anonymous outcomes (empty token, unknown token, expired session, or a
// session whose identity has vanished) return (nil, nil). Only
// infrastructure failures return an error.
func (s *Service) CurrentIdentity(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}

	tokenHash := HashSessionToken(token)

	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		// Lazy cleanup; the janitor also sweeps these.
		_ = s.sessions.Delete(ctx, session.ID) //nolint:errcheck // Best effort
		return nil, nil
	}

	identity, err := s.identities.GetByID(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get identity by id").
			With("identity_id", session.IdentityID.String()).
			Wrap(err)
	}

	// Non-blocking, ignore errors
	_ = s.sessions.UpdateLastSeen(ctx, session.ID, time.Now()) //nolint:errcheck // Best effort

	return identity, nil
}

// PruneExpiredSessions removes expired sessions and returns how many were
// deleted. Intended to run periodically from the serve command.
func (s *Service) PruneExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("SESSION_PRUNE_FAILED").Wrap(err)
	}
	if count > 0 {
		s.logger.Info("pruned expired sessions", "count", count)
	}
	return count, nil
}
