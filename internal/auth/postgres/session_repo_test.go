// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memberboard/memberboard/internal/auth"
	"github.com/memberboard/memberboard/internal/auth/postgres"
)

func newStoredSession(t *testing.T) *auth.Session {
	t.Helper()
	session, err := auth.NewSession(ulid.Make(), "tokenhash", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return session
}

func sessionRows(session *auth.Session) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "identity_id", "token_hash", "expires_at", "created_at", "last_seen_at"}).
		AddRow(session.ID.String(), session.IdentityID.String(), session.TokenHash,
			session.ExpiresAt, session.CreatedAt, session.LastSeenAt)
}

func TestSessionRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)
	session := newStoredSession(t)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(session.ID.String(), session.IdentityID.String(), session.TokenHash,
			session.ExpiresAt, session.CreatedAt, session.LastSeenAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), session))
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)
	session := newStoredSession(t)

	mock.ExpectQuery("SELECT id, identity_id, token_hash").
		WithArgs("tokenhash").
		WillReturnRows(sessionRows(session))

	got, err := repo.GetByTokenHash(context.Background(), "tokenhash")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.IdentityID, got.IdentityID)
}

func TestSessionRepository_GetByTokenHash_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)

	mock.ExpectQuery("SELECT id, identity_id, token_hash").
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows([]string{"id", "identity_id", "token_hash", "expires_at", "created_at", "last_seen_at"}))

	_, err := repo.GetByTokenHash(context.Background(), "unknown")
	assert.ErrorIs(t, err, auth.ErrNotFound)
	// The token hash never leaks into the error.
	assert.NotContains(t, err.Error(), "unknown")
}

func TestSessionRepository_UpdateLastSeen(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)
	id := ulid.Make()
	seen := time.Now()

	mock.ExpectExec("UPDATE sessions SET last_seen_at").
		WithArgs(id.String(), seen).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateLastSeen(context.Background(), id, seen))
}

func TestSessionRepository_Delete(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)
	id := ulid.Make()

	mock.ExpectExec("DELETE FROM sessions WHERE id").
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), id))
}

func TestSessionRepository_Delete_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)
	id := ulid.Make()

	mock.ExpectExec("DELETE FROM sessions WHERE id").
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepository_DeleteByIdentity(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)
	identityID := ulid.Make()

	mock.ExpectExec("DELETE FROM sessions WHERE identity_id").
		WithArgs(identityID.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, repo.DeleteByIdentity(context.Background(), identityID))
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	count, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestSessionRepository_DeleteExpired_Error(t *testing.T) {
	mock := newMockPool(t)
	repo := postgres.NewSessionRepository(mock)

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.DeleteExpired(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
