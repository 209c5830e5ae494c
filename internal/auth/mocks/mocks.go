// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/memberboard/memberboard/internal/auth"
)

// mockConstructorTestingT is the subset of *testing.T the constructors need.
type mockConstructorTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockIdentityRepository is a mock of auth.IdentityRepository.
type MockIdentityRepository struct {
	mock.Mock
}

// NewMockIdentityRepository creates a mock wired to the test lifecycle.
func NewMockIdentityRepository(t mockConstructorTestingT) *MockIdentityRepository {
	m := &MockIdentityRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	ret := m.Called(ctx, identity)
	return ret.Error(0)
}

func (m *MockIdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	ret := m.Called(ctx, id)
	var identity *auth.Identity
	if v := ret.Get(0); v != nil {
		identity = v.(*auth.Identity)
	}
	return identity, ret.Error(1)
}

func (m *MockIdentityRepository) GetByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	ret := m.Called(ctx, username)
	var identity *auth.Identity
	if v := ret.Get(0); v != nil {
		identity = v.(*auth.Identity)
	}
	return identity, ret.Error(1)
}

func (m *MockIdentityRepository) Update(ctx context.Context, identity *auth.Identity) error {
	ret := m.Called(ctx, identity)
	return ret.Error(0)
}

func (m *MockIdentityRepository) List(ctx context.Context) ([]*auth.Identity, error) {
	ret := m.Called(ctx)
	var identities []*auth.Identity
	if v := ret.Get(0); v != nil {
		identities = v.([]*auth.Identity)
	}
	return identities, ret.Error(1)
}

func (m *MockIdentityRepository) Count(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

// MockSessionRepository is a mock of auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock wired to the test lifecycle.
func NewMockSessionRepository(t mockConstructorTestingT) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	ret := m.Called(ctx, session)
	return ret.Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	ret := m.Called(ctx, tokenHash)
	var session *auth.Session
	if v := ret.Get(0); v != nil {
		session = v.(*auth.Session)
	}
	return session, ret.Error(1)
}

func (m *MockSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	ret := m.Called(ctx, id, lastSeen)
	return ret.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	ret := m.Called(ctx, id)
	return ret.Error(0)
}

func (m *MockSessionRepository) DeleteByIdentity(ctx context.Context, identityID ulid.ULID) error {
	ret := m.Called(ctx, identityID)
	return ret.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

// MockPasswordHasher is a mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock wired to the test lifecycle.
func NewMockPasswordHasher(t mockConstructorTestingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	ret := m.Called(password)
	return ret.String(0), ret.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	ret := m.Called(password, hash)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockPasswordHasher) NeedsRehash(hash string) bool {
	ret := m.Called(hash)
	return ret.Bool(0)
}

// Compile-time interface checks.
var (
	_ auth.IdentityRepository = (*MockIdentityRepository)(nil)
	_ auth.SessionRepository  = (*MockSessionRepository)(nil)
	_ auth.PasswordHasher     = (*MockPasswordHasher)(nil)
)
