// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package mocks provides testify mocks for the forum package interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/memberboard/memberboard/internal/forum"
)

// mockConstructorTestingT is the subset of *testing.T the constructors need.
type mockConstructorTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockMessageRepository is a mock of forum.MessageRepository.
type MockMessageRepository struct {
	mock.Mock
}

// NewMockMessageRepository creates a mock wired to the test lifecycle.
func NewMockMessageRepository(t mockConstructorTestingT) *MockMessageRepository {
	m := &MockMessageRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *forum.Message) error {
	ret := m.Called(ctx, msg)
	return ret.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id ulid.ULID) (*forum.Message, error) {
	ret := m.Called(ctx, id)
	var msg *forum.Message
	if v := ret.Get(0); v != nil {
		msg = v.(*forum.Message)
	}
	return msg, ret.Error(1)
}

func (m *MockMessageRepository) Update(ctx context.Context, msg *forum.Message) error {
	ret := m.Called(ctx, msg)
	return ret.Error(0)
}

func (m *MockMessageRepository) Delete(ctx context.Context, id ulid.ULID) error {
	ret := m.Called(ctx, id)
	return ret.Error(0)
}

func (m *MockMessageRepository) List(ctx context.Context) ([]*forum.Message, error) {
	ret := m.Called(ctx)
	var msgs []*forum.Message
	if v := ret.Get(0); v != nil {
		msgs = v.([]*forum.Message)
	}
	return msgs, ret.Error(1)
}

func (m *MockMessageRepository) Count(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

// Compile-time interface check.
var _ forum.MessageRepository = (*MockMessageRepository)(nil)
