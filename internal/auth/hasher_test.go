// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memberboard/memberboard/internal/auth"
	"github.com/memberboard/memberboard/pkg/errutil"
)

func TestArgon2idHasher_Hash(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash("Correct1horse")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.LessOrEqual(t, len(hash), auth.MaxCredentialHashLength)
}

func TestArgon2idHasher_HashEmptyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	_, err := hasher.Hash("")
	assert.ErrorIs(t, err, auth.ErrEmptyPassword)
}

func TestArgon2idHasher_HashIsSalted(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	first, err := hasher.Hash("Correct1horse")
	require.NoError(t, err)
	second, err := hasher.Hash("Correct1horse")
	require.NoError(t, err)

	// Same password, fresh salt, different hashes.
	assert.NotEqual(t, first, second)
}

func TestArgon2idHasher_VerifyRoundTrip(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash("Correct1horse")
	require.NoError(t, err)

	valid, err := hasher.Verify("Correct1horse", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = hasher.Verify("Wrong1horse", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestArgon2idHasher_VerifyInvalidHash(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	tests := []struct {
		name string
		hash string
	}{
		{"not a phc string", "plainly-not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad version field", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$nonsense$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"bad hash encoding", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
		{"threads overflow", "$argon2id$v=19$m=65536,t=1,p=300$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hasher.Verify("Correct1horse", tt.hash)
			errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
		})
	}
}

func TestArgon2idHasher_NeedsRehash(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	current, err := hasher.Hash("Correct1horse")
	require.NoError(t, err)

	tests := []struct {
		name string
		hash string
		want bool
	}{
		{"current parameters", current, false},
		{"different algorithm", "$bcrypt$whatever", true},
		{"malformed", "not-a-hash", true},
		{"stale memory cost", "$argon2id$v=19$m=32768,t=1,p=4$c2FsdA$aGFzaA", true},
		{"stale iteration count", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.NeedsRehash(tt.hash))
		})
	}
}
