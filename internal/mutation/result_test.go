// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package mutation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memberboard/memberboard/internal/mutation"
)

func TestResultConstructors(t *testing.T) {
	t.Run("OK carries the record", func(t *testing.T) {
		res := mutation.OK("record")
		assert.Equal(t, mutation.StatusOK, res.Status)
		assert.Equal(t, "record", res.Record)
		assert.True(t, res.Applied())
	})

	t.Run("Invalid carries errors and echo", func(t *testing.T) {
		errs := []mutation.FieldError{{Field: "title", Message: "is required"}}
		echo := map[string]string{"title": ""}
		res := mutation.Invalid[string](errs, echo)
		assert.Equal(t, mutation.StatusInvalid, res.Status)
		assert.Equal(t, errs, res.FieldErrors)
		assert.Equal(t, echo, res.Submitted)
		assert.False(t, res.Applied())
	})

	t.Run("Conflict surfaces as a field error", func(t *testing.T) {
		res := mutation.Conflict[string]("username", "is already taken", map[string]string{"username": "alice"})
		assert.Equal(t, mutation.StatusConflict, res.Status)
		assert.Equal(t, []mutation.FieldError{{Field: "username", Message: "is already taken"}}, res.FieldErrors)
		assert.Equal(t, "alice", res.Submitted["username"])
	})

	t.Run("Denied and NotFound carry status only", func(t *testing.T) {
		assert.Equal(t, mutation.StatusDenied, mutation.Denied[string]().Status)
		assert.Equal(t, mutation.StatusNotFound, mutation.NotFound[string]().Status)
	})
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status mutation.Status
		want   string
	}{
		{mutation.StatusOK, "ok"},
		{mutation.StatusInvalid, "invalid"},
		{mutation.StatusConflict, "conflict"},
		{mutation.StatusDenied, "denied"},
		{mutation.StatusNotFound, "not_found"},
		{mutation.Status(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}
