// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package access provides ownership authorization for memberboard.
//
// Authorization here is deliberately minimal: a caller may mutate a record
// iff the caller is the record's owner. There are no roles and no grants.
// Services must resolve the target record first: a missing record is
// reported as not-found before the guard is ever consulted, so the denial
// path never leaks existence.
package access

import "github.com/oklog/ulid/v2"

// AccessControl decides whether a caller may mutate a resource with the
// given recorded owner.
//
//nolint:revive // AccessControl reads better at call sites than access.Control
type AccessControl interface {
	// Allows returns true if the caller owns the resource. Deny by default:
	// anonymous callers and ownerless records are always refused.
	Allows(caller, owner ulid.ULID) bool
}

// OwnerGuard is the sole AccessControl implementation: allow iff both ids
// are present and equal.
type OwnerGuard struct{}

// Allows implements AccessControl.
func (OwnerGuard) Allows(caller, owner ulid.ULID) bool {
	if caller.IsZero() || owner.IsZero() {
		return false
	}
	return caller.Compare(owner) == 0
}

// Compile-time interface check.
var _ AccessControl = OwnerGuard{}
