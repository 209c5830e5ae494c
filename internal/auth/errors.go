// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned by repositories when an insert or update
// would violate username uniqueness. The application checks uniqueness
// before writing, but the database constraint is authoritative: concurrent
// registrations of the same username race past the check, and exactly one
// of them receives this error.
var ErrUsernameTaken = errors.New("username already taken")
