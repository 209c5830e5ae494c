// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package auth provides the identity core of memberboard: credential
// hashing, registered identities, session-backed login/logout, and the
// self-service identity mutations.
//
// Recoverable outcomes (bad fields, taken usernames, ownership denials)
// are returned as mutation.Result values; error returns are reserved for
// infrastructure failures.
package auth
