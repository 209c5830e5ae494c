// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package forum

import "errors"

// ErrNotFound is returned when a requested message does not exist.
var ErrNotFound = errors.New("not found")
