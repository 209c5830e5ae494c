// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package mutation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Errors accumulates field errors in submission order. Validation never
// fails fast: callers check every field, then inspect the collected list.
type Errors struct {
	list []FieldError
}

// Add appends a field error.
func (e *Errors) Add(field, message string) {
	e.list = append(e.list, FieldError{Field: field, Message: message})
}

// Addf appends a formatted field error.
func (e *Errors) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Empty reports whether no errors were collected.
func (e *Errors) Empty() bool {
	return len(e.list) == 0
}

// List returns the collected errors in the order they were added.
func (e *Errors) List() []FieldError {
	return e.list
}

// CheckLength validates a required, already-trimmed string field against
// length bounds, accumulating at most one error for the field. Bounds
// count characters, not bytes, matching the VARCHAR(n) columns behind
// these fields.
func (e *Errors) CheckLength(field, value string, min, max int) {
	length := utf8.RuneCountInString(value)
	switch {
	case value == "":
		e.Addf(field, "is required")
	case length < min:
		e.Addf(field, "must be at least %d characters", min)
	case length > max:
		e.Addf(field, "must be at most %d characters", max)
	}
}

// CheckComposition validates that a password field contains at least one
// lowercase letter, one uppercase letter, and one digit. Empty values are
// reported as missing rather than badly composed.
func (e *Errors) CheckComposition(field, value string) {
	if value == "" {
		e.Addf(field, "is required")
		return
	}
	var lower, upper, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		e.Add(field, "must contain a lowercase letter, an uppercase letter, and a digit")
	}
}
