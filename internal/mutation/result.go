// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package mutation defines the shared outcome type for record mutations.
//
// Every create/update/delete path in memberboard reports its outcome through
// a single tagged Result so callers render validation failures, conflicts,
// denials, and missing records uniformly. Infrastructure failures travel on
// the ordinary error return instead; a Result never carries them.
package mutation

// Status classifies the outcome of a mutation attempt.
type Status int

const (
	// StatusOK means the mutation was applied and Record holds the result.
	StatusOK Status = iota
	// StatusInvalid means field validation failed; nothing was written.
	StatusInvalid
	// StatusConflict means a uniqueness rule was violated; nothing was written.
	StatusConflict
	// StatusDenied means the caller does not own the target; nothing was written.
	StatusDenied
	// StatusNotFound means the target record does not exist.
	StatusNotFound
)

// String returns a short lowercase name for the status, used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalid:
		return "invalid"
	case StatusConflict:
		return "conflict"
	case StatusDenied:
		return "denied"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// FieldError is a single field-level problem, reported in submission order.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the tagged outcome of a mutation.
//
// Exactly one shape is populated per status:
//   - StatusOK: Record
//   - StatusInvalid / StatusConflict: FieldErrors plus Submitted, the trimmed
//     input echoed back so a form can be redisplayed unchanged
//   - StatusDenied / StatusNotFound: status only
type Result[T any] struct {
	Status      Status
	Record      T
	FieldErrors []FieldError
	Submitted   map[string]string
}

// OK returns a successful result carrying the persisted record.
func OK[T any](record T) Result[T] {
	return Result[T]{Status: StatusOK, Record: record}
}

// Invalid returns a validation-failure result with accumulated field errors
// and the echoed submission.
func Invalid[T any](errs []FieldError, submitted map[string]string) Result[T] {
	return Result[T]{Status: StatusInvalid, FieldErrors: errs, Submitted: submitted}
}

// Conflict returns a uniqueness-conflict result. The conflict surfaces as a
// field error so it rides the same redisplay path as validation failures.
func Conflict[T any](field, message string, submitted map[string]string) Result[T] {
	return Result[T]{
		Status:      StatusConflict,
		FieldErrors: []FieldError{{Field: field, Message: message}},
		Submitted:   submitted,
	}
}

// Denied returns an ownership-denial result.
func Denied[T any]() Result[T] {
	return Result[T]{Status: StatusDenied}
}

// NotFound returns a missing-record result.
func NotFound[T any]() Result[T] {
	return Result[T]{Status: StatusNotFound}
}

// Applied reports whether the mutation was actually performed.
func (r Result[T]) Applied() bool {
	return r.Status == StatusOK
}
