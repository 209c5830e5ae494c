// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package web

import (
	"encoding/json"
	"net/http"

	"github.com/memberboard/memberboard/internal/mutation"
	"github.com/memberboard/memberboard/pkg/errutil"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// failureResponse carries a rejected mutation back to the client: the
// status name, per-field problems, and the echoed submission for form
// redisplay.
type failureResponse struct {
	Status      string                `json:"status"`
	FieldErrors []mutation.FieldError `json:"field_errors,omitempty"`
	Submitted   map[string]string     `json:"submitted,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response write errors mean a gone client
	json.NewEncoder(w).Encode(v)
}

// writeError writes a uniform JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps a mutation status to its HTTP status code. okStatus is
// used for applied mutations so creates can answer 201.
func statusFor(s mutation.Status, okStatus int) int {
	switch s {
	case mutation.StatusOK:
		return okStatus
	case mutation.StatusInvalid:
		return http.StatusUnprocessableEntity
	case mutation.StatusConflict:
		return http.StatusConflict
	case mutation.StatusDenied:
		return http.StatusForbidden
	case mutation.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeResult renders a mutation result. The render function converts the
// record to its response shape; it is only called for applied mutations.
func writeResult[T any](w http.ResponseWriter, res mutation.Result[T], okStatus int, render func(T) any) {
	if res.Applied() {
		if render == nil {
			w.WriteHeader(okStatus)
			return
		}
		writeJSON(w, okStatus, render(res.Record))
		return
	}

	writeJSON(w, statusFor(res.Status, okStatus), failureResponse{
		Status:      res.Status.String(),
		FieldErrors: res.FieldErrors,
		Submitted:   res.Submitted,
	})
}

// internalError logs an infrastructure failure and answers 500 without
// leaking internals.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	errutil.LogError(h.logger.With("method", r.Method, "path", r.URL.Path), operation+" failed", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
