// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/memberboard/memberboard/internal/auth"
)

// credentialsRequest is the register/login/update body.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// identityResponse is the public shape of an identity. The credential hash
// never leaves the server.
type identityResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func renderIdentity(identity *auth.Identity) any {
	return identityResponse{
		ID:        identity.ID.String(),
		Username:  identity.Username,
		CreatedAt: identity.CreatedAt,
	}
}

// errIsCode reports whether err carries the given oops code.
func errIsCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}

// Register creates a new identity from submitted credentials.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.identities.Register(r.Context(), auth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.internalError(w, r, "register", err)
		return
	}

	h.recordMutation("identity", "register", res.Status.String())
	writeResult(w, res, http.StatusCreated, func(identity *auth.Identity) any {
		return renderIdentity(identity)
	})
}

// Login authenticates and installs the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errIsCode(err, "AUTH_INVALID_CREDENTIALS") {
			h.recordLogin("failure")
			writeError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		h.internalError(w, r, "login", err)
		return
	}

	h.recordLogin("success")
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"identity_id": session.IdentityID.String(),
		"expires_at":  session.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout destroys the current session and clears the cookie. Idempotent:
// logging out without a session still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		token = cookie.Value
	}

	if err := h.auth.LogoutByToken(r.Context(), token); err != nil {
		h.internalError(w, r, "logout", err)
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the currently authenticated identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity := callerFrom(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, renderIdentity(identity))
}

// ListIdentities returns the member directory, ordered by username.
func (h *Handler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	identities, err := h.identities.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list identities", err)
		return
	}

	out := make([]any, 0, len(identities))
	for _, identity := range identities {
		out = append(out, renderIdentity(identity))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetIdentity returns a single member's public profile.
func (h *Handler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no such identity")
		return
	}

	identity, err := h.identities.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no such identity")
			return
		}
		h.internalError(w, r, "get identity", err)
		return
	}
	writeJSON(w, http.StatusOK, renderIdentity(identity))
}

// UpdateIdentity applies a self-service credentials change.
func (h *Handler) UpdateIdentity(w http.ResponseWriter, r *http.Request) {
	targetID, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no such identity")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.identities.Update(r.Context(), callerID(r.Context()), targetID, auth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.internalError(w, r, "update identity", err)
		return
	}

	h.recordMutation("identity", "update", res.Status.String())
	writeResult(w, res, http.StatusOK, func(identity *auth.Identity) any {
		return renderIdentity(identity)
	})
}

// DeleteIdentity always answers 405: account deletion is unsupported and
// fails closed rather than pretending to succeed.
func (h *Handler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	targetID, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no such identity")
		return
	}

	err = h.identities.Delete(r.Context(), callerID(r.Context()), targetID)
	if errIsCode(err, "IDENTITY_DELETE_UNSUPPORTED") {
		writeError(w, http.StatusMethodNotAllowed, "identity deletion is not supported")
		return
	}
	h.internalError(w, r, "delete identity", err)
}
