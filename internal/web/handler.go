// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/memberboard/memberboard/internal/auth"
	"github.com/memberboard/memberboard/internal/forum"
	"github.com/memberboard/memberboard/internal/observability"
)

// contextKey is a private type for request context values.
type contextKey int

const callerKey contextKey = iota

// Handler holds the memberboard HTTP handlers.
type Handler struct {
	auth       *auth.Service
	identities *auth.IdentityService
	forum      *forum.Service
	metrics    *observability.Metrics
	logger     *slog.Logger
	// secureCookies marks session cookies Secure.
	secureCookies bool
}

// NewHandler creates a Handler. Metrics may be nil when observability is
// disabled; the service dependencies are required.
func NewHandler(authSvc *auth.Service, identitySvc *auth.IdentityService, forumSvc *forum.Service, metrics *observability.Metrics, logger *slog.Logger, secureCookies bool) (*Handler, error) {
	if authSvc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if identitySvc == nil {
		return nil, oops.Errorf("identity service is required")
	}
	if forumSvc == nil {
		return nil, oops.Errorf("forum service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:          authSvc,
		identities:    identitySvc,
		forum:         forumSvc,
		metrics:       metrics,
		logger:        logger,
		secureCookies: secureCookies,
	}, nil
}

// callerFrom returns the resolved caller identity, or nil for anonymous.
func callerFrom(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(callerKey).(*auth.Identity)
	return identity
}

// callerID returns the caller's ID, or the zero ULID for anonymous.
func callerID(ctx context.Context) ulid.ULID {
	if identity := callerFrom(ctx); identity != nil {
		return identity.ID
	}
	return ulid.ULID{}
}

// ResolveCaller resolves the session cookie into a caller identity and
// stores it in the request context. Anonymous requests pass through with
// no identity; only infrastructure failures stop the request.
func (h *Handler) ResolveCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			token = cookie.Value
		}

		identity, err := h.auth.CurrentIdentity(r.Context(), token)
		if err != nil {
			h.internalError(w, r, "resolve caller", err)
			return
		}

		if identity != nil {
			ctx := context.WithValue(r.Context(), callerKey, identity)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCaller rejects anonymous requests with 401.
func (h *Handler) RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerFrom(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setSessionCookie installs the session token cookie.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.SessionTokenExpiry / time.Second),
	})
}

// clearSessionCookie expires the session token cookie.
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// recordMutation counts a mutation outcome if metrics are enabled.
func (h *Handler) recordMutation(entity, operation, status string) {
	if h.metrics != nil {
		h.metrics.MutationsTotal.WithLabelValues(entity, operation, status).Inc()
	}
}

// recordLogin counts a login outcome if metrics are enabled.
func (h *Handler) recordLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}
