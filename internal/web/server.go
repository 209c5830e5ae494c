// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package web exposes the memberboard HTTP surface: registration, login,
// the member directory, and message CRUD. Every request resolves its
// session cookie into an explicit caller identity before any service is
// invoked; the services themselves never see a cookie or a token.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/oops"
)

// SessionCookie is the name of the cookie carrying the plaintext session
// token.
const SessionCookie = "memberboard_session"

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	// SecureCookies marks session cookies Secure; off for local development.
	SecureCookies bool
}

// Server serves the memberboard JSON API.
type Server struct {
	cfg        Config
	handler    *Handler
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a Server around the given handler.
func NewServer(cfg Config, handler *Handler, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, oops.Errorf("handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, handler: handler, logger: logger}, nil
}

// Router builds the chi router with the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // health check write error is acceptable
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Every API request resolves the session cookie first so handlers see
	// an explicit caller, possibly anonymous.
	r.Route("/api", func(r chi.Router) {
		r.Use(s.handler.ResolveCaller)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handler.Register)
			r.Post("/login", s.handler.Login)
			r.Post("/logout", s.handler.Logout)
			r.Get("/me", s.handler.Me)
		})

		r.Route("/identities", func(r chi.Router) {
			r.Get("/", s.handler.ListIdentities)
			r.Get("/{id}", s.handler.GetIdentity)
			r.With(s.handler.RequireCaller).Put("/{id}", s.handler.UpdateIdentity)
			r.With(s.handler.RequireCaller).Delete("/{id}", s.handler.DeleteIdentity)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", s.handler.ListMessages)
			r.Get("/{id}", s.handler.GetMessage)
			r.With(s.handler.RequireCaller).Post("/", s.handler.CreateMessage)
			r.With(s.handler.RequireCaller).Put("/{id}", s.handler.UpdateMessage)
			r.With(s.handler.RequireCaller).Delete("/{id}", s.handler.DeleteMessage)
		})

		r.Get("/stats", s.handler.Stats)
	})

	return r
}

// Start begins serving the API. It returns an error channel that receives
// any server failure after startup; the channel is closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.cfg.Addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
