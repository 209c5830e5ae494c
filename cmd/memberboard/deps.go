// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/memberboard/memberboard/internal/observability"
	"github.com/memberboard/memberboard/internal/store"
	"github.com/memberboard/memberboard/internal/web"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory creates the database pool.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, dsn string, logger *slog.Logger) (Pool, error)

	// MigratorFactory creates the schema migrator for --auto-migrate.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (SchemaMigrator, error)

	// WebServerFactory creates the JSON API server.
	// Default: web.NewServer
	WebServerFactory func(cfg web.Config, handler *web.Handler, logger *slog.Logger) (APIServer, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// Pool wraps the methods serve uses from *pgxpool.Pool.
type Pool interface {
	store.Querier
	Ping(ctx context.Context) error
	Close()
}

// SchemaMigrator wraps the methods serve uses from *store.Migrator.
type SchemaMigrator interface {
	Up() error
	Close() error
}

// APIServer wraps the methods serve uses from *web.Server.
type APIServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer wraps the methods serve uses from
// *observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
