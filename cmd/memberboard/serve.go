// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/memberboard/memberboard/internal/access"
	"github.com/memberboard/memberboard/internal/auth"
	authpg "github.com/memberboard/memberboard/internal/auth/postgres"
	"github.com/memberboard/memberboard/internal/config"
	"github.com/memberboard/memberboard/internal/forum"
	forumpg "github.com/memberboard/memberboard/internal/forum/postgres"
	"github.com/memberboard/memberboard/internal/logging"
	"github.com/memberboard/memberboard/internal/observability"
	"github.com/memberboard/memberboard/internal/store"
	"github.com/memberboard/memberboard/internal/web"
)

const (
	readinessTimeout = 2 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// serveOptions holds flags not carried in the config file.
type serveOptions struct {
	autoMigrate bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the memberboard server",
		Long: `Start the memberboard HTTP server: the JSON API for registration,
login, the member directory, and messages, plus an optional
metrics/health endpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, opts, nil)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", config.Default().Web.Addr, "API listen address")
	flags.String("metrics-addr", config.Default().Observability.Addr, "metrics/health HTTP address (empty = disabled)")
	flags.String("database-url", "", "PostgreSQL connection URL (default: DATABASE_URL)")
	flags.String("log-format", config.Default().Log.Format, "log format (json or text)")
	flags.String("log-level", config.Default().Log.Level, "log level (debug, info, warn, error)")
	flags.StringSlice("allowed-origins", config.Default().Web.AllowedOrigins, "CORS allowed origins")
	flags.Bool("secure-cookies", false, "mark session cookies Secure (requires HTTPS)")
	flags.Duration("prune-interval", config.Default().Sessions.PruneInterval, "how often expired sessions are removed")
	flags.BoolVar(&opts.autoMigrate, "auto-migrate", false, "apply pending schema migrations on startup")

	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, opts *serveOptions, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = func(ctx context.Context, dsn string, logger *slog.Logger) (Pool, error) {
			return store.Connect(ctx, dsn, logger)
		}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (SchemaMigrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if deps.WebServerFactory == nil {
		deps.WebServerFactory = func(cfg web.Config, handler *web.Handler, logger *slog.Logger) (APIServer, error) {
			return web.NewServer(cfg, handler, logger)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	logging.SetDefault("memberboard", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	logger := slog.Default()

	logger.Info("starting memberboard",
		"addr", cfg.Web.Addr,
		"log_format", cfg.Log.Format,
	)

	if opts.autoMigrate {
		migrator, migErr := deps.MigratorFactory(cfg.Database.URL)
		if migErr != nil {
			return migErr
		}
		if upErr := migrator.Up(); upErr != nil {
			_ = migrator.Close() //nolint:errcheck // migration failure takes precedence
			return upErr
		}
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
		logger.Info("schema migrations applied")
	}

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("connected to database")

	guard := access.OwnerGuard{}
	identityRepo := authpg.NewIdentityRepository(pool)
	sessionRepo := authpg.NewSessionRepository(pool)
	messageRepo := forumpg.NewMessageRepository(pool)

	authSvc, err := auth.NewServiceWithLogger(identityRepo, sessionRepo, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return err
	}
	identitySvc, err := auth.NewIdentityService(identityRepo, auth.NewArgon2idHasher(), guard)
	if err != nil {
		return err
	}
	forumSvc, err := forum.NewService(messageRepo, guard)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var (
		obsServer ObservabilityServer
		metrics   *observability.Metrics
	)
	if cfg.Observability.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Observability.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), readinessTimeout)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	handler, err := web.NewHandler(authSvc, identitySvc, forumSvc, metrics, logger, cfg.Web.SecureCookies)
	if err != nil {
		return err
	}
	webServer, err := deps.WebServerFactory(web.Config{
		Addr:           cfg.Web.Addr,
		AllowedOrigins: cfg.Web.AllowedOrigins,
		SecureCookies:  cfg.Web.SecureCookies,
	}, handler, logger)
	if err != nil {
		return err
	}

	webErrChan, err := webServer.Start()
	if err != nil {
		return oops.Code("WEB_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, webErrChan, "web")

	go pruneSessions(ctx, authSvc, metrics, cfg.Sessions.PruneInterval, logger)

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Memberboard started")
	logger.Info("memberboard ready", "addr", webServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if stopErr := webServer.Stop(shutdownCtx); stopErr != nil {
		logger.Warn("error stopping web server", "error", stopErr)
	}
	if obsServer != nil {
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			logger.Warn("error stopping observability server", "error", stopErr)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// pruneSessions removes expired sessions on a fixed interval until the
// context is cancelled.
func pruneSessions(ctx context.Context, authSvc *auth.Service, metrics *observability.Metrics, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := authSvc.PruneExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session prune failed", "error", err)
				continue
			}
			if pruned > 0 {
				logger.Info("pruned expired sessions", "count", pruned)
				if metrics != nil {
					metrics.SessionsPruned.Add(float64(pruned))
				}
			}
		}
	}
}

// monitorServerErrors cancels the serve context when a server fails after
// startup. A closed channel means a graceful stop.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
