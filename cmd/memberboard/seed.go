// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package main

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/memberboard/memberboard/internal/access"
	"github.com/memberboard/memberboard/internal/auth"
	authpg "github.com/memberboard/memberboard/internal/auth/postgres"
	"github.com/memberboard/memberboard/internal/config"
	"github.com/memberboard/memberboard/internal/forum"
	forumpg "github.com/memberboard/memberboard/internal/forum/postgres"
	"github.com/memberboard/memberboard/internal/mutation"
	"github.com/memberboard/memberboard/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
}

// seedMember is one demo account with its messages. Message IDs are fixed
// so repeated runs hit the unique constraint instead of duplicating rows.
type seedMember struct {
	username string
	password string
	messages []seedMessage
}

type seedMessage struct {
	id    string
	title string
	text  string
}

var seedMembers = []seedMember{
	{
		username: "greeter",
		password: "Welcome2board",
		messages: []seedMessage{
			{
				id:    "01HZM0000000000000000000SD",
				title: "Board rules",
				text:  "Be kind, stay on topic, and only edit your own messages.",
			},
			{
				id:    "01HZM0000000000000000001SD",
				title: "Say hello",
				text:  "Introduce yourself here so other members know who you are.",
			},
		},
	},
	{
		username: "caretaker",
		password: "Welcome2board",
		messages: []seedMessage{
			{
				id:    "01HZM0000000000000000002SD",
				title: "Lost and found",
				text:  "Post here if you have lost or found something on the premises.",
			},
		},
	},
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the board with demo members and messages",
		Long: `Creates demo member accounts and a few starter messages.
This command is idempotent - it will not create duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, seedCfg *seedConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (config file or DATABASE_URL)")
	}

	// Add timeout to prevent indefinite hangs
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close() //nolint:errcheck // migration failure takes precedence
		return err
	}
	if err := migrator.Close(); err != nil {
		cmd.PrintErrf("warning: error closing migrator: %v\n", err)
	}

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.Database.URL, nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	identityRepo := authpg.NewIdentityRepository(pool)
	messageRepo := forumpg.NewMessageRepository(pool)

	identitySvc, err := auth.NewIdentityService(identityRepo, auth.NewArgon2idHasher(), access.OwnerGuard{})
	if err != nil {
		return err
	}

	for _, member := range seedMembers {
		ownerID, seedErr := seedIdentity(ctx, cmd, identitySvc, identityRepo, member)
		if seedErr != nil {
			return seedErr
		}
		for _, msg := range member.messages {
			if seedErr := seedMessageRow(ctx, cmd, messageRepo, ownerID, msg); seedErr != nil {
				return seedErr
			}
		}
	}

	cmd.Println("Seed completed successfully")
	return nil
}

// seedIdentity registers a demo member, or looks it up when it already
// exists, and returns its ID.
func seedIdentity(ctx context.Context, cmd *cobra.Command, svc *auth.IdentityService, repo *authpg.IdentityRepository, member seedMember) (ulid.ULID, error) {
	res, err := svc.Register(ctx, auth.Credentials{
		Username: member.username,
		Password: member.password,
	})
	if err != nil {
		return ulid.ULID{}, oops.Code("SEED_FAILED").With("username", member.username).Wrap(err)
	}

	switch {
	case res.Applied():
		cmd.Printf("Created member %q\n", member.username)
		return res.Record.ID, nil
	case res.Status == mutation.StatusConflict:
		cmd.Printf("Member %q already exists, skipping\n", member.username)
		existing, getErr := repo.GetByUsername(ctx, member.username)
		if getErr != nil {
			return ulid.ULID{}, oops.Code("SEED_FAILED").With("username", member.username).Wrap(getErr)
		}
		return existing.ID, nil
	default:
		return ulid.ULID{}, oops.Code("SEED_FAILED").
			With("username", member.username).
			With("status", res.Status.String()).
			Errorf("seed member rejected")
	}
}

// seedMessageRow inserts one demo message, tolerating a duplicate from a
// previous run.
func seedMessageRow(ctx context.Context, cmd *cobra.Command, repo *forumpg.MessageRepository, ownerID ulid.ULID, seed seedMessage) error {
	id, err := ulid.Parse(seed.id)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "parse seed message ID").Wrap(err)
	}

	msg, err := forum.NewMessage(ownerID, seed.title, seed.text)
	if err != nil {
		return oops.Code("SEED_FAILED").With("title", seed.title).Wrap(err)
	}
	msg.ID = id

	if err := repo.Create(ctx, msg); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			cmd.Printf("Message %q already exists, skipping\n", seed.title)
			return nil
		}
		return oops.Code("SEED_FAILED").With("title", seed.title).Wrap(err)
	}

	cmd.Printf("Created message %q\n", seed.title)
	return nil
}
