package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/roster/internal/config"
	"github.com/geocoder89/roster/internal/db"
	"github.com/geocoder89/roster/internal/observability"
	"github.com/geocoder89/roster/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// env carries the config and logger loaded before any subcommand runs.
type env struct {
	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:          "rosterctl",
		Short:        "Operate the roster database",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			e.cfg = config.Load()
			e.log = observability.NewLogger(e.cfg.Env)
			slog.SetDefault(e.log)
		},
	}

	root.AddCommand(newMigrateCmd(e), newSeedCmd(e), newTokensCmd(e))
	return root
}

func (e *env) withPool(ctx context.Context, fn func(pool *pgxpool.Pool) error) error {
	pool, err := db.NewPool(ctx, e.cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	return fn(pool)
}

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}

	for _, dir := range []db.Direction{db.Up, db.Down, db.Status} {
		dir := dir
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: migrateShort(dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
					if err := db.Migrate(cmd.Context(), pool, dir); err != nil {
						return err
					}
					e.log.Info("migrate finished", "direction", string(dir))
					return nil
				})
			},
		})
	}

	return cmd
}

func migrateShort(dir db.Direction) string {
	switch dir {
	case db.Up:
		return "Apply all pending migrations"
	case db.Down:
		return "Roll back the most recent migration"
	default:
		return "Print the applied state of every migration"
	}
}

func newSeedCmd(e *env) *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and, with --demo, the demo fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			return e.withPool(ctx, func(pool *pgxpool.Pool) error {
				users := postgres.NewUsersRepo(pool, nil)
				groups := postgres.NewGroupsRepo(pool, nil)

				if err := db.EnsureAdmin(ctx, users, e.cfg.AdminName, e.cfg.AdminPassword, e.log); err != nil {
					return fmt.Errorf("seed admin: %w", err)
				}
				if demo {
					if err := db.SeedDemo(ctx, users, groups, e.log); err != nil {
						return fmt.Errorf("seed demo data: %w", err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "also create the demo user and Group 1..Group 10")
	return cmd
}

func newTokensCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Maintain the personal access token registry",
	}

	var olderThan time.Duration

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete tokens that expired or were revoked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			return e.withPool(ctx, func(pool *pgxpool.Pool) error {
				cutoff := time.Now().UTC().Add(-olderThan)

				n, err := postgres.NewTokensRepo(pool, nil).Prune(ctx, cutoff)
				if err != nil {
					return fmt.Errorf("prune tokens: %w", err)
				}

				e.log.Info("tokens pruned", "deleted", n, "cutoff", cutoff)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d tokens\n", n)
				return nil
			})
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 0, "only delete tokens that expired or were revoked at least this long ago")

	cmd.AddCommand(prune)
	return cmd
}
