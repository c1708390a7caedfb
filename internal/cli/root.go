package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"mentordash/internal/platform/config"
	"mentordash/internal/platform/db"
)

// App carries what the operator commands need. Open is only called by
// commands that touch the database.
type App struct {
	Config config.Config
	Open   func(ctx context.Context) (*pgxpool.Pool, error)
}

func NewApp(cfg config.Config) *App {
	return &App{
		Config: cfg,
		Open: func(ctx context.Context) (*pgxpool.Pool, error) {
			return db.Connect(ctx, cfg)
		},
	}
}

// NewRootCmd creates the top-level "mentorctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "mentorctl",
		Short:         "Operator tooling for the mentor dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newSeedCmd(app),
		newPaymentCmd(app),
		newJobsCmd(app),
	)

	return root
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.Migrate(ctx, pool, app.Config.MigrationsDir)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", version)
			}
			return nil
		},
	}
}

func newSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin user if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Seed(ctx, pool, app.Config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded admin %s\n", app.Config.SeedAdminEmail)
			return nil
		},
	}
}
