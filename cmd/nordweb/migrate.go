package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nordweb/portal/pkg/storage/postgres"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply storage schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			switch cfg.Storage.Type {
			case "postgres":
				if err := postgres.Migrate(cmd.Context(), cfg.Storage.Postgres.DSN); err != nil {
					return fmt.Errorf("migrating postgres: %w", err)
				}
			case "sqlite":
				// Opening the database applies pending migrations.
				store, err := openStore(cmd.Context(), cfg.Storage, true)
				if err != nil {
					return err
				}
				store.Close()
			default:
				slog.Info("nothing to migrate", "storage", cfg.Storage.Type)
				return nil
			}

			slog.Info("migrations applied", "storage", cfg.Storage.Type)
			return nil
		},
	}
}
