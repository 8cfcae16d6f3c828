package main

import (
	"github.com/spf13/cobra"
	"github.com/timmy/promptgen/internal/config"
	"github.com/timmy/promptgen/internal/repository"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repository.Migrate(db); err != nil {
				return err
			}
			return writePlain(cmd.OutOrStdout(), "migrated %s database\n", cfg.Database.Driver)
		},
	}
}
