package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/timmy/promptgen/internal/config"
	"github.com/timmy/promptgen/internal/repository"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "promptgen-admin",
		Short:        "Maintenance commands for the promptgen service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	cmd.AddCommand(
		newMigrateCmd(&configPath),
		newSweepCmd(&configPath),
		newPingCmd(&configPath),
	)
	return cmd
}

func openDB(cfg *config.Config) (*gorm.DB, func(), error) {
	// Schema changes are explicit here; never migrate as a side effect.
	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false

	db, err := repository.InitDB(&dbCfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
