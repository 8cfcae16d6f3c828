package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/timmy/promptgen/internal/config"
	"github.com/timmy/promptgen/internal/repository"
	"github.com/timmy/promptgen/internal/service"
	"github.com/timmy/promptgen/internal/storage"
)

func newSweepCmd(configPath *string) *cobra.Command {
	var (
		grace   time.Duration
		dryRun  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored images that no generation record references",
		RunE: func(cmd *cobra.Command, args []string) error {
			if grace <= 0 {
				return fmt.Errorf("--grace must be > 0")
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			objectStorage, err := storage.NewStorage(storage.ConfigFrom(&cfg.Storage))
			if err != nil {
				return err
			}

			sweeper := service.NewSweepService(objectStorage, repository.NewGenerationRepository(db), &service.SweepConfig{
				Namespace: cfg.Storage.Namespace,
				Workers:   workers,
			})
			stats, err := sweeper.Sweep(cmd.Context(), &service.SweepOptions{Grace: grace, DryRun: dryRun})
			if err != nil {
				return err
			}

			if dryRun {
				return writePlain(cmd.OutOrStdout(), "dry run: %d orphaned images would be removed\n", stats.Orphaned)
			}
			if stats.Failed > 0 {
				return fmt.Errorf("removed %d orphaned images, %d deletions failed", stats.Deleted, stats.Failed)
			}
			return writePlain(cmd.OutOrStdout(), "removed %d orphaned images\n", stats.Deleted)
		},
	}

	cmd.Flags().DurationVar(&grace, "grace", 24*time.Hour, "skip images stored more recently than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report orphans without deleting them")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent deletions")
	return cmd
}
