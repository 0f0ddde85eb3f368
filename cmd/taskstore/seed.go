package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/task/seed"
	"github.com/kandev/taskboard/internal/task/service"
)

func seedCmd(configDir *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture tasks from a YAML file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configDir)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			provided, closeBus, err := events.Provide(cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = closeBus() }()

			repo, closeRepo, err := provideRepository(ctx, cfg, false, log)
			if err != nil {
				return err
			}
			defer closeRepo()

			res, err := seed.LoadFile(ctx, file, service.NewService(repo, provided.Bus, log), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d tasks, skipped %d existing\n", res.Created, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "tasks.yaml", "fixture file")
	return cmd
}
