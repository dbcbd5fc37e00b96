package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stockscan/internal/scan"
	"stockscan/internal/schedule"
	"stockscan/internal/warehouse"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Project utilities",
	}
	projectCmd.AddCommand(newProjectRescheduleCommand(ctx))
	return projectCmd
}

func newProjectRescheduleCommand(ctx *commandContext) *cobra.Command {
	var dates warehouse.ProjectDates

	cmd := &cobra.Command{
		Use:   "reschedule <project-id>",
		Short: "Move a project to new dates",
		Long: `Update a project's name, client and dates. The change is never queued:
when the server is unreachable or reports crew or transport conflicts the
project keeps its previous dates and the reason is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			projectID, err := scan.ParseProjectID(args[0], cfg.Scan.ProjectIDMaxDigits)
			if err != nil {
				return err
			}

			client := warehouse.NewFromConfig(cfg, warehouse.WithLogger(logger))
			defer client.CloseIdleConnections()
			service := schedule.NewService(client, logger)

			result, err := service.UpdateDates(cmd.Context(), projectID, dates)
			if err != nil {
				return err
			}
			if !result.Updated {
				return errors.New(result.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %d: %s (%s to %s)\n", projectID, result.Message, dates.StartDate, dates.EndDate)
			return nil
		},
	}

	cmd.Flags().StringVar(&dates.Name, "name", "", "Project name (required)")
	cmd.Flags().StringVar(&dates.ClientName, "client", "", "Client name")
	cmd.Flags().StringVar(&dates.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates.EndDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates.Notes, "notes", "", "Free-form notes")
	return cmd
}
