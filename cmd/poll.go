package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
)

// pollCmd runs a single poll for one tenant, useful for verifying
// credentials and cursor advance without starting the worker.
var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the tenant's labeler event stream once",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")

		result, err := deps.Bridge.PollEvents(ctx, tenantID)
		if err != nil {
			logging.Error(ctx, "poll failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "poll events")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "polled %d events, cursor=%q\n", len(result.Events), result.NewCursor); err != nil {
			return errs.Wrap(err, "write poll output")
		}
		for _, event := range result.Events {
			classified := deps.Bridge.ClassifyEvent(event)
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  #%d %s subject=%s\n", event.ID, classified.Category, classified.SubjectDID); err != nil {
				return errs.Wrap(err, "write poll output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(pollCmd)

	pollCmd.Flags().String("tenant", "", "Tenant id")
	_ = pollCmd.MarkFlagRequired("tenant")
}
