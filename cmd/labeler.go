package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
	"modbridge/internal/ozone"
)

var labelerCmd = &cobra.Command{
	Use:   "labeler",
	Short: "Inspect the tenant's external labeler",
}

var labelerHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the labeler health endpoint",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")

		health, err := deps.Bridge.CheckLabelerHealth(ctx, tenantID)
		if err != nil {
			logging.Error(ctx, "labeler health check failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "check labeler health")
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "labeler ok, version %s\n", health.Version)
		return err
	}),
}

var labelerStatusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Query subject review statuses from the labeler",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")
		subject, _ := cmd.Flags().GetString("subject")
		reviewState, _ := cmd.Flags().GetString("review-state")
		cursor, _ := cmd.Flags().GetString("cursor")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := deps.Bridge.QuerySubjectStatuses(ctx, tenantID, ozone.QueryStatusesParams{
			Cursor:      cursor,
			Limit:       limit,
			Subject:     subject,
			ReviewState: reviewState,
		})
		if err != nil {
			logging.Error(ctx, "query subject statuses failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "query subject statuses")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d statuses, cursor=%q\n", len(resp.SubjectStatuses), resp.Cursor); err != nil {
			return errs.Wrap(err, "write statuses output")
		}
		for _, status := range resp.SubjectStatuses {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", status); err != nil {
				return errs.Wrap(err, "write statuses output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(labelerCmd)
	labelerCmd.AddCommand(labelerHealthCmd, labelerStatusesCmd)

	labelerHealthCmd.Flags().String("tenant", "", "Tenant id")
	_ = labelerHealthCmd.MarkFlagRequired("tenant")

	labelerStatusesCmd.Flags().String("tenant", "", "Tenant id")
	labelerStatusesCmd.Flags().String("subject", "", "Filter by subject DID or at:// URI")
	labelerStatusesCmd.Flags().String("review-state", "", "Filter by review state")
	labelerStatusesCmd.Flags().String("cursor", "", "Resume cursor")
	labelerStatusesCmd.Flags().Int("limit", 0, "Page size")
	_ = labelerStatusesCmd.MarkFlagRequired("tenant")
}
