package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
	"modbridge/internal/ports"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage per-tenant sync state",
}

var syncShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tenant's cursor and sync flag",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")

		state, err := deps.Bridge.GetSyncState(ctx, tenantID)
		if errors.Is(err, ports.ErrSyncStateNotFound) {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tenant %s has never been polled\n", tenantID)
			return err
		}
		if err != nil {
			return errs.Wrap(err, "get sync state")
		}

		cursor := "<none>"
		if state.LastSyncedCursor != nil {
			cursor = *state.LastSyncedCursor
		}
		syncedAt := "<never>"
		if state.LastSyncedAt != nil {
			syncedAt = *state.LastSyncedAt
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "enabled=%t cursor=%s synced_at=%s\n", state.SyncEnabled, cursor, syncedAt)
		return err
	}),
}

var syncEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable polling for the tenant",
	RunE:  withApp(setSyncEnabled(true)),
}

var syncDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable polling for the tenant",
	RunE:  withApp(setSyncEnabled(false)),
}

func setSyncEnabled(enabled bool) func(cmd *cobra.Command, deps appDeps) error {
	return func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")

		if err := deps.Bridge.SetSyncEnabled(ctx, tenantID, enabled); err != nil {
			logging.Error(ctx, "set sync enabled failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "set sync enabled")
		}

		_, err := fmt.Fprintf(cmd.OutOrStdout(), "sync enabled=%t for tenant %s\n", enabled, tenantID)
		return err
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncShowCmd, syncEnableCmd, syncDisableCmd)

	for _, c := range []*cobra.Command{syncShowCmd, syncEnableCmd, syncDisableCmd} {
		c.Flags().String("tenant", "", "Tenant id")
		_ = c.MarkFlagRequired("tenant")
	}
}
