package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
)

// workerPollerCmd runs the labeler polling supervisor until SIGINT/SIGTERM.
var workerPollerCmd = &cobra.Command{
	Use:   "poller",
	Short: "Run the labeler event poller",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := deps.Scheduler.Run(runCtx); err != nil {
			logging.Error(ctx, "poller terminated", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run poller")
		}
		return nil
	}),
}

func init() {
	workerCmd.AddCommand(workerPollerCmd)
}
