package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
)

// serveCmd exposes the bridge to the rule engine and admin tooling over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bridge HTTP API",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr := deps.App.Config.Server.Addr
		if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
			addr = flagAddr
		}

		server := &http.Server{
			Addr:    addr,
			Handler: newBridgeAPIHandler(deps.Bridge, deps.Metrics),
		}

		runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- server.ListenAndServe()
		}()

		logging.Info(ctx, "bridge api started", slog.String("addr", addr))

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "bridge api failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve bridge api")
			}
			return nil
		case <-runCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown bridge api")
		}
		logging.Info(ctx, "bridge api stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
