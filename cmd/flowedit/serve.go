package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/recoverly/flowedit"
	"github.com/recoverly/flowedit/internal/cli"
	httpAdapter "github.com/recoverly/flowedit/pkg/adapters/http"
	"github.com/recoverly/flowedit/pkg/observability"
	"github.com/recoverly/flowedit/pkg/session"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing API",
	Long: `Starts the editor API: sessions, edits, undo/redo and saves over JSON,
plus a server-sent event feed of graph diffs and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		metrics := observability.NewMetrics()
		// The stream manager is both the session publisher and the SSE source.
		streams := httpAdapter.NewStreamManager(logger)
		rt, err := cli.NewRuntime(sigCtx, cfg, logger,
			flowedit.WithMetrics(metrics),
			flowedit.WithSessionOptions(session.WithPublisher(streams)),
		)
		if err != nil {
			return err
		}
		defer rt.Close()

		handler, err := httpAdapter.NewHandler(rt.Engine.Sessions(),
			httpAdapter.WithTemplates(rt.Engine.Templates()),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithVersion(flowedit.Version),
			httpAdapter.WithLogger(rt.Logger),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              rt.Config.Listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			rt.Logger.Info("flowedit server listening", "address", srv.Addr, "store", rt.Config.Store, "version", flowedit.Version)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			rt.Logger.Info("shutting down", "signal", fmt.Sprint(sigCtx.Signal()))

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				rt.Logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			rt.Logger.Info("flowedit server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "Address to listen on (overrides the config)")
}
