package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/macrograph/internal/cli"
	"github.com/aretw0/macrograph/internal/presentation/tui"
	httpAdapter "github.com/aretw0/macrograph/pkg/adapters/http"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Exposes the macro catalog, macro execution, command dispatch and an SSE
stream of execution events over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var streams *httpAdapter.StreamManager
		app, err := newApp(cmd, func(logger *slog.Logger) domain.LifecycleHooks {
			streams = httpAdapter.NewStreamManager(logger)
			return streams.Hooks()
		})
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(app.Logger),
		}
		if app.Metrics != nil {
			opts = append(opts, httpAdapter.WithMetrics(app.Config.Metrics.Path, app.Metrics.Handler()))
		}
		handler, err := httpAdapter.NewHandler(app.Engine, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		tui.PrintBanner(os.Stdout)
		go func() {
			app.Logger.Info("starting server", "addr", srv.Addr, "store", app.Config.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			return err

		case <-sc.Done():
			app.Logger.Info("start shutdown", "signal", sc.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.Logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			cli.PrintSystemMessage("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides http.addr)")
}
