package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/knots/internal/cli"
	httpAdapter "github.com/aretw0/knots/pkg/adapters/http"
	"github.com/aretw0/knots/pkg/observability"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve <story>",
	Short: "Start the HTTP server",
	Long: `Serves the story over a JSON API: sessions, choices, diverts, analysis,
the Mermaid graph, a server-sent event stream per session and Prometheus metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}

		metrics, err := observability.NewMetrics()
		if err != nil {
			return err
		}

		opts := engineOptions(cmd, args[0])
		opts.Metrics = metrics
		eng, closeFn, err := cli.CreateEngine(opts, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		// Publish the issue gauges before the first scrape.
		eng.Analyze()

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(eng,
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMetricsHandler(metrics.Handler()),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting knots server", "addr", srv.Addr, "story", args[0])
			cmd.Printf("Serving %s on %s\n", args[0], srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil {
					return err
				}
			}
			cmd.Println("Knots server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
