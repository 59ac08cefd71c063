package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aOelschlager/islandora-dimensions/internal/config"
	"github.com/aOelschlager/islandora-dimensions/internal/dimensions"
	"github.com/aOelschlager/islandora-dimensions/internal/drupal"
	"github.com/aOelschlager/islandora-dimensions/internal/handlers"
	"github.com/aOelschlager/islandora-dimensions/internal/iiif"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var mappingPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dimension update service",
		Long: `Starts the HTTP service that accepts dimension update requests.

The service exposes POST /update-dimensions for the repository's action or
event system to call, along with run history, health, and Prometheus metrics
endpoints.`,
		Example: `  # Start the service on the default port 8888
  dimensions serve

  # Start the service on a custom port with a field mapping file
  dimensions serve --port 3000 --mapping mapping.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			mapping, err := config.LoadMapping(mappingPath)
			if err != nil {
				return err
			}

			svc := dimensions.NewService(
				drupal.NewClient(env.DrupalBaseURL, env.HTTPTimeout),
				iiif.NewClient(env.IIIFBaseURL, env.HTTPTimeout),
				mapping,
			)
			handler := handlers.New(svc, env.JWTSecret)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/update-dimensions", handler.HandleUpdateDimensions)
			mux.HandleFunc("/runs", handler.HandleRuns)
			mux.HandleFunc("/runs/", handler.HandleRunDetail)
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Dimension update service available", "addr", addr, "drupal", env.DrupalBaseURL, "iiif", env.IIIFBaseURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "Path to a YAML field mapping file (defaults to built-in Islandora mapping)")

	return cmd
}
