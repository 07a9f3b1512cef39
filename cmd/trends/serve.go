package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aegisml/arxiv-trends-service/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the published artifacts over HTTP",
	Long: `Serve the artifacts in the serving directory over HTTP, with health
and readiness endpoints and an optional Prometheus metrics endpoint.

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	srv := server.NewServer(cfg.Server, cfg.Metrics, cfg.Artifacts.ServingDir, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	logger.Info().
		Str("address", cfg.Server.Address()).
		Str("serving_dir", cfg.Artifacts.ServingDir).
		Msg("artifact server ready")

	select {
	case <-cmd.Context().Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info().Msg("artifact server stopped")
	return nil
}
