package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/arxiv"
	"github.com/aegisml/arxiv-trends-service/internal/artifact"
	"github.com/aegisml/arxiv-trends-service/internal/config"
	"github.com/aegisml/arxiv-trends-service/internal/observability"
	"github.com/aegisml/arxiv-trends-service/internal/pipeline"
)

// metricsNamespace prefixes every Prometheus metric the service registers.
const metricsNamespace = "trends"

// loadConfig reads the configuration and applies CLI log overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg *config.Config) zerolog.Logger {
	return observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
}

// newPipeline wires the fetch, classify, and persist stages from configuration.
func newPipeline(cfg *config.Config, logger zerolog.Logger) *pipeline.Pipeline {
	metrics := observability.NewMetrics(metricsNamespace)

	fetcher := arxiv.New(arxiv.Config{
		BaseURL:         cfg.ArXiv.BaseURL,
		Timeout:         cfg.ArXiv.Timeout,
		RequestInterval: cfg.ArXiv.RequestInterval,
		BurstSize:       cfg.ArXiv.BurstSize,
		PageSize:        cfg.ArXiv.PageSize,
		MaxRetries:      cfg.ArXiv.MaxRetries,
		RetryDelay:      cfg.ArXiv.RetryDelay,
		UserAgent:       cfg.ArXiv.UserAgent,
	}, logger, metrics)

	store := artifact.NewStore(cfg.Artifacts.DataDir, logger, metrics)

	return pipeline.New(cfg.Pipeline, fetcher, store, logger, metrics)
}

// logSummary reports a finished pipeline run at the command level.
func logSummary(logger zerolog.Logger, summary *pipeline.Summary) {
	logger.Info().
		Str("run_id", summary.RunID).
		Str("mode", summary.Mode).
		Int("total_records", summary.TotalRecords).
		Int("safety_records", summary.SafetyCount).
		Int("artifacts", len(summary.Artifacts)).
		Dur("duration", summary.Duration).
		Msg("run finished")
}
