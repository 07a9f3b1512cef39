// Package observability provides logging and metrics support for the trends
// service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for pipeline runs, source requests, and artifacts
//   - Context helpers for propagating observability data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("run_id", runID).Msg("pipeline run started")
//
// Add run context to a logger:
//
//	logger = observability.WithRunContext(logger, runID, mode)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("trends")
//
// Record metrics:
//
//	metrics.RecordRunStarted("incremental")
//	metrics.RecordPageFetched(100)
//	metrics.RecordArtifactWrite("counts.json")
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithRun(ctx, runID, mode)
//
//	reqID := observability.RequestIDFromContext(ctx)
//	runID, mode := observability.RunFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - run_id: Pipeline run identifier
//   - mode: Pipeline mode (incremental, historical)
//   - month: Month bucket being fetched ("YYYY-MM")
//   - source: Literature source (arxiv)
//   - query: Source query string
//   - artifact: Persisted document name
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
