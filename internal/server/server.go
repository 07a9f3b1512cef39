// Package server provides read-only HTTP access to the published
// artifact documents, plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/artifact"
	"github.com/aegisml/arxiv-trends-service/internal/config"
)

// Server serves the documents in the serving directory over HTTP. All
// endpoints are read-only; the pipeline and publisher are the only
// writers.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *artifact.Store
	metricsCfg config.MetricsConfig
	logger     zerolog.Logger
}

// NewServer creates a server over the given serving directory.
func NewServer(cfg config.ServerConfig, metricsCfg config.MetricsConfig, servingDir string, logger zerolog.Logger) *Server {
	s := &Server{
		store:      artifact.NewStore(servingDir, logger, nil),
		metricsCfg: metricsCfg,
		logger:     logger.With().Str("component", "http_server").Logger(),
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)
	if s.metricsCfg.Enabled {
		r.Method(http.MethodGet, s.metricsCfg.Path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/artifacts", s.listArtifacts)
		r.Get("/artifacts/{name}", s.getArtifact)
	})

	return r
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until Shutdown is
// called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.httpServer.Addr).
		Str("serving_dir", s.store.Dir()).
		Msg("HTTP server starting")

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are already sent, so an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
