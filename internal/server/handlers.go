package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// healthHandler reports liveness. The process serving at all is the
// whole signal; artifact freshness is the pipeline's concern.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports readiness: the serving directory must exist
// and be readable. Before the first publish there is nothing to serve.
func (s *Server) readinessHandler(w http.ResponseWriter, _ *http.Request) {
	if _, err := os.ReadDir(s.store.Dir()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// listArtifacts returns the names of the published documents.
func (s *Server) listArtifacts(w http.ResponseWriter, _ *http.Request) {
	names, err := s.store.List()
	if err != nil {
		s.logger.Error().Err(err).Msg("listing artifacts failed")
		writeError(w, http.StatusInternalServerError, "listing artifacts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"artifacts": names})
}

// getArtifact streams one published document verbatim. Unknown and
// path-escaping names both come back as 404 so the response does not
// reveal which of the two it was.
func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !validArtifactName(name) {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	data, err := os.ReadFile(s.store.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "artifact not found")
			return
		}
		s.logger.Error().Err(err).Str("artifact", name).Msg("reading artifact failed")
		writeError(w, http.StatusInternalServerError, "reading artifact failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// validArtifactName reports whether name is a plain JSON file name with
// no path components, so joining it to the serving directory cannot
// escape it.
func validArtifactName(name string) bool {
	if name == "" || filepath.Ext(name) != ".json" {
		return false
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return false
	}
	return true
}
