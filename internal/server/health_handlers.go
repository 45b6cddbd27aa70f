package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"
)

// HealthStatus represents operational status for the /health endpoint.
type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	MetadataStore string    `json:"metadataStore"`
	FileStore     string    `json:"fileStore"`
	Sessions      int       `json:"activeSessions"`
}

// handleHealth returns basic liveness plus dependency checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := &HealthStatus{
		Status:        "healthy",
		Timestamp:     time.Now(),
		MetadataStore: "ok",
		FileStore:     "ok",
		Sessions:      s.sessions.Count(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.songs.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.MetadataStore = "error"
	}

	if _, err := os.Stat(s.files.Root()); err != nil {
		health.Status = "unhealthy"
		health.FileStore = "error"
	}

	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}
