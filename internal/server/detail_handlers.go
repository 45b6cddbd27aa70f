package server

import (
	"net/http"
	"net/url"
	"strings"

	"fermata/internal/apperr"
	"fermata/pkg/models"
)

// handleSongDetail renders the detail page for a locally stored song,
// looked up by exact filename.
func (s *Server) handleSongDetail(w http.ResponseWriter, r *http.Request) {
	filename, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/song/"))
	if err != nil || filename == "" {
		http.Error(w, "Song not found", http.StatusNotFound)
		return
	}

	song, err := s.songs.ByFilename(r.Context(), filename)
	if err != nil {
		if apperr.IsNotFound(err) {
			http.Error(w, "Song not found", http.StatusNotFound)
			return
		}
		s.logger.WithError(err).WithField("filename", filename).Error("Failed to look up song record")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	song.Source = models.SourceLocal
	s.render(w, r, "song", viewData{Song: song})
}

// handleJamendoDetail renders the detail page for a catalog-sourced
// track. Any catalog failure, including an unknown identifier, is a
// plain not-found.
func (s *Server) handleJamendoDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/jamendo/")
	if id == "" || s.catalog == nil {
		http.Error(w, "Song not found", http.StatusNotFound)
		return
	}

	song, err := s.catalog.Track(r.Context(), id)
	if err != nil {
		http.Error(w, "Song not found", http.StatusNotFound)
		return
	}

	s.render(w, r, "song", viewData{Song: song})
}
