package server

import (
	"net/http"
	"sort"
	"strings"

	"fermata/pkg/models"
)

// handleLibrary lists the library, filtered by the optional query `q`.
// Local records are matched by case-insensitive substring against title
// or artist and sorted by (artist, title); with a non-empty query the
// catalog's results are appended afterwards in the API's own order.
func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	all, err := s.songs.All(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to scan songs collection")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var results []models.Song
	for _, song := range all {
		if query == "" ||
			strings.Contains(strings.ToLower(song.Title), query) ||
			strings.Contains(strings.ToLower(song.Artist), query) {
			song.Source = models.SourceLocal
			results = append(results, song)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		ai, aj := strings.ToLower(results[i].Artist), strings.ToLower(results[j].Artist)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
	})

	// Catalog augmentation: failures inside Search degrade to an empty
	// slice, so a dead catalog never breaks the listing.
	if query != "" && s.catalog != nil {
		results = append(results, s.catalog.Search(r.Context(), query, s.config.Jamendo.PageSize)...)
	}

	s.render(w, r, "player", viewData{Query: query, Songs: results})
}
