package server

import (
	"net/http"
	"net/url"
	"os"
	"strings"
)

// handleStream serves audio bytes from the file store. http.ServeContent
// supplies byte-range support (seeking in the player) and conditional
// caching; the file store's path resolution rejects traversal segments.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	filename, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/songs/"))
	if err != nil || filename == "" {
		http.NotFound(w, r)
		return
	}

	path, err := s.files.Path(filename)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("filename", filename).Error("Failed to open audio file")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", s.extractor.ContentType(filename))
	http.ServeContent(w, r, filename, stat.ModTime(), file)
}
