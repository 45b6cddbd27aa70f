package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"fermata/pkg/models"
)

// handleUpload accepts a multipart audio upload: the file goes to the
// file store first, then the song record to the metadata store. A record
// write failure after the file write leaves the file behind on purpose;
// there is no compensating delete.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, "upload", viewData{})
		return
	}

	maxBytes := s.config.Server.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.flash(r, "warning", "Upload failed: file too large or malformed form.")
		http.Redirect(w, r, "/upload", http.StatusFound)
		return
	}

	file, header, err := r.FormFile("song")
	if err != nil {
		s.flash(r, "warning", s.allowedFormatsMessage())
		http.Redirect(w, r, "/upload", http.StatusFound)
		return
	}
	defer file.Close()

	if !s.extractor.IsAudioFile(header.Filename) {
		s.flash(r, "warning", s.allowedFormatsMessage())
		http.Redirect(w, r, "/upload", http.StatusFound)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	artist := strings.TrimSpace(r.FormValue("artist"))

	filename, err := s.files.Save(header.Filename, file)
	if err != nil {
		s.logger.WithError(err).WithField("filename", header.Filename).Error("Failed to store uploaded file")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Best-effort enrichment from the stored bytes; submitted fields win.
	var duration int
	if path, err := s.files.Path(filename); err == nil {
		info := s.extractor.Probe(path)
		duration = info.Duration
		if title == "" {
			title = info.Title
		}
		if artist == "" {
			artist = info.Artist
		}
	}
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	if artist == "" {
		artist = "Unknown Artist"
	}

	email := currentUserEmail(r)
	song := models.Song{
		Title:    title,
		Artist:   artist,
		Filename: filename,
		Uploader: email,
		Duration: duration,
	}

	if err := s.songs.Add(r.Context(), song); err != nil {
		// The file stays in the store without a record (documented
		// partial-failure mode).
		s.logger.WithError(err).WithFields(logrus.Fields{
			"filename": filename,
			"uploader": email,
		}).Error("Failed to add song record after file write")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"filename": filename,
		"title":    title,
		"artist":   artist,
		"uploader": email,
	}).Info("Song uploaded")

	s.flash(r, "success", "Song uploaded!")
	http.Redirect(w, r, "/upload", http.StatusFound)
}

// allowedFormatsMessage builds the validation warning from configuration.
func (s *Server) allowedFormatsMessage() string {
	formats := make([]string, 0, len(s.config.Storage.AllowedFormats))
	for _, f := range s.config.Storage.AllowedFormats {
		formats = append(formats, strings.TrimPrefix(f, "."))
	}
	return "Allowed formats: " + strings.Join(formats, " / ")
}
