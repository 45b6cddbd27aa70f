package server

import (
	"net/http"

	"fermata/internal/session"
	"fermata/pkg/models"
)

// viewData is the payload handed to page templates.
type viewData struct {
	User    string
	Flashes []session.Flash
	Query   string
	Songs   []models.Song
	Song    *models.Song
}

// render executes the named page template, filling in the current user
// and pending flash messages.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data viewData) {
	if sess := requestSession(r); sess != nil {
		data.User = sess.Email
		data.Flashes = s.sessions.PopFlashes(sess.ID)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name+".html", data); err != nil {
		s.logger.WithError(err).WithField("template", name).Error("Failed to render template")
	}
}

// flash queues a one-shot message on the request's session.
func (s *Server) flash(r *http.Request, category, message string) {
	if sess := requestSession(r); sess != nil {
		s.sessions.AddFlash(sess.ID, category, message)
	}
}
