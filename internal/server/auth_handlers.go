package server

import (
	"net/http"
	"strings"

	"fermata/internal/apperr"
)

// handleIndex serves the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, "index", viewData{})
}

// handleRegister creates a new identity-provider account. The provider
// decides what counts as a valid email and password; its rejection is
// shown as a fixed kind-derived message, never raw provider text.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, "register", viewData{})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.flash(r, "warning", "Email and password are required.")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	if _, err := s.identity.CreateUser(r.Context(), email, password); err != nil {
		if apperr.IsUnavailable(err) {
			s.flash(r, "danger", "Registration is temporarily unavailable, try again later.")
		} else {
			s.flash(r, "danger", apperr.UserMessage(err))
		}
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	s.flash(r, "success", "Registration successful – sign in now.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleLogin establishes a session for a known email. No password check
// happens here: login trusts the identity provider's account lookup.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, "login", viewData{})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		s.flash(r, "danger", "Login failed – check your email address.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if _, err := s.identity.GetUserByEmail(r.Context(), email); err != nil {
		s.logger.WithError(err).WithField("email", email).Warn("Login failed")
		s.flash(r, "danger", "Login failed – check your email address.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if sess := requestSession(r); sess != nil {
		s.sessions.SetEmail(sess.ID, email)
	}

	s.flash(r, "success", "Logged in!")
	http.Redirect(w, r, "/songs", http.StatusFound)
}

// handleLogout clears the authenticated identity; always succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := requestSession(r); sess != nil {
		s.sessions.ClearEmail(sess.ID)
	}

	s.flash(r, "info", "Logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}
