package server

import (
	"context"
	"net/http"

	"fermata/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// requestSession returns the session attached to the request context by
// the session middleware, or nil.
func requestSession(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionContextKey).(*session.Session)
	return sess
}

// currentUserEmail returns the authenticated identity carried by the
// request, or "" for anonymous requests. Handlers read identity from
// here only, never from ambient state.
func currentUserEmail(r *http.Request) string {
	if sess := requestSession(r); sess != nil {
		return sess.Email
	}
	return ""
}

// withSessionContext attaches sess to the request context.
func withSessionContext(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionContextKey, sess))
}
