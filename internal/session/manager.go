package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string // success, warning, danger, info
	Message  string
}

// Session represents browser state. A session exists before login; Email
// is set on login and cleared on logout.
type Session struct {
	ID        string
	Email     string
	Flashes   []Flash
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager manages sessions in memory. Cookies carry only the session ID,
// signed with the configured secret key.
type Manager struct {
	sessions      map[string]*Session
	mutex         sync.RWMutex
	duration      time.Duration
	cookieName    string
	secret        []byte
	secureCookies bool
}

// NewManager creates a new session manager and starts its cleanup loop.
func NewManager(secret []byte, duration time.Duration, secureCookies bool) *Manager {
	m := &Manager{
		sessions:      make(map[string]*Session),
		duration:      duration,
		cookieName:    "fermata_session",
		secret:        secret,
		secureCookies: secureCookies,
	}

	go m.cleanupExpiredSessions()

	return m
}

// Ensure returns the request's session, creating one (and setting the
// cookie) if the request has none or carries an invalid cookie. The
// returned session is a point-in-time copy; reads of its fields are safe
// without the manager lock, and mutations go through SetEmail/ClearEmail
// against the ID.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if session, ok := m.FromRequest(r); ok {
		return session, nil
	}

	session, err := m.create()
	if err != nil {
		return nil, err
	}
	m.setCookie(w, session)

	snapshot := *session
	return &snapshot, nil
}

// FromRequest extracts a valid session from the request cookie. Like
// Ensure, it returns a copy.
func (m *Manager) FromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, false
	}

	id, ok := m.verify(cookie.Value)
	if !ok {
		return nil, false
	}

	return m.get(id)
}

// SetEmail marks the session as authenticated for the given email.
func (m *Manager) SetEmail(sessionID, email string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if session, exists := m.sessions[sessionID]; exists {
		session.Email = email
	}
}

// ClearEmail removes the authenticated identity but keeps the session
// alive (its flashes must survive logout).
func (m *Manager) ClearEmail(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if session, exists := m.sessions[sessionID]; exists {
		session.Email = ""
	}
}

// AddFlash queues a one-shot message on the session.
func (m *Manager) AddFlash(sessionID, category, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if session, exists := m.sessions[sessionID]; exists {
		session.Flashes = append(session.Flashes, Flash{Category: category, Message: message})
	}
}

// PopFlashes returns and clears the session's queued flashes.
func (m *Manager) PopFlashes(sessionID string) []Flash {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists || len(session.Flashes) == 0 {
		return nil
	}

	flashes := session.Flashes
	session.Flashes = nil
	return flashes
}

// Count returns the number of live sessions (used by the health endpoint).
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// create registers a new anonymous session.
func (m *Manager) create() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(m.duration),
	}

	m.mutex.Lock()
	m.sessions[id] = session
	m.mutex.Unlock()

	return session, nil
}

// get retrieves a copy of the session by ID, expiring it if stale. The
// stored session is only ever touched under the lock; handing out a copy
// keeps concurrent SetEmail/ClearEmail calls from racing with readers.
func (m *Manager) get(id string) (*Session, bool) {
	m.mutex.RLock()
	session, exists := m.sessions[id]
	var snapshot Session
	if exists {
		snapshot = *session
	}
	m.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Now().After(snapshot.ExpiresAt) {
		m.mutex.Lock()
		delete(m.sessions, id)
		m.mutex.Unlock()
		return nil, false
	}

	return &snapshot, true
}

// setCookie writes the signed session cookie.
func (m *Manager) setCookie(w http.ResponseWriter, session *Session) {
	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    m.sign(session.ID),
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}

	http.SetCookie(w, cookie)
}

// sign produces "<id>.<hmac>" for the cookie value.
func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	return id + "." + hex.EncodeToString(mac.Sum(nil))
}

// verify checks the cookie signature and returns the embedded session ID.
func (m *Manager) verify(value string) (string, bool) {
	id, sig, found := strings.Cut(value, ".")
	if !found || id == "" {
		return "", false
	}

	expected := hmac.New(sha256.New, m.secret)
	expected.Write([]byte(id))
	want := hex.EncodeToString(expected.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}
	return id, true
}

// cleanupExpiredSessions periodically removes expired sessions
func (m *Manager) cleanupExpiredSessions() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		m.mutex.Lock()

		for id, session := range m.sessions {
			if now.After(session.ExpiresAt) {
				delete(m.sessions, id)
			}
		}

		m.mutex.Unlock()
	}
}

// generateSessionID generates a cryptographically secure session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
