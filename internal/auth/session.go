package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionCookieName carries the opaque session token.
	SessionCookieName = "guardian_session"

	sessionMaxAge = 24 * time.Hour
)

type session struct {
	username  string
	createdAt time.Time
}

// SessionManager maps opaque tokens to logged-in usernames. Sessions
// are process-local state: a restart logs everyone out, persisted data
// is unaffected.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]session
}

// NewSessionManager creates an empty session table.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]session)}
}

// Create mints a new session token for a username.
func (m *SessionManager) Create(username string) string {
	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = session{username: username, createdAt: time.Now()}
	m.mu.Unlock()
	return token
}

// Resolve returns the username for a token, or "" if the token is
// unknown or expired. Expired entries are dropped lazily.
func (m *SessionManager) Resolve(token string) string {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return ""
	}
	if time.Since(sess.createdAt) > sessionMaxAge {
		m.Delete(token)
		return ""
	}
	return sess.username
}

// Delete removes a session token. Unknown tokens are a no-op.
func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// SetCookie writes the session cookie on a response.
func SetCookie(w http.ResponseWriter, token string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		Expires:  time.Now().Add(sessionMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// ClearCookie expires the session cookie on a response.
func ClearCookie(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}
