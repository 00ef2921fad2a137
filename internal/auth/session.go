// Package auth implements the session gate between anonymous callers and
// the note repository. A session moves a caller from Anonymous to
// Authenticated(username); it ends on explicit logout or after the fixed
// expiry horizon.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/avolkov/notekeep/internal/clock"
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session configuration
const (
	SessionDuration   = 24 * time.Hour // fixed horizon from last login
	SessionIDLength   = 32             // 256 bits
	SessionCookieName = "session_id"
)

type session struct {
	username  string
	expiresAt time.Time
}

// SessionService tracks active sessions in memory. Sessions do not survive a
// process restart; callers simply log in again.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]session
	clock    clock.Clock
}

// NewSessionService creates a session service.
func NewSessionService(clk clock.Clock) *SessionService {
	return &SessionService{
		sessions: make(map[string]session),
		clock:    clk,
	}
}

// Create starts a session for username and returns the session ID to store
// in a cookie. The expiry is fixed at creation time.
func (s *SessionService) Create(username string) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session{
		username:  username,
		expiresAt: s.clock.Now().Add(SessionDuration),
	}
	return sessionID, nil
}

// Validate checks a session ID and returns the authenticated username.
// Expired sessions are removed as they are discovered.
func (s *SessionService) Validate(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	if !s.clock.Now().Before(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return "", ErrSessionExpired
	}
	return sess.username, nil
}

// Delete ends a session (logout). Deleting an unknown session is not an
// error.
func (s *SessionService) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Cookie helpers

// SetCookie sets the session cookie on the response.
func SetCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionDuration.Seconds()),
	})
}

// ClearCookie removes the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// GetFromRequest retrieves the session ID from the request cookie.
func GetFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return cookie.Value, nil
}

func generateSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
