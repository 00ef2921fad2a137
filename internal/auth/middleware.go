package auth

import (
	"context"
	"net/http"
)

type contextKey string

const usernameKey contextKey = "username"

// LoginPath is where anonymous callers are sent.
const LoginPath = "/login"

// Middleware gates handlers on session state.
type Middleware struct {
	sessions *SessionService
}

// NewMiddleware creates auth middleware over the session service.
func NewMiddleware(sessions *SessionService) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireAuth redirects anonymous callers to the login page. The wrapped
// handler only ever runs with an authenticated username in context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := GetFromRequest(r)
		if err != nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		username, err := m.sessions.Validate(sessionID)
		if err != nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth adds the username to context when a valid session is present
// and continues either way.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := GetFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		username, err := m.sessions.Validate(sessionID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UsernameFromContext returns the authenticated username, if any.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}
