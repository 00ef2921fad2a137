package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/avolkov/notekeep/internal/errs"
	"github.com/avolkov/notekeep/internal/obs"
	"github.com/avolkov/notekeep/internal/ratelimit"
	"github.com/avolkov/notekeep/internal/users"
)

// Handler serves login and logout.
type Handler struct {
	users    *users.Directory
	sessions *SessionService
	limiter  *ratelimit.Limiter
}

// NewHandler creates the auth handler.
func NewHandler(directory *users.Directory, sessions *SessionService, limiter *ratelimit.Limiter) *Handler {
	return &Handler{users: directory, sessions: sessions, limiter: limiter}
}

// RegisterRoutes registers the auth routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("POST /logout", h.HandleLogout)
	mux.HandleFunc("GET /logout", h.HandleLogout)
}

// HandleLogin verifies credentials and starts a session. Failure is a single
// generic signal: an unknown username and a wrong password are
// indistinguishable to the caller.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientKey(r)) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many login attempts"})
		return
	}

	username, password, err := loginFields(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if !h.users.Verify(username, password) {
		obs.Pkg("auth").Info("login rejected", "username", username)
		writeError(w, errs.New(errs.InvalidCredentials, "invalid username or password"))
		return
	}

	sessionID, err := h.sessions.Create(username)
	if err != nil {
		writeError(w, errs.Wrap(errs.Internal, "failed to start session", err))
		return
	}
	SetCookie(w, sessionID)
	obs.Pkg("auth").Info("login accepted", "username", username)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleLogout ends the session unconditionally and clears the cookie, even
// when no session was active.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, err := GetFromRequest(r); err == nil {
		h.sessions.Delete(sessionID)
	}
	ClearCookie(w)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// loginFields reads credentials from a form post or a JSON body.
func loginFields(r *http.Request) (username, password string, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", "", errs.New(errs.InvalidArgument, "invalid JSON body")
		}
		return body.Username, body.Password, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", "", errs.New(errs.InvalidArgument, "invalid form body")
	}
	return r.FormValue("username"), r.FormValue("password"), nil
}

// clientKey buckets rate limiting by client address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errs.HTTPStatus(errs.CodeOf(err)))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": errs.MessageOf(err)})
}
