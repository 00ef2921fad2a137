// Package web provides the HTTP surface over the note repository. Responses
// are JSON; page rendering belongs to the presentation layer consuming this
// contract.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/avolkov/notekeep/internal/auth"
	"github.com/avolkov/notekeep/internal/clock"
	"github.com/avolkov/notekeep/internal/errs"
	"github.com/avolkov/notekeep/internal/notes"
	"github.com/avolkov/notekeep/internal/obs"
)

// Handler provides the note repository routes.
type Handler struct {
	notes        *notes.Service
	clock        clock.Clock
	sampleAPIKey string
}

// NewHandler creates a web handler. sampleAPIKey is surfaced verbatim on the
// dashboard; it plays no role in core logic.
func NewHandler(notesService *notes.Service, clk clock.Clock, sampleAPIKey string) *Handler {
	return &Handler{notes: notesService, clock: clk, sampleAPIKey: sampleAPIKey}
}

// RegisterRoutes registers all note routes on the given mux. Every
// repository operation sits behind RequireAuth; an anonymous caller is
// redirected to the login page and the operation never runs.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.Handle("GET /", authMiddleware.OptionalAuth(http.HandlerFunc(h.HandleIndex)))
	mux.Handle("GET /dashboard", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleDashboard)))

	mux.Handle("GET /notes", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleListNotes)))
	mux.Handle("POST /notes", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleCreateNote)))
	mux.Handle("GET /notes/{id}", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleGetNote)))
	mux.Handle("POST /notes/{id}", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleUpdateNote)))
	mux.Handle("POST /notes/{id}/delete", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleDeleteNote)))
	mux.Handle("GET /search", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleSearch)))

	// Machine-readable read of the caller's notes, exactly as stored.
	mux.Handle("GET /api/notes", authMiddleware.RequireAuth(http.HandlerFunc(h.HandleAPINotes)))
}

// dashboardNote is a Note plus its derived relative-age label.
type dashboardNote struct {
	notes.Note
	FormattedDate string `json:"formatted_date"`
}

// HandleIndex sends the caller to the dashboard or the login page.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := auth.UsernameFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

// HandleDashboard returns the caller's notes sorted by recency, with
// relative-age labels, plus the optional sample API key configuration value.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())
	listed := h.notes.ListByRecency(username)

	obs.Pkg("web").Info("dashboard read", "username", username, "notes", len(listed))
	writeJSON(w, http.StatusOK, map[string]any{
		"username":       username,
		"sample_api_key": h.sampleAPIKey,
		"notes":          h.withAges(listed),
	})
}

// HandleListNotes returns the caller's notes in stored order.
func (h *Handler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())
	listed := h.notes.List(username)
	writeJSON(w, http.StatusOK, map[string]any{
		"notes":       listed,
		"total_count": len(listed),
	})
}

// HandleCreateNote creates a note from a JSON body.
func (h *Handler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())

	var params notes.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "invalid JSON body"))
		return
	}

	note, err := h.notes.Create(username, params)
	if err != nil {
		writeError(w, err)
		return
	}
	obs.Pkg("web").Info("note created", "username", username, "note_id", note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// HandleGetNote returns one note with its derived display fields.
func (h *Handler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())

	note, ok := h.notes.Get(username, r.PathValue("id"))
	if !ok {
		writeError(w, errs.New(errs.NotFound, "note not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"note":           note,
		"formatted_date": notes.FormatAge(note.UpdatedAt, h.clock.Now()),
		"content_html":   notes.RenderHTML(note.Content),
	})
}

// HandleUpdateNote applies a partial update from a JSON body. Absent fields
// keep their stored values.
func (h *Handler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())

	var params notes.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "invalid JSON body"))
		return
	}

	note, err := h.notes.Update(username, r.PathValue("id"), params)
	if err != nil {
		writeError(w, err)
		return
	}
	obs.Pkg("web").Info("note updated", "username", username, "note_id", note.ID)
	writeJSON(w, http.StatusOK, note)
}

// HandleDeleteNote removes a note. Deleting an unknown id reports not found
// and writes nothing.
func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())
	id := r.PathValue("id")

	removed, err := h.notes.Delete(username, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !removed {
		writeError(w, errs.New(errs.NotFound, "note not found"))
		return
	}
	obs.Pkg("web").Info("note deleted", "username", username, "note_id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleSearch returns the caller's notes matching the q parameter, ordered
// by recency. An empty query matches everything.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())
	query := r.URL.Query().Get("q")

	matched := h.notes.Search(username, query)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":       query,
		"notes":       h.withAges(matched),
		"total_count": len(matched),
	})
}

// HandleAPINotes returns the caller's notes as a bare array of stored Note
// records, for programmatic consumers.
func (h *Handler) HandleAPINotes(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())
	listed := h.notes.List(username)
	if listed == nil {
		listed = []notes.Note{}
	}
	writeJSON(w, http.StatusOK, listed)
}

func (h *Handler) withAges(listed []notes.Note) []dashboardNote {
	now := h.clock.Now()
	out := make([]dashboardNote, 0, len(listed))
	for _, n := range listed {
		out = append(out, dashboardNote{Note: n, FormattedDate: notes.FormatAge(n.UpdatedAt, now)})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.Pkg("web").Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errs.HTTPStatus(errs.CodeOf(err)), map[string]string{"error": errs.MessageOf(err)})
}
