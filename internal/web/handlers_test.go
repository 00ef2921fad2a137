package web_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/notekeep/internal/auth"
	"github.com/avolkov/notekeep/internal/clock"
	"github.com/avolkov/notekeep/internal/config"
	"github.com/avolkov/notekeep/internal/notes"
	"github.com/avolkov/notekeep/internal/ratelimit"
	"github.com/avolkov/notekeep/internal/store"
	"github.com/avolkov/notekeep/internal/users"
	"github.com/avolkov/notekeep/internal/web"
)

type fixture struct {
	ts  *httptest.Server
	clk *clock.Fake
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithLimit(t, ratelimit.Config{RPS: 1000, Burst: 1000, CleanupInterval: time.Hour})
}

func newFixtureWithLimit(t *testing.T, limit ratelimit.Config) *fixture {
	t.Helper()

	st := store.New(t.TempDir())
	clk := clock.NewFake(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	directory := users.NewDirectory(st, clk)
	require.NoError(t, directory.Seed())

	notesService := notes.NewService(st, clk)
	sessions := auth.NewSessionService(clk)
	limiter := ratelimit.NewLimiter(limit)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	auth.NewHandler(directory, sessions, limiter).RegisterRoutes(mux)
	web.NewHandler(notesService, clk, config.NotConfigured).RegisterRoutes(mux, auth.NewMiddleware(sessions))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &fixture{ts: ts, clk: clk}
}

// client returns an anonymous client that does not follow redirects, so
// tests can assert on them.
func (f *fixture) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login returns a client holding a valid session cookie for the user.
func (f *fixture) login(t *testing.T, username, password string) *http.Client {
	t.Helper()
	client := f.client(t)
	resp, err := client.PostForm(f.ts.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	return client
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func createNote(t *testing.T, f *fixture, client *http.Client, params notes.CreateParams) notes.Note {
	t.Helper()
	resp := postJSON(t, client, f.ts.URL+"/notes", params)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var note notes.Note
	decodeJSON(t, resp, &note)
	return note
}

func TestLoginWithSeededAccounts(t *testing.T) {
	f := newFixture(t)

	f.login(t, "admin", "admin123")
	f.login(t, "demo", "demo123")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	client := f.client(t)

	// unknown user and wrong password produce the same generic signal
	for _, creds := range []url.Values{
		{"username": {"admin"}, "password": {"wrong"}},
		{"username": {"ghost"}, "password": {"admin123"}},
		{"username": {"admin"}, "password": {"Admin123"}},
	} {
		resp, err := client.PostForm(f.ts.URL+"/login", creds)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var body map[string]string
		decodeJSON(t, resp, &body)
		assert.Equal(t, "invalid username or password", body["error"])
	}
}

func TestLoginAcceptsJSONBody(t *testing.T) {
	f := newFixture(t)
	client := f.client(t)

	resp := postJSON(t, client, f.ts.URL+"/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestUnauthenticatedRequestsRedirectToLogin(t *testing.T) {
	f := newFixture(t)
	client := f.client(t)

	for _, path := range []string{"/dashboard", "/notes", "/search", "/api/notes", "/notes/some-id"} {
		resp, err := client.Get(f.ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "path %s", path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), "path %s", path)
	}
}

func TestIndexRedirects(t *testing.T) {
	f := newFixture(t)

	anon := f.client(t)
	resp, err := anon.Get(f.ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	authed := f.login(t, "admin", "admin123")
	resp, err = authed.Get(f.ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestNoteLifecycle(t *testing.T) {
	f := newFixture(t)
	client := f.login(t, "admin", "admin123")

	note := createNote(t, f, client, notes.CreateParams{
		Title:    "  My Note  ",
		Content:  "hello **world**",
		Category: "",
	})
	assert.Equal(t, "My Note", note.Title)
	assert.Equal(t, "General", note.Category)
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)

	// read it back with derived display fields
	resp, err := client.Get(f.ts.URL + "/notes/" + note.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		Note          notes.Note `json:"note"`
		FormattedDate string     `json:"formatted_date"`
		ContentHTML   string     `json:"content_html"`
	}
	decodeJSON(t, resp, &view)
	assert.Equal(t, note.ID, view.Note.ID)
	assert.Equal(t, "Today", view.FormattedDate)
	assert.Contains(t, view.ContentHTML, "<strong>world</strong>")

	// partial update: only title and updated_at change
	f.clk.Advance(time.Minute)
	resp = postJSON(t, client, f.ts.URL+"/notes/"+note.ID, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated notes.Note
	decodeJSON(t, resp, &updated)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "hello **world**", updated.Content)
	assert.Greater(t, updated.UpdatedAt, note.UpdatedAt)

	// delete, then everything reports not found
	resp = postJSON(t, client, f.ts.URL+"/notes/"+note.ID+"/delete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]bool
	decodeJSON(t, resp, &deleted)
	assert.True(t, deleted["deleted"])

	resp, err = client.Get(f.ts.URL + "/notes/" + note.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, client, f.ts.URL+"/notes/"+note.ID+"/delete", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCrossUserIsolation(t *testing.T) {
	f := newFixture(t)

	admin := f.login(t, "admin", "admin123")
	note := createNote(t, f, admin, notes.CreateParams{Title: "admin only"})

	demo := f.login(t, "demo", "demo123")

	resp, err := demo.Get(f.ts.URL + "/notes/" + note.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, demo, f.ts.URL+"/notes/"+note.ID, map[string]string{"title": "stolen"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, demo, f.ts.URL+"/notes/"+note.ID+"/delete", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = demo.Get(f.ts.URL + "/api/notes")
	require.NoError(t, err)
	var demoNotes []notes.Note
	decodeJSON(t, resp, &demoNotes)
	assert.Empty(t, demoNotes)

	// the note is untouched for its owner
	resp, err = admin.Get(f.ts.URL + "/notes/" + note.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPINotesReturnsStoredRecords(t *testing.T) {
	f := newFixture(t)
	client := f.login(t, "admin", "admin123")

	first := createNote(t, f, client, notes.CreateParams{Title: "first", Category: "Work"})
	f.clk.Advance(time.Minute)
	second := createNote(t, f, client, notes.CreateParams{Title: "second"})

	resp, err := client.Get(f.ts.URL + "/api/notes")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []notes.Note
	decodeJSON(t, resp, &listed)
	require.Len(t, listed, 2)
	// stored (insertion) order, full Note records
	assert.Equal(t, first, listed[0])
	assert.Equal(t, second, listed[1])
}

func TestSearchEndpoint(t *testing.T) {
	f := newFixture(t)
	client := f.login(t, "admin", "admin123")

	createNote(t, f, client, notes.CreateParams{Title: "HTML Basics", Category: "HTML"})
	f.clk.Advance(time.Minute)
	createNote(t, f, client, notes.CreateParams{Title: "Grocery List", Category: "Personal"})

	resp, err := client.Get(f.ts.URL + "/search?q=html")
	require.NoError(t, err)
	var result struct {
		Query      string            `json:"query"`
		Notes      []json.RawMessage `json:"notes"`
		TotalCount int               `json:"total_count"`
	}
	decodeJSON(t, resp, &result)
	assert.Equal(t, 1, result.TotalCount)
	assert.Contains(t, string(result.Notes[0]), "HTML Basics")

	// empty query matches everything, most recent first
	resp, err = client.Get(f.ts.URL + "/search?q=")
	require.NoError(t, err)
	decodeJSON(t, resp, &result)
	require.Equal(t, 2, result.TotalCount)
	assert.Contains(t, string(result.Notes[0]), "Grocery List")
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	client := f.login(t, "admin", "admin123")
	createNote(t, f, client, notes.CreateParams{Title: "fresh"})

	resp, err := client.Get(f.ts.URL + "/dashboard")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dash struct {
		Username     string `json:"username"`
		SampleAPIKey string `json:"sample_api_key"`
		Notes        []struct {
			Title         string `json:"title"`
			FormattedDate string `json:"formatted_date"`
		} `json:"notes"`
	}
	decodeJSON(t, resp, &dash)
	assert.Equal(t, "admin", dash.Username)
	assert.Equal(t, config.NotConfigured, dash.SampleAPIKey)
	require.Len(t, dash.Notes, 1)
	assert.Equal(t, "Today", dash.Notes[0].FormattedDate)
}

func TestLogoutEndsSession(t *testing.T) {
	f := newFixture(t)
	client := f.login(t, "admin", "admin123")

	resp, err := client.Post(f.ts.URL+"/logout", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = client.Get(f.ts.URL + "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSessionExpiresAfterHorizon(t *testing.T) {
	f := newFixture(t)
	client := f.login(t, "admin", "admin123")

	f.clk.Advance(auth.SessionDuration + time.Minute)

	resp, err := client.Get(f.ts.URL + "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixtureWithLimit(t, ratelimit.Config{RPS: 0.1, Burst: 2, CleanupInterval: time.Hour})
	client := f.client(t)

	creds := url.Values{"username": {"admin"}, "password": {"wrong"}}
	for i := 0; i < 2; i++ {
		resp, err := client.PostForm(f.ts.URL+"/login", creds)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, fmt.Sprintf("attempt %d", i))
	}

	resp, err := client.PostForm(f.ts.URL+"/login", creds)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
