package notes

// Defaults applied when a created note's fields trim to empty.
const (
	DefaultTitle    = "Untitled Note"
	DefaultCategory = "General"
)

// Note is one user-owned note exactly as stored in the notes document.
// Timestamps are fixed-width ISO-8601 strings (see internal/clock), so
// comparing them as strings orders them chronologically.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateParams are the caller-supplied fields for a new note. All fields are
// trimmed; empty title and category fall back to the defaults above.
type CreateParams struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// UpdateParams carries optional field replacements. A nil field retains the
// stored value; a supplied field is trimmed and replaces it, even when it
// trims to empty.
type UpdateParams struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}
