// Package notes implements the per-user note repository over the flat-file
// JSON store. Every operation is scoped to a single owning username; a note
// id supplied under the wrong owner behaves exactly like a missing note.
package notes

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/avolkov/notekeep/internal/clock"
	"github.com/avolkov/notekeep/internal/errs"
	"github.com/avolkov/notekeep/internal/store"
)

const documentName = "notes"

// Service handles note CRUD, search and recency ordering.
type Service struct {
	store *store.Store
	clock clock.Clock

	// serializes read-modify-write cycles against the notes document
	mu sync.Mutex
}

// NewService creates a notes service over the given store.
func NewService(st *store.Store, clk clock.Clock) *Service {
	return &Service{store: st, clock: clk}
}

func (s *Service) load() map[string][]Note {
	all := map[string][]Note{}
	s.store.Load(documentName, &all)
	return all
}

// List returns the owner's notes in stored (insertion) order.
func (s *Service) List(username string) []Note {
	return s.load()[username]
}

// ListByRecency returns the owner's notes ordered by updated_at descending.
// Ties keep no particular order.
func (s *Service) ListByRecency(username string) []Note {
	seq := append([]Note(nil), s.load()[username]...)
	sortByRecency(seq)
	return seq
}

// Create trims the supplied fields, applies defaults, assigns a fresh id and
// appends the note to the owner's sequence.
func (s *Service) Create(username string, params CreateParams) (*Note, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = DefaultTitle
	}
	category := strings.TrimSpace(params.Category)
	if category == "" {
		category = DefaultCategory
	}

	now := clock.Format(s.clock.Now())
	note := Note{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   strings.TrimSpace(params.Content),
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	all[username] = append(all[username], note)
	if err := s.store.Save(documentName, all); err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to save note", err)
	}
	return &note, nil
}

// Get returns the note with the given id from the owner's sequence only.
func (s *Service) Get(username, id string) (*Note, bool) {
	for _, n := range s.load()[username] {
		if n.ID == id {
			return &n, true
		}
	}
	return nil, false
}

// Update replaces the supplied fields of the note and refreshes updated_at.
// Returns a not-found error when the id is absent from the owner's sequence.
func (s *Service) Update(username, id string, params UpdateParams) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	seq := all[username]
	for i := range seq {
		if seq[i].ID != id {
			continue
		}
		if params.Title != nil {
			seq[i].Title = strings.TrimSpace(*params.Title)
		}
		if params.Content != nil {
			seq[i].Content = strings.TrimSpace(*params.Content)
		}
		if params.Category != nil {
			seq[i].Category = strings.TrimSpace(*params.Category)
		}
		seq[i].UpdatedAt = clock.Format(s.clock.Now())

		all[username] = seq
		if err := s.store.Save(documentName, all); err != nil {
			return nil, errs.Wrap(errs.Internal, "failed to save note", err)
		}
		updated := seq[i]
		return &updated, nil
	}
	return nil, errs.New(errs.NotFound, "note not found")
}

// Delete removes the note with the given id from the owner's sequence and
// reports whether a removal occurred. Nothing is written when the id was not
// found.
func (s *Service) Delete(username, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	seq := all[username]
	kept := make([]Note, 0, len(seq))
	for _, n := range seq {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(seq) {
		return false, nil
	}

	all[username] = kept
	if err := s.store.Save(documentName, all); err != nil {
		return false, errs.Wrap(errs.Internal, "failed to save notes", err)
	}
	return true, nil
}

// Search returns the owner's notes whose title, content or category contains
// the trimmed query, case-insensitively. An empty query matches everything.
// Results are ordered by recency.
func (s *Service) Search(username, query string) []Note {
	query = strings.ToLower(strings.TrimSpace(query))

	var matched []Note
	for _, n := range s.load()[username] {
		if query == "" ||
			strings.Contains(strings.ToLower(n.Title), query) ||
			strings.Contains(strings.ToLower(n.Content), query) ||
			strings.Contains(strings.ToLower(n.Category), query) {
			matched = append(matched, n)
		}
	}
	sortByRecency(matched)
	return matched
}

func sortByRecency(seq []Note) {
	sort.Slice(seq, func(i, j int) bool {
		return seq[i].UpdatedAt > seq[j].UpdatedAt
	})
}
