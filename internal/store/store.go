// Package store persists named JSON documents as flat files.
//
// Each document is one file under the store directory, written whole on
// every save. A document that is missing or unparseable reads as empty
// rather than failing; corrupt data is treated as absence. There is no
// cross-process locking: concurrent writers to the same document race and
// the last writer wins. Callers that read-modify-write a document are
// expected to serialize those cycles in-process.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/avolkov/notekeep/internal/obs"
)

// Store reads and writes named JSON documents under a single directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on the
// first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Exists reports whether the named document has ever been saved. First-run
// seeding keys off this rather than off emptiness, so an explicitly emptied
// document is never re-seeded.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// Load decodes the named document into v. A document that does not exist,
// cannot be read, or does not parse is treated as absent: v is left at its
// zero value and no error is returned.
func (s *Store) Load(name string, v any) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			obs.Pkg("store").Warn("document unreadable, treating as empty", "name", name, "error", err)
		}
		return
	}
	if !json.Valid(data) {
		obs.Pkg("store").Warn("document corrupt, treating as empty", "name", name)
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		obs.Pkg("store").Warn("document does not match expected shape, treating as empty", "name", name, "error", err)
	}
}

// Save serializes v and writes the named document in full, replacing any
// previous contents.
func (s *Store) Save(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	return nil
}
