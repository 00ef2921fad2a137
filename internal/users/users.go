// Package users maps usernames to credential records backed by the JSON
// store. Accounts are created only by first-run seeding; there is no signup
// flow.
package users

import (
	"sync"

	"github.com/avolkov/notekeep/internal/clock"
	"github.com/avolkov/notekeep/internal/obs"
	"github.com/avolkov/notekeep/internal/store"
)

const documentName = "users"

// Account is a credential record as stored in the users document.
// Passwords are stored and compared in plaintext for parity with the data
// files this server inherits; this is a known, deliberate security gap.
type Account struct {
	Password  string `json:"password"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// Directory looks up and verifies accounts.
type Directory struct {
	store *store.Store
	clock clock.Clock

	// serializes read-modify-write cycles against the users document
	mu sync.Mutex
}

// NewDirectory creates a directory over the given store.
func NewDirectory(st *store.Store, clk clock.Clock) *Directory {
	return &Directory{store: st, clock: clk}
}

func (d *Directory) load() map[string]Account {
	accounts := map[string]Account{}
	d.store.Load(documentName, &accounts)
	return accounts
}

// Find returns the credential record for username.
func (d *Directory) Find(username string) (Account, bool) {
	acct, ok := d.load()[username]
	return acct, ok
}

// Verify reports whether the account exists and its stored password equals
// the supplied one exactly. The comparison is case-sensitive and unhashed.
func (d *Directory) Verify(username, password string) bool {
	acct, ok := d.Find(username)
	return ok && acct.Password == password
}

// Seed writes the fixed administrative and demonstration accounts when the
// users document has never been saved. Idempotent: once the document exists,
// even emptied, Seed does nothing.
func (d *Directory) Seed() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.store.Exists(documentName) {
		return nil
	}

	now := clock.Format(d.clock.Now())
	accounts := map[string]Account{
		"admin": {Password: "admin123", Email: "admin@example.com", CreatedAt: now},
		"demo":  {Password: "demo123", Email: "demo@example.com", CreatedAt: now},
	}
	if err := d.store.Save(documentName, accounts); err != nil {
		return err
	}
	obs.Pkg("users").Info("seeded default accounts", "count", len(accounts))
	return nil
}
