// Package clock abstracts time so services that stamp records can be tested
// deterministically. It also owns the timestamp format shared by the data
// files: fixed-width ISO-8601 in UTC, so lexicographic order on stored
// timestamps equals chronological order.
package clock

import (
	"sync"
	"time"
)

// Layout is the storage format for timestamps. The fractional seconds are
// zero-padded to nanosecond width; two timestamps compare correctly as
// strings.
const Layout = "2006-01-02T15:04:05.000000000Z07:00"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Format renders t in the storage layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads a timestamp in the storage layout.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Fake is a controllable Clock for testing time-dependent behavior.
// Thread-safe for use across goroutines (e.g., test client + HTTP server).
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a Fake clock frozen at the given time.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now returns the current fake time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
