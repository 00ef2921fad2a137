package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, config Config) *Limiter {
	t.Helper()
	l := NewLimiter(config)
	t.Cleanup(l.Stop)
	return l
}

func TestAllowWithinBurst(t *testing.T) {
	l := newTestLimiter(t, Config{RPS: 1, Burst: 3, CleanupInterval: time.Hour})

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "attempt %d", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestKeysAreIndependent(t *testing.T) {
	l := newTestLimiter(t, Config{RPS: 1, Burst: 1, CleanupInterval: time.Hour})

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, 2, l.Len())
}

func TestCleanupDropsIdleEntries(t *testing.T) {
	l := newTestLimiter(t, Config{RPS: 1, Burst: 1, CleanupInterval: time.Minute})

	l.Allow("10.0.0.1")
	l.mu.Lock()
	l.entries["10.0.0.1"].lastUsed = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	l.Cleanup()
	assert.Equal(t, 0, l.Len())
}
