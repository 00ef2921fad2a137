// Package ratelimit provides per-client token-bucket rate limiting, used to
// slow down repeated login attempts.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config defines the rate limiting configuration.
type Config struct {
	RPS             float64       // Sustained requests per second per client
	Burst           int           // Burst size per client
	CleanupInterval time.Duration // How often idle limiters are dropped
}

// DefaultConfig provides sensible defaults for login throttling.
var DefaultConfig = Config{
	RPS:             5,
	Burst:           10,
	CleanupInterval: time.Hour,
}

type entry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter manages one token bucket per client key.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  Config

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewLimiter creates a limiter and starts its background cleanup goroutine.
func NewLimiter(config Config) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
		stopCh:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request under the given key is within limits.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(l.config.RPS), l.config.Burst)}
		l.entries[key] = e
	}
	e.lastUsed = time.Now()
	return e.limiter.Allow()
}

// Cleanup drops limiters idle for longer than the cleanup interval.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.config.CleanupInterval)
	for key, e := range l.entries {
		if e.lastUsed.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

func (l *Limiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine and waits for it to finish.
func (l *Limiter) Stop() {
	close(l.stopCh)
	l.wg.Wait()
}

// Len returns the number of tracked clients. Useful for tests.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
