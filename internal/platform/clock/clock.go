// Package clock abstracts time so that scheduling and session-completion
// decisions stay deterministic under test. Services take a Clock instead
// of reading the wall clock.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a Clock backed by the wall clock, in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed is a manually driven Clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

var _ Clock = (*Fixed)(nil)

// NewFixed creates a Fixed clock pinned at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now implements Clock.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d and returns the new instant.
func (f *Fixed) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

// Set pins the clock at t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}
