package ratelimit

import (
	"sync"
	"time"
)

// Config configures the sliding-window limiter.
type Config struct {
	// MaxCalls is the number of calls allowed per actor per window.
	// Default: 10
	MaxCalls int

	// Period is the trailing window duration.
	// Default: 1 minute
	Period time.Duration
}

// Limiter decides whether an actor's call is admitted.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Identity-agnostic: the limiter keys purely on the string given.
type Limiter interface {
	Allow(actorID string) bool
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock overrides the time source. Used by tests to step through
// window boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(sw *SlidingWindow) {
		sw.now = now
	}
}

// SlidingWindow is an in-memory sliding-window limiter.
//
// One mutex guards all actor windows; the critical section is a purge
// plus an append, so contention stays negligible next to the generation
// call this limiter fronts.
type SlidingWindow struct {
	config Config
	now    func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewSlidingWindow creates a limiter with the given config.
func NewSlidingWindow(config Config, opts ...Option) *SlidingWindow {
	if config.MaxCalls <= 0 {
		config.MaxCalls = 10
	}
	if config.Period <= 0 {
		config.Period = time.Minute
	}

	sw := &SlidingWindow{
		config:  config,
		now:     time.Now,
		windows: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(sw)
	}
	return sw
}

// Allow reports whether the actor may proceed, recording the call when
// admitted. A denied call records nothing.
func (sw *SlidingWindow) Allow(actorID string) bool {
	now := sw.now()
	cutoff := now.Add(-sw.config.Period)

	sw.mu.Lock()
	defer sw.mu.Unlock()

	window := sw.purgeLocked(actorID, cutoff)

	if len(window) >= sw.config.MaxCalls {
		return false
	}

	sw.windows[actorID] = append(window, now)
	return true
}

// Remaining returns how many calls the actor has left in the current
// window. Purges stale timestamps as a side effect.
func (sw *SlidingWindow) Remaining(actorID string) int {
	cutoff := sw.now().Add(-sw.config.Period)

	sw.mu.Lock()
	defer sw.mu.Unlock()

	window := sw.purgeLocked(actorID, cutoff)
	remaining := sw.config.MaxCalls - len(window)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ActiveActors returns the number of actors with at least one call
// inside the current window.
func (sw *SlidingWindow) ActiveActors() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return len(sw.windows)
}

// purgeLocked drops timestamps at or before cutoff for the actor and
// returns the surviving window. An emptied actor is deleted from the
// map so idle actors cost nothing.
func (sw *SlidingWindow) purgeLocked(actorID string, cutoff time.Time) []time.Time {
	window, ok := sw.windows[actorID]
	if !ok {
		return nil
	}

	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) == 0 {
		delete(sw.windows, actorID)
		return nil
	}

	sw.windows[actorID] = kept
	return kept
}

// Ensure SlidingWindow implements Limiter
var _ Limiter = (*SlidingWindow)(nil)
