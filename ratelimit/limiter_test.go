package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock steps time manually for window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSlidingWindow_AllowsUpToLimit(t *testing.T) {
	clock := newFakeClock()
	sw := NewSlidingWindow(Config{MaxCalls: 10, Period: time.Minute}, WithClock(clock.Now))

	for i := 0; i < 10; i++ {
		if !sw.Allow("user-1") {
			t.Fatalf("call %d should be allowed", i+1)
		}
		clock.Advance(time.Second)
	}

	if sw.Allow("user-1") {
		t.Error("11th call inside the window should be denied")
	}
}

func TestSlidingWindow_WindowElapses(t *testing.T) {
	clock := newFakeClock()
	sw := NewSlidingWindow(Config{MaxCalls: 10, Period: time.Minute}, WithClock(clock.Now))

	for i := 0; i < 10; i++ {
		sw.Allow("user-1")
	}
	if sw.Allow("user-1") {
		t.Fatal("limit should be reached")
	}

	clock.Advance(61 * time.Second)

	if !sw.Allow("user-1") {
		t.Error("call after the window elapsed should be allowed")
	}
}

func TestSlidingWindow_DeniedCallRecordsNothing(t *testing.T) {
	clock := newFakeClock()
	sw := NewSlidingWindow(Config{MaxCalls: 2, Period: time.Minute}, WithClock(clock.Now))

	sw.Allow("user-1")
	sw.Allow("user-1")

	// Hammering while denied must not extend the window.
	for i := 0; i < 5; i++ {
		sw.Allow("user-1")
	}
	if got := sw.Remaining("user-1"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}

	clock.Advance(61 * time.Second)
	if !sw.Allow("user-1") {
		t.Error("denied calls should not have refreshed the window")
	}
}

func TestSlidingWindow_ActorsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	sw := NewSlidingWindow(Config{MaxCalls: 1, Period: time.Minute}, WithClock(clock.Now))

	if !sw.Allow("user-1") {
		t.Fatal("user-1 first call should be allowed")
	}
	if sw.Allow("user-1") {
		t.Error("user-1 second call should be denied")
	}
	if !sw.Allow("user-2") {
		t.Error("user-2 should be unaffected by user-1's limit")
	}
	if !sw.Allow("192.0.2.7") {
		t.Error("fallback actor key should be unaffected by other actors")
	}
}

func TestSlidingWindow_IdleActorsAreDropped(t *testing.T) {
	clock := newFakeClock()
	sw := NewSlidingWindow(Config{MaxCalls: 5, Period: time.Minute}, WithClock(clock.Now))

	for i := 0; i < 20; i++ {
		sw.Allow(fmt.Sprintf("user-%d", i))
	}
	if got := sw.ActiveActors(); got != 20 {
		t.Fatalf("ActiveActors = %d, want 20", got)
	}

	clock.Advance(2 * time.Minute)

	// A purge happens on the next touch of each actor.
	for i := 0; i < 20; i++ {
		sw.Remaining(fmt.Sprintf("user-%d", i))
	}
	if got := sw.ActiveActors(); got != 0 {
		t.Errorf("ActiveActors after window = %d, want 0", got)
	}
}

func TestSlidingWindow_Defaults(t *testing.T) {
	sw := NewSlidingWindow(Config{})
	if sw.config.MaxCalls != 10 {
		t.Errorf("default MaxCalls = %d, want 10", sw.config.MaxCalls)
	}
	if sw.config.Period != time.Minute {
		t.Errorf("default Period = %v, want 1m", sw.config.Period)
	}
}

func TestSlidingWindow_ConcurrentAllow(t *testing.T) {
	sw := NewSlidingWindow(Config{MaxCalls: 100, Period: time.Minute})

	const numGoroutines = 20
	const callsPerGoroutine = 10

	var wg sync.WaitGroup
	var allowed sync.Map
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			count := 0
			for j := 0; j < callsPerGoroutine; j++ {
				if sw.Allow("shared-actor") {
					count++
				}
			}
			allowed.Store(id, count)
		}(i)
	}
	wg.Wait()

	total := 0
	allowed.Range(func(_, v any) bool {
		total += v.(int)
		return true
	})

	// 200 concurrent attempts against a limit of 100: exactly 100 admitted.
	if total != 100 {
		t.Errorf("admitted %d calls, want exactly 100", total)
	}
}
