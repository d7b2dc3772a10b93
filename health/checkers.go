package health

import (
	"context"

	"github.com/jonwraymond/coachkit/cache"
	"github.com/jonwraymond/coachkit/generate"
)

// Pinger is the store surface the database checker needs. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DatabaseChecker reports whether the durable store is reachable.
type DatabaseChecker struct {
	db Pinger
}

// NewDatabaseChecker creates a DatabaseChecker.
func NewDatabaseChecker(db Pinger) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

// Name identifies the component.
func (c *DatabaseChecker) Name() string { return "database" }

// Check pings the store.
func (c *DatabaseChecker) Check(ctx context.Context) Result {
	if err := c.db.PingContext(ctx); err != nil {
		return Unhealthy("store unreachable", err)
	}
	return Healthy("store reachable")
}

// GeneratorChecker reports the generation circuit's state. An open
// circuit is degraded, not unhealthy: requests still get fallback
// responses.
type GeneratorChecker struct {
	circuit *generate.CircuitGenerator
}

// NewGeneratorChecker creates a GeneratorChecker.
func NewGeneratorChecker(circuit *generate.CircuitGenerator) *GeneratorChecker {
	return &GeneratorChecker{circuit: circuit}
}

// Name identifies the component.
func (c *GeneratorChecker) Name() string { return "generator" }

// Check inspects the circuit state.
func (c *GeneratorChecker) Check(context.Context) Result {
	state := c.circuit.State()
	details := map[string]any{"circuit_state": state.String()}
	switch state {
	case generate.StateOpen:
		return Degraded("generation circuit open, serving fallbacks").WithDetails(details)
	case generate.StateHalfOpen:
		return Degraded("generation circuit probing recovery").WithDetails(details)
	default:
		return Healthy("generation circuit closed").WithDetails(details)
	}
}

// CacheChecker reports response-cache occupancy and hit rates.
type CacheChecker struct {
	lru *cache.LRU
}

// NewCacheChecker creates a CacheChecker.
func NewCacheChecker(lru *cache.LRU) *CacheChecker {
	return &CacheChecker{lru: lru}
}

// Name identifies the component.
func (c *CacheChecker) Name() string { return "response_cache" }

// Check reports cache statistics. The cache cannot fail; this check
// is always healthy.
func (c *CacheChecker) Check(context.Context) Result {
	stats := c.lru.Stats()
	return Healthy("cache operational").WithDetails(map[string]any{
		"entries": c.lru.Len(),
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	})
}
