package generate

import (
	"context"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through normally.
	StateClosed State = iota
	// StateOpen means calls are rejected immediately.
	StateOpen
	// StateHalfOpen means a probe call is testing recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitConfig configures the breaker.
type CircuitConfig struct {
	// MaxFailures is the consecutive-failure count that opens the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// OnStateChange is called when the state changes.
	OnStateChange func(from, to State)
}

// CircuitGenerator wraps a Generator with a circuit breaker so a
// consistently failing upstream short-circuits to ErrCircuitOpen
// instead of burning the full timeout on every request.
type CircuitGenerator struct {
	config CircuitConfig
	inner  Generator
	now    func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool
}

// NewCircuitGenerator wraps inner with a breaker.
func NewCircuitGenerator(inner Generator, config CircuitConfig) *CircuitGenerator {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}

	return &CircuitGenerator{
		config: config,
		inner:  inner,
		now:    time.Now,
		state:  StateClosed,
	}
}

// State returns the current breaker state.
func (g *CircuitGenerator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Generate forwards to the wrapped generator when the circuit permits.
func (g *CircuitGenerator) Generate(ctx context.Context, input, category string) (string, error) {
	if err := g.before(); err != nil {
		return "", err
	}

	text, err := g.inner.Generate(ctx, input, category)
	g.after(err)
	return text, err
}

func (g *CircuitGenerator) before() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateClosed:
		return nil
	case StateOpen:
		if g.now().Sub(g.lastFailure) >= g.config.ResetTimeout {
			g.transitionLocked(StateHalfOpen)
			g.probing = true
			return nil
		}
		return ErrCircuitOpen
	case StateHalfOpen:
		// One probe at a time.
		if g.probing {
			return ErrCircuitOpen
		}
		g.probing = true
		return nil
	}
	return nil
}

func (g *CircuitGenerator) after(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		g.failures = 0
		g.probing = false
		if g.state != StateClosed {
			g.transitionLocked(StateClosed)
		}
		return
	}

	g.failures++
	g.lastFailure = g.now()
	g.probing = false

	if g.state == StateHalfOpen || g.failures >= g.config.MaxFailures {
		if g.state != StateOpen {
			g.transitionLocked(StateOpen)
		}
	}
}

func (g *CircuitGenerator) transitionLocked(to State) {
	from := g.state
	g.state = to
	if g.config.OnStateChange != nil && from != to {
		g.config.OnStateChange(from, to)
	}
}

// Ensure CircuitGenerator implements Generator
var _ Generator = (*CircuitGenerator)(nil)
