package generate

import (
	"context"
	"errors"
)

// Sentinel errors for generation.
var (
	// ErrUpstream is returned when the generation service fails.
	ErrUpstream = errors.New("generate: upstream error")

	// ErrEmptyCompletion is returned when the service answers with no text.
	ErrEmptyCompletion = errors.New("generate: empty completion")

	// ErrCircuitOpen is returned when the breaker is rejecting calls.
	ErrCircuitOpen = errors.New("generate: circuit open")
)

// DefaultSystemPrompt steers the coaching voice of generated replies.
const DefaultSystemPrompt = "You are a social skills coach providing helpful, encouraging advice. Keep responses concise and practical."

// Generator produces a coaching reply for user input.
//
// Contract:
// - Context: implementations must honor cancellation and deadlines.
// - Errors: any failure wraps or is ErrUpstream; callers treat it as
//   recoverable and fall back, never as a hard failure.
type Generator interface {
	Generate(ctx context.Context, input, category string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, input, category string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, input, category string) (string, error) {
	return f(ctx, input, category)
}
