// Package generate abstracts the external text-generation service.
//
// The Generator interface is the only surface the request pipeline
// sees. Two implementations ship: an OpenAI-compatible chat-completions
// client for real deployments, and a keyword-routed mock used when no
// API key is configured so the service still answers.
//
// Generation is the one operation expected to block for a non-trivial
// duration; callers bound it with a context deadline. A CircuitGenerator
// can wrap either implementation so a flapping upstream fails fast into
// the fallback path instead of eating the timeout on every request.
package generate
