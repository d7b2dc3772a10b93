// Package ratelimit provides a per-actor sliding-window admission gate.
//
// Each actor (authenticated user ID, or a caller-supplied fallback such
// as the network origin) gets at most MaxCalls admissions in any
// trailing Period. Timestamps older than the window are purged lazily on
// each call, and an actor whose window drains empty is dropped entirely,
// so memory is bounded by recent activity.
//
// A denied call is a normal outcome, not an error; callers surface it as
// a rate-limit response.
package ratelimit
