// Package engine coordinates conversation requests end to end.
//
// A Coordinator admits each request through rate limiting, tier gating
// and quota accounting, serves repeated inputs from the response cache,
// and drives the generation call under a bounded timeout with a fixed
// fallback when the upstream fails. Cross-cutting stages (validation,
// rate limiting, timing) are composed as an explicit middleware chain
// around the core handler.
//
// Upstream failures never surface to the caller as errors: they become
// successful degraded responses. Persistence failures are logged and
// swallowed.
package engine
