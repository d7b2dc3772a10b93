// Package health aggregates component health checks behind the
// service's liveness and readiness endpoints.
//
// Components register a Checker with an Aggregator; the HTTP handlers
// report the combined status. A degraded component (for example an
// open generation circuit, which still serves fallback responses)
// keeps the service ready, only unhealthy components flip readiness.
package health
