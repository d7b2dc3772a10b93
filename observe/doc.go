// Package observe provides telemetry for the conversation pipeline:
// structured logging, OpenTelemetry tracing, and metrics.
//
// An Observer bundles the three concerns behind one configured entry
// point. Exporters are selected by name (otlp, prometheus, stdout,
// none) so deployments choose their backend without code changes.
//
// Raw user text is never logged; fields carrying it are redacted.
package observe
