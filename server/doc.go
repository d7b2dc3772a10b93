// Package server exposes the coaching pipeline over HTTP: the
// conversation endpoint, standalone feedback analysis, quota status,
// conversation history, and the health and metrics surfaces.
//
// Admission denials map to distinguishing statuses (400, 429, 402,
// 403). Upstream generation failures do not: they arrive here already
// converted to successful fallback responses.
package server
