package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records request-pipeline measurements.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one coordinated request: its terminal
	// outcome (responded, rate_limited, quota_denied, tier_denied,
	// invalid) and wall time.
	RecordRequest(ctx context.Context, outcome string, duration time.Duration)

	// RecordCacheLookup records a response-cache lookup.
	RecordCacheLookup(ctx context.Context, hit bool)

	// RecordGeneration records an upstream generation call and whether
	// the fallback path was taken.
	RecordGeneration(ctx context.Context, duration time.Duration, fallback bool)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	requestCount   metric.Int64Counter
	requestHist    metric.Float64Histogram
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	generationHist metric.Float64Histogram
	fallbackCount  metric.Int64Counter
}

// NewMetrics creates a Metrics instance on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	requestCount, err := meter.Int64Counter(
		"conversation.requests.total",
		metric.WithDescription("Total coordinated conversation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestHist, err := meter.Float64Histogram(
		"conversation.request.duration_ms",
		metric.WithDescription("Conversation request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"conversation.cache.hits",
		metric.WithDescription("Response cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"conversation.cache.misses",
		metric.WithDescription("Response cache misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	generationHist, err := meter.Float64Histogram(
		"conversation.generation.duration_ms",
		metric.WithDescription("Upstream generation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	fallbackCount, err := meter.Int64Counter(
		"conversation.generation.fallbacks",
		metric.WithDescription("Generations that fell back to the canned response"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		requestCount:   requestCount,
		requestHist:    requestHist,
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		generationHist: generationHist,
		fallbackCount:  fallbackCount,
	}, nil
}

func (m *metricsImpl) RecordRequest(ctx context.Context, outcome string, duration time.Duration) {
	opt := metric.WithAttributes(attribute.String("outcome", outcome))
	m.requestCount.Add(ctx, 1, opt)
	m.requestHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
	} else {
		m.cacheMisses.Add(ctx, 1)
	}
}

func (m *metricsImpl) RecordGeneration(ctx context.Context, duration time.Duration, fallback bool) {
	m.generationHist.Record(ctx, float64(duration.Milliseconds()),
		metric.WithAttributes(attribute.Bool("fallback", fallback)))
	if fallback {
		m.fallbackCount.Add(ctx, 1)
	}
}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics {
	return &noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(context.Context, string, time.Duration)  {}
func (noopMetrics) RecordCacheLookup(context.Context, bool)               {}
func (noopMetrics) RecordGeneration(context.Context, time.Duration, bool) {}
