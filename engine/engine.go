package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/coachkit/cache"
	"github.com/jonwraymond/coachkit/generate"
	"github.com/jonwraymond/coachkit/observe"
	"github.com/jonwraymond/coachkit/quota"
	"github.com/jonwraymond/coachkit/ratelimit"
	"github.com/jonwraymond/coachkit/tier"
)

// FallbackResponse is returned when the upstream generator fails or
// times out. The request still succeeds from the caller's view.
const FallbackResponse = "I'm currently experiencing high demand. Please try again in a moment. In the meantime, remember that good conversation skills involve active listening, asking open-ended questions, and showing genuine interest in the other person."

// FallbackFeedback accompanies a fallback response.
const FallbackFeedback = "Try again later for more personalized feedback."

// Quick heuristic feedback applied to successful generations. The full
// scorer runs only on the dedicated feedback endpoint.
const (
	feedbackTooShort    = "Try to be more detailed in your responses."
	feedbackNoQuestion  = "Consider asking questions to engage the other person."
	feedbackAffirmative = "Good job with your communication!"
)

// DefaultGenerationTimeout bounds a single upstream generation call.
const DefaultGenerationTimeout = 10 * time.Second

// Coordinator drives the per-request admission and generation
// pipeline. Construct with NewCoordinator; the zero value is not
// usable.
//
// Contract:
// - Concurrency: safe for concurrent use; each stateful collaborator
//   owns its own critical section, no global lock serializes requests.
// - Errors: only admission denials are returned as errors; upstream
//   and persistence failures are absorbed.
type Coordinator struct {
	limiter   ratelimit.Limiter
	cache     cache.Cache
	quotas    *quota.Manager
	generator generate.Generator
	store     ConversationStore
	logger    observe.Logger
	metrics   observe.Metrics
	tracer    observe.Tracer
	timeout   time.Duration

	flights singleflight.Group
	handler Handler
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithStore attaches a conversation store. Without one, exchanges are
// not persisted.
func WithStore(store ConversationStore) CoordinatorOption {
	return func(c *Coordinator) { c.store = store }
}

// WithLogger sets the structured logger. Default: no-op.
func WithLogger(logger observe.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logger }
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(metrics observe.Metrics) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = metrics }
}

// WithTracer sets the span tracer. Default: no-op.
func WithTracer(tracer observe.Tracer) CoordinatorOption {
	return func(c *Coordinator) { c.tracer = tracer }
}

// WithGenerationTimeout bounds each upstream generation call.
func WithGenerationTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCoordinator wires the admission pipeline around the given
// collaborators. Limiter, cache, quota manager and generator are
// required.
func NewCoordinator(
	limiter ratelimit.Limiter,
	responses cache.Cache,
	quotas *quota.Manager,
	generator generate.Generator,
	opts ...CoordinatorOption,
) (*Coordinator, error) {
	if limiter == nil {
		return nil, errors.New("engine: limiter is required")
	}
	if responses == nil {
		return nil, errors.New("engine: response cache is required")
	}
	if quotas == nil {
		return nil, errors.New("engine: quota manager is required")
	}
	if generator == nil {
		return nil, errors.New("engine: generator is required")
	}

	c := &Coordinator{
		limiter:   limiter,
		cache:     responses,
		quotas:    quotas,
		generator: generator,
		logger:    observe.NopLogger(),
		metrics:   observe.NopMetrics(),
		tracer:    observe.NopTracer(),
		timeout:   DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.handler = Chain(c.respond,
		Timing(c.logger, c.metrics),
		Validate(),
		RateLimit(c.limiter),
	)
	return c, nil
}

// Handle runs one request through the full pipeline under a span.
func (c *Coordinator) Handle(ctx context.Context, req *Request) (*Response, error) {
	var attrs []attribute.KeyValue
	if req != nil {
		attrs = append(attrs, attribute.String("conversation.category", req.Category))
	}
	ctx, span := c.tracer.StartSpan(ctx, "engine.handle", attrs...)
	resp, err := c.handler(ctx, req)
	c.tracer.EndSpan(span, err)
	return resp, err
}

// respond is the core handler behind the middleware chain: cache
// lookup, tier gate, quota, generation, persistence.
func (c *Coordinator) respond(ctx context.Context, req *Request) (*Response, error) {
	key := cache.Fingerprint(req.Text, req.Category)

	if entry, ok := c.cache.Get(key); ok {
		c.metrics.RecordCacheLookup(ctx, true)
		c.logger.Debug(ctx, "cache hit", observe.Field{Key: "key", Value: key})
		resp := &Response{
			Success:  true,
			Response: entry.Response,
			Feedback: entry.Feedback,
			Category: req.Category,
			Cached:   true,
		}
		c.persist(ctx, req, entry)
		return resp, nil
	}
	c.metrics.RecordCacheLookup(ctx, false)

	resp := &Response{Success: true, Category: req.Category}

	if req.Category != "" {
		required, err := tier.ForCategory(req.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
		}
		if !req.Identity.Tier.Meets(required) {
			return nil, &TierDenial{Required: required, Actual: req.Identity.Tier}
		}

		if !req.Identity.IsAnonymous() {
			decision, err := c.quotas.CheckAndConsume(ctx, req.Identity.Principal, req.Identity.Tier)
			if err != nil {
				return nil, fmt.Errorf("engine: quota check: %w", err)
			}
			if !decision.Allowed {
				return nil, &QuotaDenial{Used: decision.Used, Limit: decision.Limit}
			}
			used := decision.Used
			limit := ScenarioLimit(decision.Limit)
			resp.ScenariosUsed = &used
			resp.ScenariosLimit = &limit
		}
	}

	entry, err := c.generateShared(ctx, key, req.Text, req.Category)
	if err != nil {
		// Only caller cancellation reaches here; generation failures
		// already collapsed into the fallback entry.
		return nil, err
	}

	resp.Response = entry.Response
	resp.Feedback = entry.Feedback
	c.persist(ctx, req, entry)
	return resp, nil
}

// generateShared collapses concurrent requests for the same
// fingerprint into one upstream call. The flight runs on a context
// detached from the caller so a cancelled caller does not abort a
// shared generation; the completed result is still cached.
func (c *Coordinator) generateShared(ctx context.Context, key, text, category string) (cache.Entry, error) {
	ch := c.flights.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.generateOnce(flightCtx, key, text, category), nil
	})

	select {
	case res := <-ch:
		return res.Val.(cache.Entry), nil
	case <-ctx.Done():
		return cache.Entry{}, ctx.Err()
	}
}

// generateOnce performs one generation attempt and always produces a
// cacheable entry: the upstream result with quick feedback, or the
// fallback pair when the upstream fails or times out.
func (c *Coordinator) generateOnce(ctx context.Context, key, text, category string) cache.Entry {
	start := time.Now()
	completion, err := c.generator.Generate(ctx, text, category)
	duration := time.Since(start)

	var entry cache.Entry
	if err != nil {
		c.metrics.RecordGeneration(ctx, duration, true)
		kind := ErrUpstream
		if errors.Is(err, context.DeadlineExceeded) {
			kind = ErrUpstreamTimeout
		}
		c.logger.Error(ctx, "generation failed, serving fallback",
			observe.Field{Key: "error", Value: err.Error()},
			observe.Field{Key: "kind", Value: kind.Error()},
		)
		entry = cache.Entry{Response: FallbackResponse, Feedback: FallbackFeedback}
	} else {
		c.metrics.RecordGeneration(ctx, duration, false)
		entry = cache.Entry{Response: completion, Feedback: quickFeedback(text)}
	}

	c.cache.Put(key, entry)
	return entry
}

// quickFeedback derives lightweight coaching feedback from the input
// alone: word count and question-mark presence.
func quickFeedback(text string) string {
	switch {
	case len(strings.Fields(text)) < 5:
		return feedbackTooShort
	case !strings.Contains(text, "?"):
		return feedbackNoQuestion
	default:
		return feedbackAffirmative
	}
}

// persist hands the exchange to the conversation store. Failures are
// logged and swallowed; the response already computed is unaffected.
func (c *Coordinator) persist(ctx context.Context, req *Request, entry cache.Entry) {
	if c.store == nil || req.Identity.IsAnonymous() {
		return
	}
	rec := ConversationRecord{
		ID:        uuid.NewString(),
		UserID:    req.Identity.Principal,
		Input:     req.Text,
		Response:  entry.Response,
		Feedback:  entry.Feedback,
		Category:  req.Category,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.SaveConversation(ctx, rec); err != nil {
		c.logger.Warn(ctx, "conversation not persisted",
			observe.Field{Key: "user", Value: req.Identity.Principal},
			observe.Field{Key: "error", Value: errors.Join(ErrPersistence, err).Error()},
		)
	}
}
