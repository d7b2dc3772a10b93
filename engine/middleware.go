package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/coachkit/cache"
	"github.com/jonwraymond/coachkit/observe"
	"github.com/jonwraymond/coachkit/ratelimit"
	"github.com/jonwraymond/coachkit/tier"
)

// Handler processes one conversation request.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a Handler with one cross-cutting concern.
type Middleware func(Handler) Handler

// Chain composes middleware around a handler. The first middleware is
// outermost: Chain(h, a, b) runs a, then b, then h.
func Chain(h Handler, mw ...Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Validate rejects requests with missing input, oversized input, or an
// unknown category before any stateful stage runs.
func Validate() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req == nil || req.Identity == nil {
				return nil, fmt.Errorf("%w: missing identity", ErrValidation)
			}
			if strings.TrimSpace(req.Text) == "" {
				return nil, fmt.Errorf("%w: user input is required", ErrValidation)
			}
			if len(req.Text) > cache.MaxKeyLength {
				return nil, fmt.Errorf("%w: input exceeds %d characters", ErrValidation, cache.MaxKeyLength)
			}
			if req.Category != "" {
				if _, err := tier.ForCategory(req.Category); err != nil {
					return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
				}
			}
			return next(ctx, req)
		}
	}
}

// RateLimit denies requests from actors that exceeded their window.
// A denial has no effect on any downstream component.
func RateLimit(limiter ratelimit.Limiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if !limiter.Allow(req.Identity.Principal) {
				return nil, fmt.Errorf("%w: actor %s", ErrRateLimited, req.Identity.Principal)
			}
			return next(ctx, req)
		}
	}
}

// Timing records per-request duration, outcome metrics, and a
// structured log line around the rest of the chain.
func Timing(logger observe.Logger, metrics observe.Metrics) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			// Resolved before the inner handler runs: Timing is the
			// outermost stage and must survive requests that Validate
			// is about to reject, including a nil request or identity.
			var actor, category string
			if req != nil {
				category = req.Category
				if req.Identity != nil {
					actor = req.Identity.Principal
				}
			}

			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start)

			outcome := outcomeFor(resp, err)
			metrics.RecordRequest(ctx, outcome, duration)

			fields := []observe.Field{
				{Key: "actor", Value: actor},
				{Key: "category", Value: category},
				{Key: "outcome", Value: outcome},
				{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			}
			if err != nil {
				fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
				logger.Warn(ctx, "conversation request denied", fields...)
			} else {
				logger.Info(ctx, "conversation request completed", fields...)
			}
			return resp, err
		}
	}
}

func outcomeFor(resp *Response, err error) string {
	switch {
	case err == nil && resp != nil && resp.Cached:
		return "cache_hit"
	case err == nil:
		return "responded"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_denied"
	case errors.Is(err, ErrTierInsufficient):
		return "tier_denied"
	default:
		return "error"
	}
}
