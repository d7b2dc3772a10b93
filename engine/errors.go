package engine

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/coachkit/tier"
)

// Request-pipeline errors. The first four surface to callers as
// distinguishable denials; upstream errors are absorbed into the
// fallback path, and persistence errors are logged and swallowed.
var (
	// ErrValidation indicates missing or malformed request input.
	ErrValidation = errors.New("engine: invalid request")

	// ErrRateLimited indicates the actor exceeded the request rate.
	ErrRateLimited = errors.New("engine: rate limit exceeded")

	// ErrQuotaExceeded indicates the monthly scenario ceiling is spent.
	ErrQuotaExceeded = errors.New("engine: monthly quota exceeded")

	// ErrTierInsufficient indicates the category requires a higher tier.
	ErrTierInsufficient = errors.New("engine: subscription tier insufficient")

	// ErrUpstreamTimeout indicates the generation call exceeded its
	// deadline. Internal: converted to a fallback response.
	ErrUpstreamTimeout = errors.New("engine: generation timed out")

	// ErrUpstream indicates the generation call failed.
	// Internal: converted to a fallback response.
	ErrUpstream = errors.New("engine: generation failed")

	// ErrPersistence indicates a conversation record could not be
	// written. Internal: logged, never returned to callers.
	ErrPersistence = errors.New("engine: persistence failed")
)

// TierDenial reports a category gated above the actor's tier.
// Matches ErrTierInsufficient under errors.Is.
type TierDenial struct {
	Required tier.Tier
	Actual   tier.Tier
}

func (d *TierDenial) Error() string {
	return fmt.Sprintf("engine: category requires %s tier, actor has %s", d.Required, d.Actual)
}

func (d *TierDenial) Unwrap() error { return ErrTierInsufficient }

// QuotaDenial reports a spent monthly ceiling with current usage.
// Matches ErrQuotaExceeded under errors.Is.
type QuotaDenial struct {
	Used  int
	Limit int
}

func (d *QuotaDenial) Error() string {
	return fmt.Sprintf("engine: monthly limit reached (%d/%d)", d.Used, d.Limit)
}

func (d *QuotaDenial) Unwrap() error { return ErrQuotaExceeded }

