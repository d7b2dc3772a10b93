// Package tier models subscription tiers and category gating.
//
// Tiers form a total order (free < basic < premium). Each conversation
// category maps to the lowest tier allowed to access it; the mapping is
// fixed and checked with a simple comparison rather than string dispatch.
package tier

import (
	"errors"
	"strings"
)

// Tier is a subscription level.
type Tier int

const (
	Free Tier = iota
	Basic
	Premium
)

// ErrUnknownTier is returned when a tier string cannot be parsed.
var ErrUnknownTier = errors.New("tier: unknown tier")

// ErrUnknownCategory is returned when a category is not in the catalog.
var ErrUnknownCategory = errors.New("tier: unknown category")

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case Free:
		return "free"
	case Basic:
		return "basic"
	case Premium:
		return "premium"
	default:
		return "free"
	}
}

// Parse converts a tier name to a Tier. Matching is case-insensitive.
func Parse(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return Free, nil
	case "basic":
		return Basic, nil
	case "premium":
		return Premium, nil
	default:
		return Free, ErrUnknownTier
	}
}

// ParseOrFree converts a tier name to a Tier, falling back to Free for
// anything unrecognized. Mirrors how the user store treats stale rows.
func ParseOrFree(s string) Tier {
	t, err := Parse(s)
	if err != nil {
		return Free
	}
	return t
}

// Meets reports whether t grants access to content requiring required.
func (t Tier) Meets(required Tier) bool {
	return t >= required
}

// Metered reports whether the tier has a monthly scenario ceiling.
func (t Tier) Metered() bool {
	return t != Premium
}

// categoryTiers is the fixed category catalog. Consumed, not owned, by
// the request pipeline.
var categoryTiers = map[string]Tier{
	"small_talk":          Free,
	"introductions":       Free,
	"networking":          Basic,
	"conflict_resolution": Basic,
	"job_interviews":      Premium,
	"dating":              Premium,
}

// ForCategory returns the tier required to access a category.
func ForCategory(category string) (Tier, error) {
	t, ok := categoryTiers[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return Free, ErrUnknownCategory
	}
	return t, nil
}

// Categories returns the known category names. Order is unspecified.
func Categories() []string {
	out := make([]string, 0, len(categoryTiers))
	for c := range categoryTiers {
		out = append(out, c)
	}
	return out
}
