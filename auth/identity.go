package auth

import (
	"context"

	"github.com/jonwraymond/coachkit/tier"
)

// Method indicates how authentication was performed.
type Method string

const (
	MethodJWT       Method = "jwt"
	MethodAnonymous Method = "anonymous"
)

// Identity represents the principal behind a request.
type Identity struct {
	// Principal is the unique identifier: a user ID for authenticated
	// requests, a network origin for anonymous ones.
	Principal string

	// Tier is the subscription level. Anonymous identities are Free.
	Tier tier.Tier

	// Method indicates how the identity was established.
	Method Method
}

// IsAnonymous returns true for unauthenticated identities.
func (id *Identity) IsAnonymous() bool {
	return id.Method == MethodAnonymous || id.Principal == ""
}

// Anonymous creates an anonymous identity keyed by the given origin
// (typically the remote address). The rate limiter still gets a stable
// actor key even without a login.
func Anonymous(origin string) *Identity {
	if origin == "" {
		origin = "anonymous"
	}
	return &Identity{
		Principal: origin,
		Tier:      tier.Free,
		Method:    MethodAnonymous,
	}
}

type contextKey struct{}

// NewContext returns a context carrying the identity.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}
