package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/coachkit/tier"
)

// Sentinel errors for token validation.
var (
	ErrMissingToken  = errors.New("auth: missing token")
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrTokenExpired  = errors.New("auth: token expired")
	ErrMissingClaims = errors.New("auth: required claims missing")
)

// ResolverConfig configures the token resolver.
type ResolverConfig struct {
	// Key is the HS256 signing secret.
	Key []byte

	// Issuer, when set, is required to match the iss claim.
	Issuer string

	// TierClaim is the claim carrying the subscription tier.
	// Default: "tier"
	TierClaim string
}

// Resolver validates bearer tokens and produces identities.
type Resolver struct {
	config ResolverConfig
}

// NewResolver creates a Resolver.
func NewResolver(config ResolverConfig) *Resolver {
	if config.TierClaim == "" {
		config.TierClaim = "tier"
	}
	return &Resolver{config: config}
}

// Resolve validates the Authorization header value and returns the
// authenticated identity. An empty header yields an anonymous identity
// keyed by origin; a present-but-invalid token is an error, never a
// silent downgrade to anonymous.
func (r *Resolver) Resolve(authorization, origin string) (*Identity, error) {
	if authorization == "" {
		return Anonymous(origin), nil
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	if tokenString == "" || tokenString == authorization {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if r.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.config.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return r.config.Key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrMissingClaims
	}

	userTier := tier.Free
	if raw, ok := claims[r.config.TierClaim].(string); ok {
		userTier = tier.ParseOrFree(raw)
	}

	return &Identity{
		Principal: subject,
		Tier:      userTier,
		Method:    MethodJWT,
	}, nil
}
