package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/coachkit/tier"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestResolveValidToken(t *testing.T) {
	r := NewResolver(ResolverConfig{Key: testKey})
	token := signToken(t, jwt.MapClaims{
		"sub":  "user-42",
		"tier": "premium",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	id, err := r.Resolve("Bearer "+token, "10.0.0.1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if id.Principal != "user-42" {
		t.Errorf("Principal = %q, want user-42", id.Principal)
	}
	if id.Tier != tier.Premium {
		t.Errorf("Tier = %v, want Premium", id.Tier)
	}
	if id.Method != MethodJWT {
		t.Errorf("Method = %q, want %q", id.Method, MethodJWT)
	}
	if id.IsAnonymous() {
		t.Error("authenticated identity reported anonymous")
	}
}

func TestResolveEmptyHeaderIsAnonymous(t *testing.T) {
	r := NewResolver(ResolverConfig{Key: testKey})

	id, err := r.Resolve("", "203.0.113.9")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !id.IsAnonymous() {
		t.Error("empty header should yield anonymous identity")
	}
	if id.Tier != tier.Free {
		t.Errorf("anonymous Tier = %v, want Free", id.Tier)
	}
	if id.Principal == "" {
		t.Error("anonymous identity should be keyed by origin")
	}
}

func TestResolveErrors(t *testing.T) {
	r := NewResolver(ResolverConfig{Key: testKey})

	expired := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	noSubject := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongKey := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
		signed, err := token.SignedString([]byte("other-key"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return signed
	}()

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"no bearer prefix", "Token abc", ErrMissingToken},
		{"empty after prefix", "Bearer ", ErrMissingToken},
		{"garbage token", "Bearer not.a.token", ErrInvalidToken},
		{"expired", "Bearer " + expired, ErrTokenExpired},
		{"missing subject", "Bearer " + noSubject, ErrMissingClaims},
		{"bad signature", "Bearer " + wrongKey, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.header, "10.0.0.1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveDefaultsMissingTierToFree(t *testing.T) {
	r := NewResolver(ResolverConfig{Key: testKey})
	token := signToken(t, jwt.MapClaims{
		"sub": "user-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	id, err := r.Resolve("Bearer "+token, "10.0.0.1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if id.Tier != tier.Free {
		t.Errorf("Tier = %v, want Free", id.Tier)
	}
}

func TestResolveIssuerMismatch(t *testing.T) {
	r := NewResolver(ResolverConfig{Key: testKey, Issuer: "coachkit"})
	token := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := r.Resolve("Bearer "+token, "10.0.0.1"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Resolve error = %v, want ErrInvalidToken", err)
	}
}

func TestIdentityContext(t *testing.T) {
	id := &Identity{Principal: "user-1", Tier: tier.Basic, Method: MethodJWT}
	ctx := NewContext(context.Background(), id)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext did not find identity")
	}
	if got.Principal != "user-1" {
		t.Errorf("Principal = %q, want user-1", got.Principal)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext on empty context should report false")
	}
}
