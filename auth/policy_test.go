package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestGate() *Gate {
	return NewGate(newTestVerifier())
}

func bearerFor(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	return "Bearer " + signHS256(t, testSecret, claims)
}

func validClaims(extra map[string]any) jwt.MapClaims {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   "u1",
		"email": "a@b.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return claims
}

func TestGateNoAuthRequired(t *testing.T) {
	gate := newTestGate()

	// The credential is never inspected, valid or not.
	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		identity, err := gate.Evaluate(context.Background(), NoAuthRequired, header)
		if err != nil {
			t.Errorf("Evaluate(NoAuthRequired, %q) error = %v", header, err)
		}
		if identity != nil {
			t.Errorf("Evaluate(NoAuthRequired, %q) identity = %v, want nil", header, identity)
		}
	}
}

func TestGateRequiredAuth(t *testing.T) {
	gate := newTestGate()

	identity, err := gate.Evaluate(context.Background(), RequiredAuth, bearerFor(t, validClaims(nil)))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if identity.UserID != "u1" || identity.Email != "a@b.com" {
		t.Errorf("identity = %+v, want u1/a@b.com", identity)
	}
}

func TestGateRequiredAuthFailures(t *testing.T) {
	gate := newTestGate()
	now := time.Now()

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"no header", "", ErrNoCredential},
		{"wrong scheme", "Basic abc", ErrNoCredential},
		{"empty token", "Bearer ", ErrEmptyToken},
		{"garbage token", "Bearer garbage", ErrInvalidToken},
		{
			"expired",
			bearerFor(t, jwt.MapClaims{
				"sub": "u1", "email": "a@b.com",
				"iat": now.Add(-2 * time.Hour).Unix(),
				"exp": now.Add(-time.Hour).Unix(),
			}),
			ErrTokenExpired,
		},
		{
			"missing email",
			bearerFor(t, jwt.MapClaims{
				"sub": "u1",
				"iat": now.Unix(),
				"exp": now.Add(time.Hour).Unix(),
			}),
			ErrMissingEmail,
		},
		{
			"missing subject",
			bearerFor(t, jwt.MapClaims{
				"email": "a@b.com",
				"iat":   now.Unix(),
				"exp":   now.Add(time.Hour).Unix(),
			}),
			ErrMissingSubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := gate.Evaluate(context.Background(), RequiredAuth, tt.header)
			if !errors.Is(err, tt.want) {
				t.Errorf("Evaluate() error = %v, want %v", err, tt.want)
			}
			if identity != nil {
				t.Errorf("identity = %v, want nil on failure", identity)
			}
		})
	}
}

func TestGateOptionalAuth(t *testing.T) {
	gate := newTestGate()

	t.Run("absent credential proceeds anonymously", func(t *testing.T) {
		for _, header := range []string{"", "Basic abc", "Bearer "} {
			identity, err := gate.Evaluate(context.Background(), OptionalAuth, header)
			if err != nil {
				t.Errorf("Evaluate(OptionalAuth, %q) error = %v, want nil", header, err)
			}
			if identity != nil {
				t.Errorf("Evaluate(OptionalAuth, %q) identity = %v, want nil", header, identity)
			}
		}
	})

	t.Run("valid credential yields identity", func(t *testing.T) {
		identity, err := gate.Evaluate(context.Background(), OptionalAuth, bearerFor(t, validClaims(nil)))
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if identity == nil || identity.UserID != "u1" {
			t.Errorf("identity = %v, want u1", identity)
		}
	})

	// A token that is offered but invalid errors exactly as RequiredAuth
	// would; optional only relaxes the absence case.
	t.Run("present but invalid credential errors", func(t *testing.T) {
		headers := []string{
			"Bearer garbage",
			bearerFor(t, jwt.MapClaims{
				"sub": "u1", "email": "a@b.com",
				"iat": time.Now().Add(-2 * time.Hour).Unix(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		}
		for _, header := range headers {
			optIdentity, optErr := gate.Evaluate(context.Background(), OptionalAuth, header)
			reqIdentity, reqErr := gate.Evaluate(context.Background(), RequiredAuth, header)

			if optErr == nil {
				t.Errorf("Evaluate(OptionalAuth, invalid) error = nil, want error")
			}
			if KindOf(optErr) != KindOf(reqErr) {
				t.Errorf("optional kind = %q, required kind = %q, want identical", KindOf(optErr), KindOf(reqErr))
			}
			if optIdentity != nil || reqIdentity != nil {
				t.Error("identity must be nil on failure")
			}
		}
	})
}

func TestGateRequiredRole(t *testing.T) {
	gate := newTestGate()

	t.Run("matching role succeeds", func(t *testing.T) {
		identity, err := gate.Evaluate(context.Background(), RequiredRole("coach"),
			bearerFor(t, validClaims(map[string]any{"role": "coach"})))
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if identity.Role() != "coach" {
			t.Errorf("Role() = %q, want coach", identity.Role())
		}
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		_, err := gate.Evaluate(context.Background(), RequiredRole("admin"),
			bearerFor(t, validClaims(map[string]any{"role": "coach"})))
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("Evaluate() error = %v, want ErrForbidden", err)
		}
		var authErr *Error
		if !errors.As(err, &authErr) || authErr.RequiredRole != "admin" {
			t.Errorf("error does not carry required role: %v", err)
		}
	})

	t.Run("missing role claim never succeeds", func(t *testing.T) {
		_, err := gate.Evaluate(context.Background(), RequiredRole("coach"),
			bearerFor(t, validClaims(nil)))
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Evaluate() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("authentication failures come before role checks", func(t *testing.T) {
		_, err := gate.Evaluate(context.Background(), RequiredRole("coach"), "")
		if !errors.Is(err, ErrNoCredential) {
			t.Errorf("Evaluate() error = %v, want ErrNoCredential", err)
		}
	})
}

func TestPolicyString(t *testing.T) {
	tests := []struct {
		policy Policy
		want   string
	}{
		{NoAuthRequired, "none"},
		{OptionalAuth, "optional"},
		{RequiredAuth, "required"},
		{RequiredRole("admin"), "required_role:admin"},
	}
	for _, tt := range tests {
		if got := tt.policy.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
