package auth

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorMatchesSentinel(t *testing.T) {
	tests := []struct {
		kind     Kind
		sentinel error
	}{
		{KindNoCredential, ErrNoCredential},
		{KindEmptyToken, ErrEmptyToken},
		{KindExpired, ErrTokenExpired},
		{KindInvalidToken, ErrInvalidToken},
		{KindValidationFailed, ErrValidationFailed},
		{KindMissingSubject, ErrMissingSubject},
		{KindMissingEmail, ErrMissingEmail},
		{KindForbidden, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := newError(tt.kind, "test")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false, want true", err)
			}
			if errors.Is(err, errors.New("other")) {
				t.Error("errors.Is matched unrelated error")
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	if got := newError(KindExpired, "x").Status(); got != http.StatusUnauthorized {
		t.Errorf("expired Status() = %d, want 401", got)
	}
	if got := forbidden("admin").Status(); got != http.StatusForbidden {
		t.Errorf("forbidden Status() = %d, want 403", got)
	}
}

func TestForbiddenCarriesRole(t *testing.T) {
	err := forbidden("admin")
	if err.RequiredRole != "admin" {
		t.Errorf("RequiredRole = %q, want admin", err.RequiredRole)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("forbidden error should match ErrForbidden")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(newError(KindInvalidToken, "x")); got != KindInvalidToken {
		t.Errorf("KindOf() = %q, want invalid_token", got)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain error) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}
