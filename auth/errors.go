package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable classification of an authentication or
// authorization failure.
type Kind string

const (
	KindNoCredential     Kind = "no_credential"
	KindEmptyToken       Kind = "empty_token"
	KindExpired          Kind = "expired"
	KindInvalidToken     Kind = "invalid_token"
	KindValidationFailed Kind = "validation_failed"
	KindMissingSubject   Kind = "missing_subject"
	KindMissingEmail     Kind = "missing_email"
	KindForbidden        Kind = "forbidden"
)

// Sentinel errors for authentication and authorization. Classified *Error
// values match these via errors.Is.
var (
	// Authentication errors (HTTP 401)
	ErrNoCredential     = errors.New("auth: missing credentials")
	ErrEmptyToken       = errors.New("auth: empty bearer token")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrInvalidToken     = errors.New("auth: invalid token")
	ErrValidationFailed = errors.New("auth: token validation failed")
	ErrMissingSubject   = errors.New("auth: token missing user id")
	ErrMissingEmail     = errors.New("auth: token missing email")

	// Authorization errors (HTTP 403)
	ErrForbidden = errors.New("auth: access denied")
)

var kindSentinels = map[Kind]error{
	KindNoCredential:     ErrNoCredential,
	KindEmptyToken:       ErrEmptyToken,
	KindExpired:          ErrTokenExpired,
	KindInvalidToken:     ErrInvalidToken,
	KindValidationFailed: ErrValidationFailed,
	KindMissingSubject:   ErrMissingSubject,
	KindMissingEmail:     ErrMissingEmail,
	KindForbidden:        ErrForbidden,
}

// Error is a classified authentication or authorization failure.
//
// Message is safe to return to clients; it never contains claim contents
// or internal state.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Message is a short, client-safe description.
	Message string

	// RequiredRole is set only for KindForbidden.
	RequiredRole string

	// Cause is the underlying error, if any. Not exposed to clients.
	Cause error
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the cause error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the sentinel for its kind.
func (e *Error) Is(target error) bool {
	return target == kindSentinels[e.Kind]
}

// Status returns the recommended HTTP status for this failure:
// 403 for authorization failures, 401 for everything else.
func (e *Error) Status() int {
	if e.Kind == KindForbidden {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func forbidden(requiredRole string) *Error {
	return &Error{
		Kind:         KindForbidden,
		Message:      fmt.Sprintf("access denied: required role %q", requiredRole),
		RequiredRole: requiredRole,
	}
}

// KindOf returns the classification of err, or the empty Kind if err is
// not an auth failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
