package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// errorBody is the JSON error envelope written on rejected requests.
// It carries the machine-readable kind and a client-safe message only.
type errorBody struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	RequiredRole string `json:"required_role,omitempty"`
}

// Middleware returns HTTP middleware that evaluates the policy for every
// request. On success the identity (if any) is attached to the request
// context; on failure the classified error is written and the handler
// does not run.
func Middleware(gate *Gate, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := gate.Evaluate(r.Context(), policy, r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, err)
				return
			}
			if identity != nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes a classified auth failure as a JSON response.
// Authentication failures get a WWW-Authenticate challenge indicating
// Bearer auth is expected.
func WriteError(w http.ResponseWriter, err error) {
	var authErr *Error
	if !errors.As(err, &authErr) {
		authErr = &Error{Kind: KindValidationFailed, Message: "token validation failed", Cause: err}
	}

	status := authErr.Status()
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(errorBody{
		Error:        string(authErr.Kind),
		Message:      authErr.Message,
		RequiredRole: authErr.RequiredRole,
	})
}
