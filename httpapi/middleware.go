package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/matiq-hq/matiq-api/auth"
	"github.com/matiq-hq/matiq-api/observe"
	"github.com/matiq-hq/matiq-api/resilience"
)

type requestIDKey struct{}

// RequestID assigns each request a UUID, exposed on the context and
// the X-Request-ID response header. An inbound X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request ID, or empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RateLimit throttles requests per client IP using the given limiter.
// Rejected requests receive 429 with a Retry-After hint.
func RateLimit(limiter *resilience.PerClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiter.Allow(key) {
				retryAfter := limiter.RetryAfter(key)
				seconds := int(retryAfter.Seconds())
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "rate_limited",
					"message": "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller for rate limiting. The chi RealIP
// middleware has already resolved forwarding headers into RemoteAddr.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Authorize evaluates the access policy for every request, records
// the decision, and rejects failures before the handler runs.
func (a *API) Authorize(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := a.gate.Evaluate(r.Context(), policy, r.Header.Get("Authorization"))

			failureKind := ""
			if err != nil {
				failureKind = string(auth.KindOf(err))
			}
			a.metrics.RecordAuthDecision(r.Context(), policy.String(), failureKind)

			if err != nil {
				a.logger.Warn(r.Context(), "request rejected",
					observe.String("policy", policy.String()),
					observe.String("kind", failureKind),
					observe.String("request_id", RequestIDFromContext(r.Context())),
				)
				auth.WriteError(w, err)
				return
			}

			if identity != nil {
				r = r.WithContext(auth.WithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}
