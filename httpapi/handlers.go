package httpapi

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/matiq-hq/matiq-api/auth"
	"github.com/matiq-hq/matiq-api/observe"
	"github.com/matiq-hq/matiq-api/resilience"
)

// API holds the dependencies shared by all handlers.
type API struct {
	gate    *auth.Gate
	logger  observe.Logger
	metrics observe.Metrics
	limiter *resilience.PerClientLimiter
	version string
	started time.Time
}

// NewAPI creates the handler set. Nil logger and metrics default to
// no-op implementations.
func NewAPI(gate *auth.Gate, logger observe.Logger, metrics observe.Metrics, limiter *resilience.PerClientLimiter, version string) *API {
	if logger == nil {
		logger = observe.NopLogger()
	}
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	return &API{
		gate:    gate,
		logger:  logger,
		metrics: metrics,
		limiter: limiter,
		version: version,
		started: time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// handleRoot is the unauthenticated welcome endpoint.
func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to MatIQ API",
	})
}

// handleMe returns the authenticated caller's identity.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, NewUserResponse(identity))
}

// handleTokenInfo returns the claims of the presented token.
func (a *API) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, NewTokenInfo(identity))
}

// handleProfile returns the caller's profile view.
func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, ProfileResponse{
		Message: "Welcome to your profile, " + identity.Email + "!",
		UserID:  identity.UserID,
		Email:   identity.Email,
		ProfileData: map[string]any{
			"last_login": time.Now().UTC().Format(time.RFC3339),
			"role":       identity.Role(),
		},
	})
}

// handleProtectedAction accepts a JSON action request and echoes the
// outcome attributed to the caller.
func (a *API) handleProtectedAction(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req ProtectedActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid_request",
			"message": "request body must be valid JSON",
		})
		return
	}
	if req.Action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid_request",
			"message": "action is required",
		})
		return
	}

	a.logger.Info(r.Context(), "protected action performed",
		observe.String("action", req.Action),
		observe.String("user_id", identity.UserID),
		observe.String("request_id", RequestIDFromContext(r.Context())),
	)

	writeJSON(w, http.StatusOK, ProtectedActionResponse{
		Message:     "Protected action completed successfully",
		PerformedBy: identity.Email,
		UserID:      identity.UserID,
		ActionData:  req.Data,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handlePublicWithOptionalAuth serves everyone, with premium fields
// for verified callers.
func (a *API) handlePublicWithOptionalAuth(w http.ResponseWriter, r *http.Request) {
	resp := PublicEndpointResponse{
		Message:    "Welcome to MatIQ Wrestling Analytics",
		PublicData: "Tournament schedules, public wrestler rankings, and match results",
	}

	if identity := auth.IdentityFromContext(r.Context()); identity != nil {
		user := NewUserResponse(identity)
		resp.Authenticated = true
		resp.UserInfo = &user
		resp.PremiumData = "Detailed analytics, coaching insights, and personalized recommendations"
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleAdminStats reports service statistics. The router guards it
// with the admin role.
func (a *API) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats := AdminStatsResponse{
		UptimeSeconds: int64(time.Since(a.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Version:       a.version,
	}
	if a.limiter != nil {
		stats.TrackedClients = a.limiter.Size()
	}
	writeJSON(w, http.StatusOK, stats)
}
