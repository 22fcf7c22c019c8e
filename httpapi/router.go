package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matiq-hq/matiq-api/auth"
	"github.com/matiq-hq/matiq-api/health"
	"github.com/matiq-hq/matiq-api/observe"
	"github.com/matiq-hq/matiq-api/resilience"
)

// RouterConfig wires the router's collaborators.
type RouterConfig struct {
	API        *API
	Instrument *observe.Middleware
	Health     *health.Aggregator
	Limiter    *resilience.PerClientLimiter

	// MetricsHandler serves GET /metrics. Defaults to the Prometheus
	// handler on the default registry.
	MetricsHandler http.Handler
}

// NewRouter assembles the full route table with per-route access
// policies.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(chimiddleware.Recoverer)
	if cfg.Limiter != nil {
		r.Use(RateLimit(cfg.Limiter))
	}

	a := cfg.API

	// handle applies the access policy and instrumentation to one route.
	handle := func(rt chi.Router, method, pattern, name string, policy auth.Policy, h http.HandlerFunc) {
		var handler http.Handler = a.Authorize(policy)(h)
		if cfg.Instrument != nil {
			handler = cfg.Instrument.Wrap(name, handler)
		}
		rt.Method(method, pattern, handler)
	}

	handle(r, http.MethodGet, "/", "/", auth.NoAuthRequired, a.handleRoot)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", func(ar chi.Router) {
			handle(ar, http.MethodGet, "/me", "/api/v1/auth/me", auth.RequiredAuth, a.handleMe)
			handle(ar, http.MethodGet, "/token-info", "/api/v1/auth/token-info", auth.RequiredAuth, a.handleTokenInfo)
			handle(ar, http.MethodGet, "/profile", "/api/v1/auth/profile", auth.RequiredAuth, a.handleProfile)
			handle(ar, http.MethodPost, "/protected-action", "/api/v1/auth/protected-action", auth.RequiredAuth, a.handleProtectedAction)
			handle(ar, http.MethodGet, "/public-with-optional-auth", "/api/v1/auth/public-with-optional-auth", auth.OptionalAuth, a.handlePublicWithOptionalAuth)
		})

		v1.Route("/admin", func(admin chi.Router) {
			handle(admin, http.MethodGet, "/stats", "/api/v1/admin/stats", auth.RequiredRole("admin"), a.handleAdminStats)
		})
	})

	r.Get("/healthz", health.LivenessHandler())
	if cfg.Health != nil {
		r.Get("/readyz", health.ReadinessHandler(cfg.Health))
		r.Get("/health", health.DetailedHandler(cfg.Health))
	}

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	return r
}
