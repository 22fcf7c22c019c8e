package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matiq-hq/matiq-api/auth"
	"github.com/matiq-hq/matiq-api/config"
	"github.com/matiq-hq/matiq-api/health"
	"github.com/matiq-hq/matiq-api/httpapi"
	"github.com/matiq-hq/matiq-api/observe"
	"github.com/matiq-hq/matiq-api/resilience"
	"github.com/matiq-hq/matiq-api/secret"
)

// healthChecks wires the verification-path probes. The secret checker
// is registered only when a secret source is configured; a
// discovery-only deployment verifies tokens without one.
func healthChecks(secrets secret.Provider, hasSecretSource bool, discoveryProbe func(context.Context) error) *health.Aggregator {
	checks := health.NewAggregator(10 * time.Second)
	if hasSecretSource {
		checks.Register("jwt_secret", health.NewSecretChecker(secrets))
	}
	if discoveryProbe != nil {
		checks.Register("key_discovery", health.NewKeyDiscoveryChecker(discoveryProbe))
	}
	return checks
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "[ERROR]", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.Observe.TracingEnabled,
			Exporter:  cfg.Observe.TracingExporter,
			SamplePct: cfg.Observe.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.Observe.MetricsEnabled,
			Exporter: cfg.Observe.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.Observe.LogLevel,
		},
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	logger := obs.Logger()

	secrets := secret.NewChain(
		secret.FromFile(cfg.Auth.SecretFile),
		secret.FromValue(cfg.Auth.Secret),
	)
	jwtSecret, err := secrets.Resolve(ctx)
	if err != nil && !errors.Is(err, secret.ErrNotFound) {
		return fmt.Errorf("resolve JWT secret: %w", err)
	}
	if jwtSecret == "" && cfg.Auth.ProjectURL == "" {
		return fmt.Errorf("no JWT secret and no project URL configured")
	}

	resolver := auth.NewResolver(auth.ResolverConfig{
		Secret:       jwtSecret,
		Algorithm:    cfg.Auth.Algorithm,
		DiscoveryURL: cfg.Auth.ProjectURL,
		Timeout:      cfg.Auth.JWKSTimeout,
		OnFallback: func(ctx context.Context, err error) {
			logger.Warn(ctx, "key discovery failed, using shared secret",
				observe.String("error", err.Error()),
			)
		},
	})
	gate := auth.NewGate(auth.NewVerifier(resolver))

	var discoveryProbe func(context.Context) error
	if cfg.Auth.ProjectURL != "" {
		jwks := auth.NewJWKSClient(cfg.Auth.ProjectURL, cfg.Auth.JWKSTimeout)
		discoveryProbe = func(ctx context.Context) error {
			return resilience.ExecuteWithTimeout(ctx, cfg.Auth.JWKSTimeout, func(ctx context.Context) error {
				_, err := jwks.FetchKey(ctx)
				return err
			})
		}
	}
	hasSecretSource := cfg.Auth.Secret != "" || cfg.Auth.SecretFile != ""
	checks := healthChecks(secrets, hasSecretSource, discoveryProbe)

	instrument, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("init instrumentation: %w", err)
	}

	limiter := resilience.NewPerClientLimiter(resilience.RateLimiterConfig{
		Rate:   cfg.Limit.Rate,
		Burst:  cfg.Limit.Burst,
		Window: cfg.Limit.Per,
	})

	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	api := httpapi.NewAPI(gate, logger, metrics, limiter, cfg.App.Version)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		API:        api,
		Instrument: instrument,
		Health:     checks,
		Limiter:    limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening",
			observe.String("addr", cfg.Server.Addr),
			observe.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info(shutdownCtx, "shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown failed",
			observe.String("error", err.Error()),
		)
	}
	return obs.Shutdown(shutdownCtx)
}
