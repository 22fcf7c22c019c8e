package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records authentication decisions and HTTP request outcomes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordAuthDecision records one gate evaluation. failureKind is the
	// machine-readable error kind, or empty on success.
	RecordAuthDecision(ctx context.Context, policy string, failureKind string)

	// RecordRequest records one completed HTTP request.
	RecordRequest(ctx context.Context, route, method string, status int, duration time.Duration)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	authTotal    metric.Int64Counter
	authFailures metric.Int64Counter
	reqTotal     metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	authTotal, err := meter.Int64Counter(
		"auth.decisions.total",
		metric.WithDescription("Total number of access policy evaluations"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter(
		"auth.failures.total",
		metric.WithDescription("Total number of rejected policy evaluations"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	reqTotal, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"http.request.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		authTotal:    authTotal,
		authFailures: authFailures,
		reqTotal:     reqTotal,
		durationHist: durationHist,
	}, nil
}

// RecordAuthDecision records one gate evaluation.
func (m *metricsImpl) RecordAuthDecision(ctx context.Context, policy string, failureKind string) {
	outcome := "allowed"
	if failureKind != "" {
		outcome = "rejected"
	}

	m.authTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("auth.policy", policy),
		attribute.String("auth.outcome", outcome),
	))

	if failureKind != "" {
		m.authFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("auth.policy", policy),
			attribute.String("auth.kind", failureKind),
		))
	}
}

// RecordRequest records one completed HTTP request.
func (m *metricsImpl) RecordRequest(ctx context.Context, route, method string, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("http.route", route),
		attribute.String("http.method", method),
		attribute.Int("http.status_code", status),
	)

	m.reqTotal.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordAuthDecision(context.Context, string, string)                 {}
func (noopMetrics) RecordRequest(context.Context, string, string, int, time.Duration) {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}
