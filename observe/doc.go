// Package observe provides structured logging, metrics, and tracing for
// the MatIQ API server. It wraps OpenTelemetry for metrics and traces and
// ships a JSON logger that redacts credential-bearing fields.
package observe
