// Package health reports the readiness of the API's dependencies.
//
// A Checker probes one dependency and reports Healthy, Degraded, or
// Unhealthy. The Aggregator runs all registered checkers and computes
// an overall status. HTTP handlers expose liveness, readiness, and a
// detailed JSON report.
//
// The service's own checkers cover the token verification path: key
// discovery reachability and shared-secret availability. Key discovery
// being down degrades the service rather than failing it, because
// verification falls back to the shared secret.
package health
