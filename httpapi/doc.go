// Package httpapi assembles the HTTP surface of the MatIQ API: the
// chi router, per-route access policies, request instrumentation, and
// the JSON views returned by the auth endpoints.
package httpapi
