// Package secret sources the JWT shared secret used for token
// verification.
//
// It supports:
//   - Environment variables (see FromEnv)
//   - Secret files, e.g. Docker/Kubernetes mounted secrets (see FromFile)
//   - Literal values with strict environment expansion (see FromValue)
//   - Ordered fallback across sources (see Chain)
//
// Secret values must never be logged; providers return them only to
// the caller.
package secret
