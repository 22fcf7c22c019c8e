package health

import (
	"context"

	"github.com/matiq-hq/matiq-api/secret"
)

// KeyDiscoveryChecker probes the signing-key discovery endpoint.
//
// A failing probe reports degraded rather than unhealthy: token
// verification falls back to the shared secret when discovery is
// unavailable.
type KeyDiscoveryChecker struct {
	fetch func(ctx context.Context) error
}

// NewKeyDiscoveryChecker creates a checker around a key fetch
// function, typically the JWKS client's FetchKey.
func NewKeyDiscoveryChecker(fetch func(ctx context.Context) error) *KeyDiscoveryChecker {
	return &KeyDiscoveryChecker{fetch: fetch}
}

func (c *KeyDiscoveryChecker) Name() string { return "key_discovery" }

func (c *KeyDiscoveryChecker) Check(ctx context.Context) Result {
	if c.fetch == nil {
		return Healthy("key discovery not configured").WithDetails(map[string]any{
			"configured": false,
		})
	}
	if err := c.fetch(ctx); err != nil {
		return Degraded("key discovery unreachable, shared-secret fallback active").WithDetails(map[string]any{
			"configured": true,
			"error":      err.Error(),
		})
	}
	return Healthy("key discovery reachable").WithDetails(map[string]any{
		"configured": true,
	})
}

// SecretChecker verifies the JWT shared secret can be resolved.
type SecretChecker struct {
	provider secret.Provider
}

// NewSecretChecker creates a checker over a secret provider.
func NewSecretChecker(provider secret.Provider) *SecretChecker {
	return &SecretChecker{provider: provider}
}

func (c *SecretChecker) Name() string { return "jwt_secret" }

func (c *SecretChecker) Check(ctx context.Context) Result {
	if c.provider == nil {
		return Unhealthy("no secret provider configured", ErrCheckFailed)
	}
	// Only resolvability is reported, never the value.
	if _, err := c.provider.Resolve(ctx); err != nil {
		return Unhealthy("JWT secret unavailable", err).WithDetails(map[string]any{
			"source": c.provider.Name(),
		})
	}
	return Healthy("JWT secret available").WithDetails(map[string]any{
		"source": c.provider.Name(),
	})
}
