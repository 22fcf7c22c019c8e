package auth

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Signature algorithm names.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
)

// KeyMaterial pairs a verification key with the signature algorithm it
// verifies. Key is []byte for symmetric algorithms and *rsa.PublicKey for
// asymmetric ones.
type KeyMaterial struct {
	Key       any
	Algorithm string
}

// KeyResolver obtains the material needed to verify token signatures.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: ResolveKey should honor cancellation while resolution is
//   in flight; a completed resolution may still be cached.
type KeyResolver interface {
	ResolveKey(ctx context.Context) (KeyMaterial, error)
}

// KeyResolverFunc adapts a function to the KeyResolver interface.
type KeyResolverFunc func(ctx context.Context) (KeyMaterial, error)

// ResolveKey calls the function.
func (f KeyResolverFunc) ResolveKey(ctx context.Context) (KeyMaterial, error) {
	return f(ctx)
}

// StaticKeyResolver always returns fixed key material. Useful in tests and
// for deployments without key discovery.
type StaticKeyResolver struct {
	material KeyMaterial
}

// NewStaticKeyResolver creates a resolver around fixed key material.
func NewStaticKeyResolver(material KeyMaterial) *StaticKeyResolver {
	return &StaticKeyResolver{material: material}
}

// ResolveKey returns the fixed key material.
func (r *StaticKeyResolver) ResolveKey(_ context.Context) (KeyMaterial, error) {
	return r.material, nil
}

// ResolverConfig configures the discovering key resolver.
type ResolverConfig struct {
	// Secret is the shared secret used when discovery is unset or fails.
	Secret string

	// Algorithm is the symmetric algorithm paired with Secret. Values
	// other than HS256 are pinned to HS256: the fallback key is a
	// shared secret and can only verify symmetric signatures.
	Algorithm string

	// DiscoveryURL is the key-discovery base URL. Empty disables
	// discovery and pins the resolver to the shared secret.
	DiscoveryURL string

	// Timeout bounds the discovery fetch. Default: 10 seconds.
	Timeout time.Duration

	// OnFallback is invoked when discovery was configured but failed and
	// the resolver fell back to the shared secret. Optional.
	OnFallback func(ctx context.Context, err error)
}

// Resolver resolves the verification key lazily on first use and caches
// it for the life of the process.
//
// If a discovery endpoint is configured and reachable, the first published
// key is used with RS256; otherwise the resolver falls back to the shared
// secret. Discovery failure is never fatal here: a misconfigured secret
// surfaces as every token failing verification, not as a resolver error.
//
// The cache is write-once. Racing first requests are collapsed with
// singleflight, so at most a few redundant fetches can happen during the
// race and no caller ever observes partially constructed key material.
type Resolver struct {
	config ResolverConfig
	jwks   *JWKSClient

	cached atomic.Pointer[KeyMaterial]
	group  singleflight.Group
}

// NewResolver creates a key resolver from config.
func NewResolver(config ResolverConfig) *Resolver {
	if config.Algorithm != AlgorithmHS256 {
		config.Algorithm = AlgorithmHS256
	}

	r := &Resolver{config: config}
	if config.DiscoveryURL != "" {
		r.jwks = NewJWKSClient(config.DiscoveryURL, config.Timeout)
	}
	return r
}

// ResolveKey returns the cached key material, resolving it on first use.
func (r *Resolver) ResolveKey(ctx context.Context) (KeyMaterial, error) {
	if km := r.cached.Load(); km != nil {
		return *km, nil
	}

	ch := r.group.DoChan("resolve", func() (any, error) {
		if km := r.cached.Load(); km != nil {
			return *km, nil
		}
		km := r.resolve(ctx)
		r.cached.Store(&km)
		return km, nil
	})

	select {
	case <-ctx.Done():
		// The in-flight resolution is left to complete and populate the
		// cache for later requests; this caller just stops waiting.
		return KeyMaterial{}, ctx.Err()
	case res := <-ch:
		return res.Val.(KeyMaterial), nil
	}
}

// Reset clears the cached key material. Intended for tests.
func (r *Resolver) Reset() {
	r.cached.Store(nil)
}

func (r *Resolver) resolve(ctx context.Context) KeyMaterial {
	if r.jwks != nil {
		// Detach from the caller so a cancelled request cannot abort a
		// fetch whose result is cacheable for everyone else.
		fetchCtx := context.WithoutCancel(ctx)
		key, err := r.jwks.FetchKey(fetchCtx)
		if err == nil {
			return KeyMaterial{Key: key, Algorithm: AlgorithmRS256}
		}
		if r.config.OnFallback != nil {
			r.config.OnFallback(ctx, err)
		}
	}
	return KeyMaterial{Key: []byte(r.config.Secret), Algorithm: r.config.Algorithm}
}

// Ensure resolver implementations satisfy KeyResolver.
var (
	_ KeyResolver = (*Resolver)(nil)
	_ KeyResolver = (*StaticKeyResolver)(nil)
	_ KeyResolver = (KeyResolverFunc)(nil)
)
