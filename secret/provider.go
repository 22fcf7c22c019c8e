package secret

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates the provider's source exists but holds no
// value. Chain skips providers returning it.
var ErrNotFound = errors.New("secret: not found")

// Provider yields a secret value.
//
// Implementations must be safe for concurrent use and must not log
// secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context) (string, error)
}

// Chain resolves providers in order, returning the first non-empty
// value. Providers reporting ErrNotFound are skipped; any other error
// stops the chain.
type Chain struct {
	providers []Provider
}

// NewChain creates a chain over the given providers. Nil providers are
// ignored.
func NewChain(providers ...Provider) *Chain {
	c := &Chain{}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Name identifies the chain by its member providers.
func (c *Chain) Name() string {
	names := ""
	for i, p := range c.providers {
		if i > 0 {
			names += ","
		}
		names += p.Name()
	}
	return "chain(" + names + ")"
}

// Resolve walks the chain and returns the first value found.
func (c *Chain) Resolve(ctx context.Context) (string, error) {
	for _, p := range c.providers {
		value, err := p.Resolve(ctx)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("secret provider %q: %w", p.Name(), err)
		}
		if value != "" {
			return value, nil
		}
	}
	return "", ErrNotFound
}

var _ Provider = (*Chain)(nil)
