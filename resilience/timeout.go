package resilience

import (
	"context"
	"errors"
	"time"
)

// Timeout bounds the duration of an operation.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a timeout wrapper. A non-positive limit defaults
// to 30 seconds.
func NewTimeout(limit time.Duration) *Timeout {
	if limit <= 0 {
		limit = 30 * time.Second
	}
	return &Timeout{limit: limit}
}

// Limit returns the configured duration bound.
func (t *Timeout) Limit() time.Duration {
	return t.limit
}

// Execute runs op under the timeout. The operation keeps running in
// its goroutine after the deadline; it must honor ctx to stop early.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// ExecuteWithTimeout runs op with a one-off timeout.
func ExecuteWithTimeout(ctx context.Context, limit time.Duration, op func(context.Context) error) error {
	return NewTimeout(limit).Execute(ctx, op)
}
