// Package resilience bounds calls to external collaborators. The
// weather provider wraps its upstream HTTP calls in a Timeout so a
// slow weather API cannot stall tool dispatch indefinitely.
package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout indicates an operation exceeded its time budget.
var ErrTimeout = errors.New("resilience: operation timed out")

// DefaultTimeout is used when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Timeout wraps operations with a fixed time budget.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a timeout wrapper. Non-positive limits fall back
// to DefaultTimeout.
func NewTimeout(limit time.Duration) *Timeout {
	if limit <= 0 {
		limit = DefaultTimeout
	}
	return &Timeout{limit: limit}
}

// Limit returns the configured time budget.
func (t *Timeout) Limit() time.Duration { return t.limit }

// Execute runs op under the time budget. The operation receives a
// derived context and should stop promptly when it is canceled; on
// expiry Execute returns ErrTimeout without waiting for op.
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
