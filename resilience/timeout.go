package resilience

import (
	"context"
	"time"

	"github.com/kbukum/padflow/errors"
)

// WithTimeout runs fn with a deadline of d. If the deadline expires while
// the parent context is still live, a TIMEOUT error naming op is returned.
// A non-positive d runs fn without a deadline.
func WithTimeout(ctx context.Context, d time.Duration, op string, fn func(context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := fn(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return errors.Timeout(op).WithCause(err)
	}
	return err
}
