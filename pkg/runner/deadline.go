package runner

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/rulesmith/pkg/domain"
)

// WithDeadline calls fn with a context that expires after d and returns
// domain.ErrTimeout once d has passed, even if fn is still running.
// A call that ignores its context keeps running in the background, but its
// result is dropped. The timer is released as soon as WithDeadline returns.
// A non-positive d calls fn directly.
func WithDeadline[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if d <= 0 {
		return fn(ctx)
	}

	dctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(dctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return zero, domain.ErrTimeout
		}
		return r.value, r.err
	case <-dctx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, domain.ErrTimeout
	}
}
