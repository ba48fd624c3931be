package resilience

import (
	"context"
	"fmt"
	"time"
)

// CallWithTimeout runs fn with a context that expires after d and returns as
// soon as either fn finishes or the deadline passes, even when fn ignores
// its context. A call cut off by the deadline returns ErrTimeout; a call cut
// off by the parent context returns the parent's error.
func CallWithTimeout[T any](
	ctx context.Context,
	d time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	if d <= 0 {
		return fn(ctx)
	}

	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	go func() {
		v, err := fn(cctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && cctx.Err() != nil {
			return zero, timeoutErr(ctx, d)
		}
		return r.val, r.err
	case <-cctx.Done():
		return zero, timeoutErr(ctx, d)
	}
}

func timeoutErr(parent context.Context, d time.Duration) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w after %s: %w", ErrTimeout, d, context.DeadlineExceeded)
}
