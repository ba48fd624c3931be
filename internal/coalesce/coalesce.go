// Package coalesce collapses concurrent identical requests into a single
// computation whose result is shared by every waiter.
package coalesce

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
)

// Group deduplicates in-flight computations by key. The zero value is not
// usable; create one with New.
type Group[T any] struct {
	name    string
	sf      singleflight.Group
	timeout time.Duration
}

// Option configures a Group.
type Option func(*settings)

type settings struct {
	timeout time.Duration
}

// WithComputeTimeout bounds how long a shared computation may run once it is
// detached from the caller that started it.
func WithComputeTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// New creates a Group. name labels the coalescing metric.
func New[T any](name string, opts ...Option) *Group[T] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return &Group[T]{name: name, timeout: s.timeout}
}

// Do runs fn once per key among concurrent callers and hands every caller
// the same result. shared reports whether the result was shared with other
// callers.
//
// fn runs on a context detached from the cancellation of the caller that
// started it, so one caller giving up does not cancel the work for the
// others. Each caller stops waiting when its own ctx ends. The key is
// released before waiters are woken, so a caller arriving after completion
// always starts a fresh computation.
func (g *Group[T]) Do(
	ctx context.Context,
	key string,
	fn func(context.Context) (T, error),
) (val T, shared bool, err error) {
	var executed atomic.Bool

	ch := g.sf.DoChan(key, func() (any, error) {
		executed.Store(true)

		cctx := context.WithoutCancel(ctx)
		if g.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(cctx, g.timeout)
			defer cancel()
		}
		return fn(cctx)
	})

	select {
	case res := <-ch:
		if !executed.Load() {
			metrics.CoalescedRequestsTotal.WithLabelValues(g.name).Inc()
		}
		if res.Err != nil {
			return val, res.Shared, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return val, res.Shared, fmt.Errorf("coalesce %s: unexpected result type %T", g.name, res.Val)
		}
		return v, res.Shared, nil
	case <-ctx.Done():
		return val, false, ctx.Err()
	}
}
