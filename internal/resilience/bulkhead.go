package resilience

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"` // default 50
	MaxWait       time.Duration `yaml:"max_wait"`       // default 500ms
}

func (c BulkheadConfig) withDefaults() BulkheadConfig {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 50
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 500 * time.Millisecond
	}
	return c
}

// Bulkhead caps the number of concurrent calls to one provider so a slow
// provider cannot hold every worker.
type Bulkhead struct {
	sem      *semaphore.Weighted
	cfg      BulkheadConfig
	inFlight atomic.Int64
}

// NewBulkhead creates an empty bulkhead.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	cfg = cfg.withDefaults()
	return &Bulkhead{
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		cfg: cfg,
	}
}

// Acquire takes a slot, waiting up to MaxWait. The returned release func
// must be called once the call finishes.
func (b *Bulkhead) Acquire(ctx context.Context) (func(), error) {
	if !b.sem.TryAcquire(1) {
		wctx, cancel := context.WithTimeout(ctx, b.cfg.MaxWait)
		defer cancel()

		if err := b.sem.Acquire(wctx, 1); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("bulkhead wait: %w", ctx.Err())
			}
			return nil, fmt.Errorf("%w: %d calls in flight", ErrBulkheadFull, b.inFlight.Load())
		}
	}

	b.inFlight.Add(1)
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			b.inFlight.Add(-1)
			b.sem.Release(1)
		}
	}, nil
}

// InFlight returns the number of calls currently holding a slot.
func (b *Bulkhead) InFlight() int64 {
	return b.inFlight.Load()
}

// Capacity returns the configured concurrency limit.
func (b *Bulkhead) Capacity() int {
	return b.cfg.MaxConcurrent
}
