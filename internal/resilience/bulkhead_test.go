package resilience_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	t.Parallel()

	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 2, MaxWait: 10 * time.Millisecond})

	r1, err := b.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := b.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.InFlight())

	_, err = b.Acquire(context.Background())
	require.ErrorIs(t, err, resilience.ErrBulkheadFull)

	r1()
	r1() // second release is a no-op
	assert.Equal(t, int64(1), b.InFlight())

	r3, err := b.Acquire(context.Background())
	require.NoError(t, err)
	r2()
	r3()
	assert.Equal(t, int64(0), b.InFlight())
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	t.Parallel()

	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})

	release, err := b.Acquire(context.Background())
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	r2, err := b.Acquire(context.Background())
	require.NoError(t, err)
	r2()
}

func TestBulkhead_ContextCanceled(t *testing.T) {
	t.Parallel()

	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	release, err := b.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBulkhead_NeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 3, MaxWait: time.Second})

	var current, peak atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := b.Acquire(context.Background())
			if err != nil {
				return
			}
			defer release()
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(3))
	assert.Equal(t, 3, b.Capacity())
}
