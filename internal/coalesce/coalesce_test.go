package coalesce_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-aggregator/internal/coalesce"
	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
)

func TestGroup_ConcurrentCallersShareOneComputation(t *testing.T) {
	t.Parallel()

	const callers = 10
	g := coalesce.New[string]("test-share")

	var computes atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		computes.Add(1)
		<-release
		return "result", nil
	}

	before := testutil.ToFloat64(metrics.CoalescedRequestsTotal.WithLabelValues("test-share"))

	var wg sync.WaitGroup
	results := make([]string, callers)
	shared := make([]bool, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, s, err := g.Do(context.Background(), "key", fn)
			assert.NoError(t, err)
			results[i] = v
			shared[i] = s
		}()
	}

	// Give every caller time to attach before the computation finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load())
	for i := range callers {
		assert.Equal(t, "result", results[i])
		assert.True(t, shared[i])
	}

	after := testutil.ToFloat64(metrics.CoalescedRequestsTotal.WithLabelValues("test-share"))
	assert.InDelta(t, float64(callers-1), after-before, 0)
}

func TestGroup_KeyReleasedAfterCompletion(t *testing.T) {
	t.Parallel()

	g := coalesce.New[int]("test-release")

	var computes atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(computes.Add(1)), nil
	}

	v1, shared1, err := g.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	v2, shared2, err := g.Do(context.Background(), "k", fn)
	require.NoError(t, err)

	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2, "a finished key must not be reused")
	assert.False(t, shared1)
	assert.False(t, shared2)
}

func TestGroup_DistinctKeysDoNotShare(t *testing.T) {
	t.Parallel()

	g := coalesce.New[string]("test-distinct")

	a, _, err := g.Do(context.Background(), "a", func(context.Context) (string, error) { return "A", nil })
	require.NoError(t, err)
	b, _, err := g.Do(context.Background(), "b", func(context.Context) (string, error) { return "B", nil })
	require.NoError(t, err)

	assert.Equal(t, "A", a)
	assert.Equal(t, "B", b)
}

func TestGroup_ErrorIsShared(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	g := coalesce.New[string]("test-error")

	_, _, err := g.Do(context.Background(), "k", func(context.Context) (string, error) {
		return "", errBoom
	})
	require.ErrorIs(t, err, errBoom)
}

func TestGroup_CallerCancellationDoesNotAffectOthers(t *testing.T) {
	t.Parallel()

	g := coalesce.New[string]("test-cancel")

	started := make(chan struct{})
	release := make(chan struct{})
	var computeCtxErr atomic.Value

	fn := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			computeCtxErr.Store(err)
		}
		return "done", nil
	}

	impatientCtx, cancel := context.WithCancel(context.Background())

	impatientErr := make(chan error, 1)
	go func() {
		_, _, err := g.Do(impatientCtx, "k", fn)
		impatientErr <- err
	}()
	<-started

	patient := make(chan string, 1)
	go func() {
		v, _, err := g.Do(context.Background(), "k", fn)
		assert.NoError(t, err)
		patient <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-impatientErr, context.Canceled)

	close(release)
	assert.Equal(t, "done", <-patient)
	assert.Nil(t, computeCtxErr.Load(), "shared computation must not see the caller's cancellation")
}

func TestGroup_ComputeTimeout(t *testing.T) {
	t.Parallel()

	g := coalesce.New[string]("test-timeout", coalesce.WithComputeTimeout(10*time.Millisecond))

	_, _, err := g.Do(context.Background(), "k", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
