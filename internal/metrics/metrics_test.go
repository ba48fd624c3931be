package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HealthzUp)
	assert.NotNil(t, metrics.ReadyzUp)
	assert.NotNil(t, metrics.ProviderCallDuration)
	assert.NotNil(t, metrics.ProviderErrorsTotal)
	assert.NotNil(t, metrics.CircuitBreakerState)
	assert.NotNil(t, metrics.SearchDuration)
	assert.NotNil(t, metrics.SearchTotalFailuresTotal)
	assert.NotNil(t, metrics.CoalescedRequestsTotal)
	assert.NotNil(t, metrics.PricingDropsTotal)
	assert.NotNil(t, metrics.RateRefreshTotal)
	assert.NotNil(t, metrics.EventsPublishedTotal)
}

func TestProviderSink_RecordError(t *testing.T) {
	t.Parallel()

	var sink metrics.ProviderSink

	before := testutil.ToFloat64(metrics.ProviderErrorsTotal.WithLabelValues("sink-test", "upstream"))
	sink.RecordError("sink-test", time.Millisecond, errors.New("boom"))
	after := testutil.ToFloat64(metrics.ProviderErrorsTotal.WithLabelValues("sink-test", "upstream"))
	assert.InDelta(t, 1.0, after-before, 0)

	rejBefore := testutil.ToFloat64(metrics.RejectionsTotal.WithLabelValues("sink-test", "bulkhead_full"))
	sink.RecordError("sink-test", time.Millisecond, resilience.ErrBulkheadFull)
	rejAfter := testutil.ToFloat64(metrics.RejectionsTotal.WithLabelValues("sink-test", "bulkhead_full"))
	assert.InDelta(t, 1.0, rejAfter-rejBefore, 0)
}

func TestObserveBreaker(t *testing.T) {
	t.Parallel()

	metrics.ObserveBreaker("breaker-test", resilience.StateClosed, resilience.StateOpen)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("breaker-test")), 0)

	metrics.ObserveBreaker("breaker-test", resilience.StateOpen, resilience.StateHalfOpen)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("breaker-test")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(
		metrics.CircuitBreakerTransitionsTotal.WithLabelValues("breaker-test", "open", "half_open")), 0)
}

func TestCollectPolicies(t *testing.T) {
	t.Parallel()

	metrics.CollectPolicies([]resilience.PolicyState{{Provider: "collect-test", InFlight: 4}})
	assert.InDelta(t, 4.0, testutil.ToFloat64(metrics.BulkheadInFlight.WithLabelValues("collect-test")), 0)
}
