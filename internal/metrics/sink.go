package metrics

import (
	"time"

	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
)

// ProviderSink reports gateway observations to Prometheus.
type ProviderSink struct{}

// RecordLatency observes a successful provider call.
func (ProviderSink) RecordLatency(provider string, d time.Duration) {
	ProviderCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordError counts a failed provider call under its failure reason.
// Rejections are also counted separately.
func (ProviderSink) RecordError(provider string, _ time.Duration, err error) {
	reason := resilience.Reason(err)
	ProviderErrorsTotal.WithLabelValues(provider, reason).Inc()
	if resilience.IsRejection(err) {
		RejectionsTotal.WithLabelValues(provider, reason).Inc()
	}
}

// ObserveBreaker records a breaker transition. It matches
// resilience.StateObserver.
func ObserveBreaker(provider string, from, to resilience.State) {
	CircuitBreakerState.WithLabelValues(provider).Set(float64(to))
	CircuitBreakerTransitionsTotal.WithLabelValues(provider, from.String(), to.String()).Inc()
}

// CollectPolicies publishes bulkhead occupancy for every known provider.
func CollectPolicies(states []resilience.PolicyState) {
	for _, s := range states {
		BulkheadInFlight.WithLabelValues(s.Provider).Set(float64(s.InFlight))
	}
}
