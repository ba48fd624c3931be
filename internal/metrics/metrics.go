// Package metrics defines Prometheus metrics for catalog-aggregator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	HTTPPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_panics_recovered_total",
		Help:      "Handler panics recovered by the HTTP server.",
	})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or not (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe succeeded (1) or not (0).",
	})
)

// Provider metrics.
var (
	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_call_duration_seconds",
		Help:      "Duration of successful upstream provider calls in seconds.",
		Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	}, []string{"provider"})

	ProviderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Total number of failed provider calls by reason.",
	}, []string{"provider", "reason"})
)

// Resilience metrics.
var (
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state per provider (0=closed, 1=open, 2=half_open).",
	}, []string{"provider"})

	CircuitBreakerTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_transitions_total",
		Help:      "Total number of circuit breaker state transitions.",
	}, []string{"provider", "from", "to"})

	BulkheadInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bulkhead_in_flight",
		Help:      "Calls currently holding a bulkhead slot per provider.",
	}, []string{"provider"})

	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resilience_rejections_total",
		Help:      "Calls refused by the rate limiter, bulkhead, or open breaker.",
	}, []string{"provider", "reason"})
)

// Search metrics.
var (
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of search fan-outs in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 10},
	})

	SearchProvidersSucceeded = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_providers_succeeded",
		Help:      "Number of providers contributing to a search.",
		Buckets:   prometheus.LinearBuckets(0, 1, 9),
	})

	SearchProvidersFailed = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_providers_failed",
		Help:      "Number of providers failing or timing out in a search.",
		Buckets:   prometheus.LinearBuckets(0, 1, 9),
	})

	SearchTotalFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_total_failures_total",
		Help:      "Searches in which no provider contributed a result.",
	})

	CoalescedRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coalesced_requests_total",
		Help:      "Requests that joined an identical in-flight computation.",
	}, []string{"group"})
)

// Pricing metrics.
var (
	PricingDropsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_dropped_items_total",
		Help:      "Items dropped from results because pricing failed.",
	}, []string{"reason"})
)

// Exchange rate metrics.
var (
	RateRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_refresh_total",
		Help:      "Total number of exchange rate snapshot refreshes.",
	})

	RateRefreshErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_refresh_errors_total",
		Help:      "Total number of failed exchange rate refreshes.",
	})

	RateCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_cache_lookups_total",
		Help:      "Exchange rate cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	RatesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rates_loaded",
		Help:      "Number of exchange rates in the in-memory snapshot.",
	})
)

// Event metrics.
var (
	EventsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of search events published.",
	})

	EventPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Total number of search event publish failures.",
	})
)
