package main

import "errors"

// KnownMetrics is the set of metric names exported by catalog-aggregator
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"catalog_http_request_duration_seconds": true,
	"catalog_http_requests_total":           true,
	"catalog_http_requests_in_flight":       true,
	"catalog_http_panics_recovered_total":   true,

	// Health metrics.
	"catalog_healthz_up": true,
	"catalog_readyz_up":  true,

	// Provider gateway metrics.
	"catalog_provider_call_duration_seconds": true,
	"catalog_provider_errors_total":          true,

	// Resilience metrics.
	"catalog_circuit_breaker_state":             true,
	"catalog_circuit_breaker_transitions_total": true,
	"catalog_bulkhead_in_flight":                true,
	"catalog_resilience_rejections_total":       true,

	// Search metrics.
	"catalog_search_duration_seconds":     true,
	"catalog_search_providers_succeeded":  true,
	"catalog_search_providers_failed":     true,
	"catalog_search_total_failures_total": true,
	"catalog_coalesced_requests_total":    true,

	// Pricing and exchange rate metrics.
	"catalog_pricing_dropped_items_total": true,
	"catalog_rate_refresh_total":          true,
	"catalog_rate_refresh_errors_total":   true,
	"catalog_rate_cache_lookups_total":    true,
	"catalog_rates_loaded":                true,

	// Event metrics.
	"catalog_events_published_total":       true,
	"catalog_event_publish_failures_total": true,

	// Recording rules.
	"catalog:http_requests:rate5m":   true,
	"catalog:http_errors:rate5m":     true,
	"catalog:provider_calls:rate5m":  true,
	"catalog:provider_errors:rate5m": true,
	"catalog:search_failures:rate5m": true,
	"catalog:pricing_drops:rate5m":   true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
