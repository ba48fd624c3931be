package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// BreakerState shows each provider's breaker state as a colored tile.
func BreakerState() *stat.PanelBuilder {
	return statBase("Circuit Breakers", "Breaker state per provider (0 = closed, 1 = open, 2 = half open)", TSHeight, StatWidth).
		WithTarget(query("max by (provider) ("+sel("catalog_circuit_breaker_state")+")", "{{provider}}", "A")).
		Thresholds(warnCrit(1, 2)).
		ColorMode(common.BigValueColorModeBackground).
		TextMode(common.BigValueTextModeValueAndName)
}

// BreakerTransitions plots breaker state changes per 5m window.
func BreakerTransitions() *timeseries.PanelBuilder {
	expr := "sum by (provider, to) (increase(" + over("catalog_circuit_breaker_transitions_total", "5m") + "))"
	return timeseriesBase("Breaker Transitions", "Circuit breaker state changes per 5m", "short", StatWidth).
		WithTarget(query(expr, "{{provider}} -> {{to}}", "A"))
}

// BulkheadInFlight plots bulkhead slot occupancy per provider.
func BulkheadInFlight() *timeseries.PanelBuilder {
	return timeseriesBase("Bulkhead In Flight", "Calls holding a bulkhead slot per provider", "short", StatWidth).
		WithTarget(query("max by (provider) ("+sel("catalog_bulkhead_in_flight")+")", "{{provider}}", "A"))
}

// Rejections plots calls refused by the rate limiter, the bulkhead or an
// open breaker.
func Rejections() *timeseries.PanelBuilder {
	expr := "sum by (provider, reason) (rate(" + over("catalog_resilience_rejections_total", "5m") + "))"
	return timeseriesBase("Rejections", "Calls refused before reaching the upstream", "reqps", StatWidth).
		WithTarget(query(expr, "{{provider}} {{reason}}", "A")).
		Thresholds(warnCrit(0.1, 1)).
		ColorScheme(byThreshold())
}
