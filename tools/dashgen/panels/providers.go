package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

// ProviderCallRate plots successful and failed upstream calls per provider.
func ProviderCallRate() *timeseries.PanelBuilder {
	return timeseriesBase("Provider Calls", "Upstream calls per second by provider", "reqps", ThirdWidth).
		WithTarget(query("catalog:provider_calls:rate5m", "{{provider}} ok", "A")).
		WithTarget(query("catalog:provider_errors:rate5m", "{{provider}} failed", "B")).
		Legend(meanMaxLegend())
}

// ProviderLatency plots p95 upstream latency per provider.
func ProviderLatency() *timeseries.PanelBuilder {
	return timeseriesBase("Provider Latency p95", "95th percentile of successful upstream call duration", "s", ThirdWidth).
		WithTarget(query(Quantile("0.95", "catalog_provider_call_duration_seconds", "provider"), "{{provider}}", "A"))
}

// ProviderErrors breaks upstream failures down by reason.
func ProviderErrors() *timeseries.PanelBuilder {
	expr := "sum by (provider, reason) (rate(" + over("catalog_provider_errors_total", "5m") + "))"
	return timeseriesBase("Provider Errors by Reason", "Failed upstream calls per second by provider and reason", "reqps", ThirdWidth).
		WithTarget(query(expr, "{{provider}} {{reason}}", "A")).
		Legend(meanMaxLegend())
}
