package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

const httpDuration = "catalog_http_request_duration_seconds"

// RequestRate plots HTTP requests per second.
func RequestRate() *timeseries.PanelBuilder {
	return timeseriesBase("Request Rate", "HTTP requests per second", "reqps", StatWidth).
		WithTarget(query("catalog:http_requests:rate5m", "req/s", "A")).
		Legend(meanMaxLegend())
}

// LatencyPercentiles plots p50, p95 and p99 HTTP latency.
func LatencyPercentiles() *timeseries.PanelBuilder {
	return percentiles("Latency Percentiles", "HTTP request duration percentiles", httpDuration)
}

// ErrorRate plots 5xx responses as a percentage of all requests.
func ErrorRate() *timeseries.PanelBuilder {
	return timeseriesBase("Error Rate %", "HTTP 5xx error rate as percentage of total requests", "percent", StatWidth).
		WithTarget(query("catalog:http_errors:rate5m / catalog:http_requests:rate5m * 100", "error %", "A")).
		Thresholds(warnCrit(1, 5)).
		ColorScheme(byThreshold())
}

// InFlight plots concurrent requests next to recovered panics.
func InFlight() *timeseries.PanelBuilder {
	return timeseriesBase("In Flight", "Concurrent HTTP requests and recovered panics", "short", StatWidth).
		WithTarget(query("sum("+sel("catalog_http_requests_in_flight")+")", "in flight", "A")).
		WithTarget(query("sum(increase("+over("catalog_http_panics_recovered_total", "5m")+"))", "panics (5m)", "B"))
}

func percentiles(title, description, histogram string) *timeseries.PanelBuilder {
	return timeseriesBase(title, description, "s", StatWidth).
		WithTarget(query(Quantile("0.50", histogram), "p50", "A")).
		WithTarget(query(Quantile("0.95", histogram), "p95", "B")).
		WithTarget(query(Quantile("0.99", histogram), "p99", "C")).
		Legend(meanMaxLegend())
}
