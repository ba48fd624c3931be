package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("catalog-recording-rules", RuleGroup{
		Name: "catalog-recording",
		Rules: []Rule{
			{
				Record: "catalog:http_requests:rate5m",
				Expr:   `sum(rate(catalog_http_requests_total[5m]))`,
			},
			{
				Record: "catalog:http_errors:rate5m",
				Expr:   `sum(rate(catalog_http_requests_total{status=~"5.."}[5m]))`,
			},
			{
				Record: "catalog:provider_calls:rate5m",
				Expr:   `sum by (provider) (rate(catalog_provider_call_duration_seconds_count[5m]))`,
			},
			{
				Record: "catalog:provider_errors:rate5m",
				Expr:   `sum by (provider) (rate(catalog_provider_errors_total[5m]))`,
			},
			{
				Record: "catalog:search_failures:rate5m",
				Expr:   `sum(rate(catalog_search_total_failures_total[5m]))`,
			},
			{
				Record: "catalog:pricing_drops:rate5m",
				Expr:   `sum by (reason) (rate(catalog_pricing_dropped_items_total[5m]))`,
			},
		},
	})
}
