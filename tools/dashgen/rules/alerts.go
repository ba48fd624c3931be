package rules

func alert(name, expr, forDuration, severity, summary, description string) Rule {
	return Rule{
		Alert:  name,
		Expr:   expr,
		For:    forDuration,
		Labels: map[string]string{"severity": severity},
		Annotations: map[string]string{
			"summary":     summary,
			"description": description,
		},
	}
}

// AlertRules returns a PrometheusRule CR containing alert rules for
// catalog-aggregator operational monitoring.
func AlertRules() PrometheusRule {
	return newPrometheusRule("catalog-alerts", RuleGroup{
		Name: "catalog-alerts",
		Rules: []Rule{
			alert("CatalogDown",
				`absent(up{job="catalog-aggregator"})`, "2m", "critical",
				"Catalog aggregator is down",
				"The catalog-aggregator job has been absent for more than 2 minutes."),
			alert("CatalogReadinessDown",
				`catalog_readyz_up == 0`, "2m", "critical",
				"Catalog aggregator readiness check is failing",
				"Postgres or redis has been unreachable for more than 2 minutes."),
			alert("CatalogHighErrorRate",
				`catalog:http_errors:rate5m / catalog:http_requests:rate5m > 0.05`, "5m", "warning",
				"High HTTP error rate on the catalog aggregator",
				"More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes."),
			alert("CatalogCircuitOpen",
				`max by (provider) (catalog_circuit_breaker_state) == 1`, "5m", "warning",
				"Circuit breaker open for {{ $labels.provider }}",
				"The breaker for {{ $labels.provider }} has been open for 5 minutes; its results are missing from searches."),
			alert("CatalogAllProvidersFailing",
				`catalog:search_failures:rate5m > 0`, "5m", "critical",
				"Searches are returning no results",
				"Every provider has failed or timed out for some searches over the last 5 minutes."),
			alert("CatalogPricingDrops",
				`sum(catalog:pricing_drops:rate5m) > 0.5`, "10m", "warning",
				"Items are being dropped by pricing",
				"More than 0.5 items/s could not be priced for 10 minutes. Check exchange rate coverage."),
			alert("CatalogRateRefreshFailing",
				`increase(catalog_rate_refresh_errors_total[15m]) > 0`, "15m", "warning",
				"Exchange rate refresh is failing",
				"The rate snapshot has not reloaded cleanly for 15 minutes and may be stale."),
			alert("CatalogEventPublishFailures",
				`increase(catalog_event_publish_failures_total[5m]) > 0`, "5m", "warning",
				"Search event publishing is failing",
				"Kafka or webhook delivery of search events has failed in the last 5 minutes."),
		},
	})
}
