package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SearchLatency plots fan-out latency percentiles.
func SearchLatency() *timeseries.PanelBuilder {
	return percentiles("Search Latency", "End-to-end fan-out duration percentiles", "catalog_search_duration_seconds")
}

// ProvidersPerSearch plots the mean number of providers that succeeded and
// failed per search.
func ProvidersPerSearch() *timeseries.PanelBuilder {
	mean := func(histogram string) string {
		return "sum(rate(" + over(histogram+"_sum", "5m") + ")) / sum(rate(" + over(histogram+"_count", "5m") + "))"
	}
	return timeseriesBase("Providers per Search", "Average providers succeeding and failing per search", "short", StatWidth).
		WithTarget(query(mean("catalog_search_providers_succeeded"), "succeeded", "A")).
		WithTarget(query(mean("catalog_search_providers_failed"), "failed", "B"))
}

// TotalFailures counts searches where no provider contributed.
func TotalFailures() *stat.PanelBuilder {
	return statBase("Total Failures (1h)", "Searches in which every provider failed or timed out", TSHeight, StatWidth).
		WithTarget(query("sum(increase("+over("catalog_search_total_failures_total", "1h")+"))", "", "A")).
		Thresholds(warnCrit(1, 10)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// Coalesced plots requests that joined an identical in-flight computation.
func Coalesced() *timeseries.PanelBuilder {
	expr := "sum by (group) (rate(" + over("catalog_coalesced_requests_total", "5m") + "))"
	return timeseriesBase("Coalesced Requests", "Requests served by a shared in-flight computation", "reqps", StatWidth).
		WithTarget(query(expr, "{{group}}", "A"))
}
