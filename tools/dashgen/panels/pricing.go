package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PricingDrops plots items removed from results because they could not be
// priced.
func PricingDrops() *timeseries.PanelBuilder {
	return timeseriesBase("Dropped Items", "Items dropped because pricing failed, by reason", "short", ThirdWidth).
		WithTarget(query("catalog:pricing_drops:rate5m", "{{reason}}", "A")).
		Thresholds(warnCrit(0.1, 1)).
		ColorScheme(byThreshold())
}

// RateCacheLookups plots exchange rate lookups by cache result.
func RateCacheLookups() *timeseries.PanelBuilder {
	expr := "sum by (result) (rate(" + over("catalog_rate_cache_lookups_total", "5m") + "))"
	return timeseriesBase("Rate Lookups", "Exchange rate lookups by cache result", "reqps", ThirdWidth).
		WithTarget(query(expr, "{{result}}", "A"))
}

// RatesLoaded shows the size of the in-memory rate snapshot with the last
// hour of refreshes and refresh errors.
func RatesLoaded() *stat.PanelBuilder {
	hourly := func(counter string) string {
		return "sum(increase(" + over(counter, "1h") + "))"
	}
	return statBase("Rates Loaded", "Exchange rates in the snapshot and refresh errors in the last hour", TSHeight, ThirdWidth).
		WithTarget(query("max("+sel("catalog_rates_loaded")+")", "rates", "A")).
		WithTarget(query(hourly("catalog_rate_refresh_total"), "refreshes", "B")).
		WithTarget(query(hourly("catalog_rate_refresh_errors_total"), "refresh errors", "C")).
		Thresholds(thresholds("green")).
		ColorScheme(palette())
}

// EventsPublished plots published and failed search events.
func EventsPublished() *timeseries.PanelBuilder {
	perSecond := func(counter string) string {
		return "sum(rate(" + over(counter, "5m") + "))"
	}
	return timeseriesBase("Events", "Search events published and failed per second", "ops", FullWidth).
		WithTarget(query(perSecond("catalog_events_published_total"), "published", "A")).
		WithTarget(query(perSecond("catalog_event_publish_failures_total"), "failed", "B")).
		Legend(meanMaxLegend())
}
