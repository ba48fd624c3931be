package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/gauge"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// HealthzStat shows the liveness probe result.
func HealthzStat() *stat.PanelBuilder {
	return probeStat("Healthz", "Health check status (1 = ok, 0 = failing)", "catalog_healthz_up")
}

// ReadyzStat shows whether postgres and redis are reachable.
func ReadyzStat() *stat.PanelBuilder {
	return probeStat("Readyz", "Readiness of postgres and redis (1 = ready, 0 = not ready)", "catalog_readyz_up")
}

func probeStat(title, description, metric string) *stat.PanelBuilder {
	return statBase(title, description, StatHeight, StatWidth).
		WithTarget(query(metric, "", "A")).
		Thresholds(upIsGood()).
		ColorMode(common.BigValueColorModeBackground).
		TextMode(common.BigValueTextModeValue)
}

// OpenBreakersGauge shows the share of providers whose circuit breaker is
// open or half open.
func OpenBreakersGauge() *gauge.PanelBuilder {
	state := sel("catalog_circuit_breaker_state")
	return gauge.NewPanelBuilder().
		Title("Breakers Not Closed %").
		Description("Providers with an open or half-open circuit breaker").
		Datasource(datasource()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(query("(count("+state+" > 0) or vector(0)) / count("+state+") * 100", "", "A")).
		Unit("percent").
		Min(0).
		Max(100).
		Thresholds(warnCrit(25, 50)).
		ColorScheme(byThreshold())
}

// UptimeStat shows seconds since the process started.
func UptimeStat() *stat.PanelBuilder {
	return statBase("Uptime", "Time since process start", StatHeight, StatWidth).
		WithTarget(query("time() - "+sel("process_start_time_seconds"), "", "A")).
		Unit("s").
		Thresholds(thresholds("green"))
}
