// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/catalog-aggregator/tools/dashgen/panels"
)

// UID is the stable dashboard identifier.
const UID = "catalog-overview"

// BuildOverview constructs the Catalog Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Catalog Overview").
		Uid(UID).
		Tags([]string{"catalog", "catalog-aggregator"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.OpenBreakersGauge()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()).
		WithPanel(panels.InFlight()))

	b.WithRow(dashboard.NewRowBuilder("Providers").
		WithPanel(panels.ProviderCallRate()).
		WithPanel(panels.ProviderLatency()).
		WithPanel(panels.ProviderErrors()))

	b.WithRow(dashboard.NewRowBuilder("Resilience").
		WithPanel(panels.BreakerState()).
		WithPanel(panels.BreakerTransitions()).
		WithPanel(panels.BulkheadInFlight()).
		WithPanel(panels.Rejections()))

	b.WithRow(dashboard.NewRowBuilder("Search").
		WithPanel(panels.SearchLatency()).
		WithPanel(panels.ProvidersPerSearch()).
		WithPanel(panels.TotalFailures()).
		WithPanel(panels.Coalesced()))

	b.WithRow(dashboard.NewRowBuilder("Pricing & Rates").
		WithPanel(panels.PricingDrops()).
		WithPanel(panels.RateCacheLookups()).
		WithPanel(panels.RatesLoaded()))

	b.WithRow(dashboard.NewRowBuilder("Events").
		WithPanel(panels.EventsPublished()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
