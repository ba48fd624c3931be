// Package panels builds the Grafana panels of the catalog overview
// dashboard. Every query is scoped to the service's scrape job.
package panels

import (
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// Job is the Prometheus job label the service is scraped under.
const Job = `job="catalog-aggregator"`

// Grid sizes on Grafana's 24-column layout.
const (
	StatWidth  = 6
	StatHeight = 4
	TSHeight   = 8
	ThirdWidth = 8
	FullWidth  = 24
)

// sel returns metric restricted to the service's job.
func sel(metric string) string {
	return metric + "{" + Job + "}"
}

// over returns metric's job-scoped range selector over window.
func over(metric, window string) string {
	return sel(metric) + "[" + window + "]"
}

// Quantile returns a histogram_quantile expression over the 5m bucket rate
// of metric, grouped by le plus any extra labels.
func Quantile(q, metric string, by ...string) string {
	group := strings.Join(append([]string{"le"}, by...), ", ")
	return "histogram_quantile(" + q + ", sum(rate(" + over(metric+"_bucket", "5m") + ")) by (" + group + "))"
}

func datasource() dashboard.DataSourceRef {
	return dashboard.DataSourceRef{
		Type: cog.ToPtr("prometheus"),
		Uid:  cog.ToPtr("${datasource}"),
	}
}

func query(expr, legend, refID string) *prometheus.DataqueryBuilder {
	return prometheus.NewDataqueryBuilder().
		Expr(expr).
		LegendFormat(legend).
		RefId(refID)
}

type step struct {
	at    float64
	color string
}

// thresholds starts at base and switches color at each step.
func thresholds(base string, steps ...step) cog.Builder[dashboard.ThresholdsConfig] {
	ts := make([]dashboard.Threshold, 0, len(steps)+1)
	ts = append(ts, dashboard.Threshold{Color: base})
	for _, s := range steps {
		ts = append(ts, dashboard.Threshold{Value: cog.ToPtr(s.at), Color: s.color})
	}
	return dashboard.NewThresholdsConfigBuilder().
		Mode(dashboard.ThresholdsModeAbsolute).
		Steps(ts)
}

// warnCrit is green below warn, yellow from warn and red from crit.
func warnCrit(warn, crit float64) cog.Builder[dashboard.ThresholdsConfig] {
	return thresholds("green", step{warn, "yellow"}, step{crit, "red"})
}

// upIsGood is red until the value reaches 1.
func upIsGood() cog.Builder[dashboard.ThresholdsConfig] {
	return thresholds("red", step{1, "green"})
}

func byThreshold() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdThresholds)
}

func palette() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdPaletteClassic)
}

// meanMaxLegend renders the legend as a table with mean and max columns.
func meanMaxLegend() *common.VizLegendOptionsBuilder {
	return common.NewVizLegendOptionsBuilder().
		DisplayMode(common.LegendDisplayModeTable).
		Placement(common.LegendPlacementBottom).
		Calcs([]string{"mean", "max"})
}

func allSeriesTooltip() *common.VizTooltipOptionsBuilder {
	return common.NewVizTooltipOptionsBuilder().
		Mode(common.TooltipDisplayModeMulti).
		Sort(common.SortOrderDescending)
}

func timeseriesBase(title, description, unit string, span uint32) *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(datasource()).
		Height(TSHeight).
		Span(span).
		Unit(unit).
		FillOpacity(10).
		LineWidth(2).
		DrawStyle(common.GraphDrawStyleLine).
		Thresholds(thresholds("green")).
		ColorScheme(palette()).
		Tooltip(allSeriesTooltip())
}

func statBase(title, description string, height, span uint32) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(datasource()).
		Height(height).
		Span(span).
		ColorScheme(byThreshold()).
		GraphMode(common.BigValueGraphModeNone)
}
