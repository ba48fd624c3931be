package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/catalog-aggregator/tools/dashgen/dashboards"
	"github.com/donaldgifford/catalog-aggregator/tools/dashgen/rules"
	"github.com/donaldgifford/catalog-aggregator/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	dash, err := dashboards.BuildOverview().Build()
	require.NoError(t, err)

	require.NotNil(t, dash.Uid)
	assert.Equal(t, "catalog-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Catalog Overview", *dash.Title)

	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	assert.Len(t, dash.Panels, 7)

	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 23, totalPanels)

	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "catalog-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "catalog-recording", group.Name)

	for _, rule := range group.Rules {
		assert.True(t, KnownMetrics[rule.Record], "recording rule %s missing from KnownMetrics", rule.Record)
		res := validate.Expr(rule.Record, rule.Expr, KnownMetrics)
		assert.True(t, res.Ok(), "rule %s: %v", rule.Record, res.Errors)
	}

	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "catalog-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	require.Len(t, cr.Spec.Groups[0].Rules, 8)

	var names []string
	for rule := range cr.All() {
		names = append(names, rule.Name())
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)

		res := validate.Expr(rule.Alert, rule.Expr, KnownMetrics)
		assert.True(t, res.Ok(), "alert %s: %v", rule.Alert, res.Errors)
	}
	assert.Equal(t, []string{
		"CatalogDown",
		"CatalogReadinessDown",
		"CatalogHighErrorRate",
		"CatalogCircuitOpen",
		"CatalogAllProvidersFailing",
		"CatalogPricingDrops",
		"CatalogRateRefreshFailing",
		"CatalogEventPublishFailures",
	}, names)
}

func TestRun_WritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, false))

	artifacts, res, err := generate(cfg)
	require.NoError(t, err)
	require.True(t, res.Ok())
	require.Len(t, artifacts, 3)

	for _, a := range artifacts {
		written, err := os.ReadFile(filepath.Join(dir, a.path))
		require.NoError(t, err, "reading %s", a.path)
		assert.Equal(t, string(a.data), string(written), "%s differs between runs", a.path)
		if strings.HasSuffix(a.path, ".yaml") {
			assert.True(t, strings.HasPrefix(string(written), generatedHeader))
		}
	}
}

func TestRun_ValidateOnlyWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, run(Config{OutputDir: dir, RulesEnabled: true}, true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
