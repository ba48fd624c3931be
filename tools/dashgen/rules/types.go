// Package rules builds the service's Prometheus recording and alerting
// rules, packaged as Prometheus Operator PrometheusRule resources.
package rules

import "iter"

// PrometheusRule is the monitoring.coreos.com/v1 custom resource.
type PrometheusRule struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata is the subset of object metadata the generator sets.
type Metadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// Spec lists the rule groups of a PrometheusRule.
type Spec struct {
	Groups []RuleGroup `yaml:"groups"`
}

// RuleGroup is evaluated as a unit at Interval, or the global interval
// when empty.
type RuleGroup struct {
	Name     string `yaml:"name"`
	Interval string `yaml:"interval,omitempty"`
	Rules    []Rule `yaml:"rules"`
}

// Rule is either a recording rule (Record set) or an alert (Alert set).
type Rule struct {
	Record      string            `yaml:"record,omitempty"`
	Alert       string            `yaml:"alert,omitempty"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// Name returns the recorded series or the alert name.
func (r Rule) Name() string {
	if r.Record != "" {
		return r.Record
	}
	return r.Alert
}

// All yields every rule in every group.
func (p PrometheusRule) All() iter.Seq[Rule] {
	return func(yield func(Rule) bool) {
		for _, g := range p.Spec.Groups {
			for _, r := range g.Rules {
				if !yield(r) {
					return
				}
			}
		}
	}
}

// newPrometheusRule wraps groups in a resource selected by the cluster's
// system Prometheus.
func newPrometheusRule(name string, groups ...RuleGroup) PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: Metadata{
			Name:   name,
			Labels: map[string]string{"prometheus": "system-rules-prometheus"},
		},
		Spec: Spec{Groups: groups},
	}
}
