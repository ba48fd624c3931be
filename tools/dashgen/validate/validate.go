// Package validate checks generated dashboards and rules for PromQL that
// does not parse or that references metrics the service never exports.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation findings. Errors fail generation; warnings
// are reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// histogram and summary series share their family name.
var seriesSuffixes = []string{"_bucket", "_sum", "_count"}

// Expr parses expr and checks every vector selector against known.
// where identifies the expression in messages.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: parsing %q: %v", where, expr, err))
		return res
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		if vs.Name == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: selector without metric name in %q", where, expr))
			return nil
		}
		if !isKnown(vs.Name, known) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown metric %q", where, vs.Name))
		}
		return nil
	})
	return res
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range seriesSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// panelJSON is the subset of a serialized panel the validator reads.
type panelJSON struct {
	Title   string      `json:"title"`
	Panels  []panelJSON `json:"panels"`
	Targets []struct {
		RefID string `json:"refId"`
		Expr  string `json:"expr"`
	} `json:"targets"`
}

// Dashboard validates the query of every panel target in dash, including
// panels nested in rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	raw, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("marshaling dashboard: %v", err))
		return res
	}
	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decoding dashboard: %v", err))
		return res
	}

	for _, p := range doc.Panels {
		res.merge(panel(p, known))
	}
	return res
}

func panel(p panelJSON, known map[string]bool) Result {
	var res Result
	if len(p.Panels) > 0 {
		for _, inner := range p.Panels {
			res.merge(panel(inner, known))
		}
		return res
	}
	for _, t := range p.Targets {
		where := fmt.Sprintf("panel %q target %s", p.Title, t.RefID)
		if strings.TrimSpace(t.Expr) == "" {
			res.Warnings = append(res.Warnings, where+": empty expression")
			continue
		}
		res.merge(Expr(where, t.Expr, known))
	}
	return res
}
