package pricing

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCountry is the rule key used when a country has no rule of its own.
const DefaultCountry = "default"

// Tier is one price band of a markup rule. A zero UpTo marks an
// open-ended band.
type Tier struct {
	UpTo    decimal.Decimal
	Flat    decimal.Decimal
	Percent decimal.Decimal
}

// TieredMarkup charges flat + amount*percent/100 using the first tier whose
// UpTo is at or above the amount. The last tier of a rule always applies
// to amounts above every bound.
type TieredMarkup struct {
	rules map[string][]Tier
}

// NewTieredMarkup builds a markup policy from per-country rules. Country
// keys are case-insensitive; tiers are sorted by bound with open-ended
// tiers last.
func NewTieredMarkup(rules map[string][]Tier) *TieredMarkup {
	m := &TieredMarkup{rules: make(map[string][]Tier, len(rules))}
	for country, tiers := range rules {
		if len(tiers) == 0 {
			continue
		}
		sorted := slices.Clone(tiers)
		slices.SortStableFunc(sorted, func(a, b Tier) int {
			switch {
			case a.UpTo.IsZero() && b.UpTo.IsZero():
				return 0
			case a.UpTo.IsZero():
				return 1
			case b.UpTo.IsZero():
				return -1
			default:
				return a.UpTo.Cmp(b.UpTo)
			}
		})
		m.rules[ruleKey(country)] = sorted
	}
	return m
}

// Markup implements MarkupPolicy.
func (m *TieredMarkup) Markup(amount decimal.Decimal, country string) decimal.Decimal {
	tiers, ok := m.rules[ruleKey(country)]
	if !ok {
		tiers, ok = m.rules[DefaultCountry]
	}
	if !ok {
		return decimal.Zero
	}

	last := len(tiers) - 1
	for i, t := range tiers {
		if i == last || t.UpTo.IsZero() || t.UpTo.GreaterThanOrEqual(amount) {
			return t.Flat.Add(amount.Mul(t.Percent).Div(hundred))
		}
	}
	return decimal.Zero
}

func ruleKey(country string) string {
	if strings.EqualFold(country, DefaultCountry) {
		return DefaultCountry
	}
	return strings.ToUpper(strings.TrimSpace(country))
}
