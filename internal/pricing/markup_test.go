package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
)

func TestTieredMarkup(t *testing.T) {
	t.Parallel()

	m := pricing.NewTieredMarkup(map[string][]pricing.Tier{
		"et": {
			{Flat: dec("20"), Percent: dec("5")},
			{UpTo: dec("100"), Flat: dec("5")},
			{UpTo: dec("20"), Flat: dec("2")},
		},
		"default": {
			{UpTo: dec("10"), Percent: dec("10")},
		},
	})

	tests := []struct {
		name    string
		amount  string
		country string
		want    string
	}{
		{name: "lowest band", amount: "15", country: "ET", want: "2"},
		{name: "band bound is inclusive", amount: "20", country: "ET", want: "2"},
		{name: "middle band", amount: "80", country: "et", want: "5"},
		{name: "open-ended band", amount: "200", country: "ET", want: "30"},
		{name: "default rule", amount: "5", country: "US", want: "0.5"},
		{name: "last bounded tier extends past its bound", amount: "50", country: "US", want: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := m.Markup(dec(tt.amount), tt.country)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestTieredMarkup_NoRules(t *testing.T) {
	t.Parallel()

	m := pricing.NewTieredMarkup(nil)
	assert.True(t, m.Markup(dec("100"), "ET").IsZero())
}
