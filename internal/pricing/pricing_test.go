package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

type staticRates map[string]decimal.Decimal

func (s staticRates) Rate(_ context.Context, base, target string) (decimal.Decimal, error) {
	r, ok := s[base+"/"+target]
	if !ok {
		return decimal.Zero, errors.New("no such pair")
	}
	return r, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func flatMarkup(amount string) pricing.MarkupPolicy {
	return pricing.MarkupFunc(func(decimal.Decimal, string) decimal.Decimal {
		return dec(amount)
	})
}

func TestTransformer_Price_DiscountExample(t *testing.T) {
	t.Parallel()

	tr := pricing.NewTransformer(staticRates{"USD/ETB": dec("150")}, flatMarkup("5"))

	view, err := tr.Price(context.Background(), dec("100"), decPtr("80"), "ET", "ETB")
	require.NoError(t, err)

	assert.Equal(t, "ETB", view.Currency)
	assert.True(t, view.IsDiscounted)
	require.NotNil(t, view.OriginalPrice)
	assert.Equal(t, "15750", view.OriginalPrice.String())
	assert.Equal(t, "12750", view.CurrentPrice.String())
	assert.Equal(t, "3000", view.DiscountAmount.String())
	assert.Equal(t, 19, view.DiscountPercentage)

	assert.Equal(t, "ETB 12,750.00", view.Display.CurrentPrice)
	assert.Equal(t, "ETB 15,750.00", view.Display.OriginalPrice)
	assert.Equal(t, "-19%", view.Display.DiscountLabel)
	assert.Equal(t, "Save ETB 3,000.00", view.Display.Savings)
}

func TestTransformer_Price(t *testing.T) {
	t.Parallel()

	rates := staticRates{
		"USD/ETB": dec("150"),
		"USD/EUR": dec("0.9137"),
		"USD/XAF": dec("0"),
	}

	tests := []struct {
		name           string
		price          string
		promo          *decimal.Decimal
		currency       string
		markup         pricing.MarkupPolicy
		wantCurrent    string
		wantOriginal   string
		wantDiscounted bool
		wantPct        int
		wantErr        error
	}{
		{
			name:        "no promo",
			price:       "100",
			currency:    "ETB",
			markup:      flatMarkup("5"),
			wantCurrent: "15750",
		},
		{
			name:        "promo equal to price is ignored",
			price:       "100",
			promo:       decPtr("100"),
			currency:    "ETB",
			markup:      flatMarkup("5"),
			wantCurrent: "15750",
		},
		{
			name:        "promo above price is ignored",
			price:       "100",
			promo:       decPtr("120"),
			currency:    "ETB",
			markup:      flatMarkup("5"),
			wantCurrent: "15750",
		},
		{
			name:        "zero promo is ignored",
			price:       "100",
			promo:       decPtr("0"),
			currency:    "ETB",
			markup:      flatMarkup("0"),
			wantCurrent: "15000",
		},
		{
			name:        "identity rate for base currency",
			price:       "19.99",
			currency:    "usd",
			markup:      flatMarkup("1.005"),
			wantCurrent: "21.00",
		},
		{
			name:     "rounds base and markup separately",
			price:    "10.005",
			currency: "EUR",
			markup:   flatMarkup("0.005"),
			// 10.005*0.9137 = 9.1415685 -> 9.14; 0.005*0.9137 = 0.0045685 -> 0.00
			wantCurrent: "9.14",
		},
		{
			name:           "discount percentage floors",
			price:          "3",
			promo:          decPtr("2"),
			currency:       "USD",
			markup:         flatMarkup("0"),
			wantCurrent:    "2",
			wantOriginal:   "3",
			wantDiscounted: true,
			wantPct:        33,
		},
		{
			name:     "missing rate",
			price:    "10",
			currency: "JPY",
			markup:   flatMarkup("0"),
			wantErr:  pricing.ErrRateUnavailable,
		},
		{
			name:     "non-positive rate",
			price:    "10",
			currency: "XAF",
			markup:   flatMarkup("0"),
			wantErr:  pricing.ErrRateUnavailable,
		},
		{
			name:     "negative price",
			price:    "-1",
			currency: "USD",
			markup:   flatMarkup("0"),
			wantErr:  pricing.ErrInvalidPrice,
		},
		{
			name:     "unknown currency",
			price:    "1",
			currency: "ZZZ",
			markup:   flatMarkup("0"),
			wantErr:  pricing.ErrUnknownCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := pricing.NewTransformer(rates, tt.markup)
			view, err := tr.Price(context.Background(), dec(tt.price), tt.promo, "US", tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.True(t, view.CurrentPrice.Equal(dec(tt.wantCurrent)),
				"current price: got %s want %s", view.CurrentPrice, tt.wantCurrent)
			assert.Equal(t, tt.wantDiscounted, view.IsDiscounted)
			assert.Equal(t, tt.wantPct, view.DiscountPercentage)
			if tt.wantOriginal == "" {
				assert.Nil(t, view.OriginalPrice)
				return
			}
			require.NotNil(t, view.OriginalPrice)
			assert.True(t, view.OriginalPrice.Equal(dec(tt.wantOriginal)))
			assert.True(t, view.CurrentPrice.LessThanOrEqual(*view.OriginalPrice))
		})
	}
}

func TestTransformer_Price_Idempotent(t *testing.T) {
	t.Parallel()

	tr := pricing.NewTransformer(staticRates{"USD/ETB": dec("157.3321")},
		pricing.NewTieredMarkup(map[string][]pricing.Tier{
			"ET": {{UpTo: dec("50"), Flat: dec("2"), Percent: dec("10")}, {Flat: dec("4"), Percent: dec("7.5")}},
		}))

	a, err := tr.Price(context.Background(), dec("129.99"), decPtr("99.49"), "ET", "ETB")
	require.NoError(t, err)
	b, err := tr.Price(context.Background(), dec("129.99"), decPtr("99.49"), "ET", "ETB")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTransformer_Price_PromoIntoHigherMarkupTier(t *testing.T) {
	t.Parallel()

	// The promo lands in a band with a larger flat markup so its final
	// amount would exceed the undiscounted one.
	markup := pricing.NewTieredMarkup(map[string][]pricing.Tier{
		pricing.DefaultCountry: {
			{UpTo: dec("58"), Flat: dec("10")},
			{Flat: dec("0")},
		},
	})
	tr := pricing.NewTransformer(nil, markup)

	view, err := tr.Price(context.Background(), dec("60"), decPtr("55"), "US", "USD")
	require.NoError(t, err)
	assert.False(t, view.IsDiscounted)
	assert.Nil(t, view.OriginalPrice)
	assert.True(t, view.CurrentPrice.Equal(dec("60")))
}

func TestTransformer_Transform(t *testing.T) {
	t.Parallel()

	tr := pricing.NewTransformer(staticRates{"USD/ETB": dec("150")}, flatMarkup("5"))
	raw := &domain.RawCatalogItem{
		ID:         "p-1",
		Title:      "Kettle",
		Price:      dec("100"),
		PromoPrice: decPtr("80"),
		Stock:      0,
	}

	item, err := tr.Transform(context.Background(), "alpha", raw, "ET", "ETB")
	require.NoError(t, err)
	assert.Equal(t, "p-1", item.ID)
	assert.Equal(t, "alpha", item.Provider)
	assert.False(t, item.InStock)
	assert.Equal(t, 19, item.Pricing.DiscountPercentage)

	_, err = tr.Transform(context.Background(), "alpha", raw, "JP", "JPY")
	require.ErrorIs(t, err, pricing.ErrRateUnavailable)
	assert.Contains(t, err.Error(), "p-1")
}

func TestParseCurrency(t *testing.T) {
	t.Parallel()

	code, err := pricing.ParseCurrency("etb")
	require.NoError(t, err)
	assert.Equal(t, "ETB", code)

	_, err = pricing.ParseCurrency("E1B")
	require.ErrorIs(t, err, pricing.ErrUnknownCurrency)
	assert.NotErrorIs(t, err, pricing.ErrInvalidPrice, "a bad code is not a bad price")
}

func TestTransformer_TransformAt(t *testing.T) {
	t.Parallel()

	var lookups int
	rates := pricing.NewTransformer(countingRates(&lookups, dec("150")), flatMarkup("5"))
	raw := &domain.RawCatalogItem{ID: "p-2", Price: dec("100"), PromoPrice: decPtr("80"), Stock: 3}

	want, err := rates.Transform(context.Background(), "beta", raw, "ET", "ETB")
	require.NoError(t, err)
	require.Equal(t, 1, lookups)

	rate, err := rates.Rate(context.Background(), "etb")
	require.NoError(t, err)
	got, err := rates.TransformAt("beta", raw, rate, "ET", "ETB")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 2, lookups, "TransformAt never looks a rate up")

	tests := []struct {
		name     string
		raw      domain.RawCatalogItem
		rate     decimal.Decimal
		currency string
		wantErr  error
	}{
		{name: "zero rate", raw: *raw, rate: decimal.Zero, currency: "ETB", wantErr: pricing.ErrRateUnavailable},
		{name: "negative price", raw: domain.RawCatalogItem{ID: "p-3", Price: dec("-2")}, rate: rate, currency: "ETB", wantErr: pricing.ErrInvalidPrice},
		{name: "bad currency", raw: *raw, rate: rate, currency: "E1B", wantErr: pricing.ErrUnknownCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := rates.TransformAt("beta", &tt.raw, tt.rate, "ET", tt.currency)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func countingRates(n *int, rate decimal.Decimal) pricing.ExchangeRateLookup {
	return lookupFunc(func(context.Context, string, string) (decimal.Decimal, error) {
		*n++
		return rate, nil
	})
}

type lookupFunc func(ctx context.Context, base, target string) (decimal.Decimal, error)

func (f lookupFunc) Rate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	return f(ctx, base, target)
}
