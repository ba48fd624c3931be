// Package pricing converts provider reference-currency prices into the
// customer's currency with the country markup applied and discounts
// recomputed from the final amounts.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// Sentinel errors. Both are per-item failures during a search.
var (
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	ErrInvalidPrice    = errors.New("invalid price")
)

// DefaultBaseCurrency is the reference currency upstream prices are quoted in.
const DefaultBaseCurrency = "USD"

var hundred = decimal.NewFromInt(100)

// ExchangeRateLookup returns how many units of target one unit of base buys.
type ExchangeRateLookup interface {
	Rate(ctx context.Context, base, target string) (decimal.Decimal, error)
}

// MarkupPolicy returns the markup, in the base currency, for an amount sold
// into country.
type MarkupPolicy interface {
	Markup(amount decimal.Decimal, country string) decimal.Decimal
}

// MarkupFunc adapts a plain function to MarkupPolicy.
type MarkupFunc func(amount decimal.Decimal, country string) decimal.Decimal

// Markup implements MarkupPolicy.
func (f MarkupFunc) Markup(amount decimal.Decimal, country string) decimal.Decimal {
	return f(amount, country)
}

// Transformer prices raw catalog items.
type Transformer struct {
	base   string
	rates  ExchangeRateLookup
	markup MarkupPolicy
	lang   language.Tag
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithBaseCurrency sets the currency upstream prices are quoted in.
func WithBaseCurrency(code string) Option {
	return func(t *Transformer) {
		t.base = strings.ToUpper(code)
	}
}

// WithLanguage sets the locale used for display strings.
func WithLanguage(tag language.Tag) Option {
	return func(t *Transformer) {
		t.lang = tag
	}
}

// NewTransformer creates a Transformer. A nil markup policy means no markup.
func NewTransformer(rates ExchangeRateLookup, markup MarkupPolicy, opts ...Option) *Transformer {
	t := &Transformer{
		base:   DefaultBaseCurrency,
		rates:  rates,
		markup: markup,
		lang:   language.English,
	}
	if t.markup == nil {
		t.markup = MarkupFunc(func(decimal.Decimal, string) decimal.Decimal { return decimal.Zero })
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BaseCurrency returns the reference currency.
func (t *Transformer) BaseCurrency() string {
	return t.base
}

// Rate returns the base->target rate used for pricing. The identity rate is
// returned without a lookup when target is the base currency.
func (t *Transformer) Rate(ctx context.Context, target string) (decimal.Decimal, error) {
	target = strings.ToUpper(target)
	if target == t.base {
		return decimal.NewFromInt(1), nil
	}
	if t.rates == nil {
		return decimal.Zero, fmt.Errorf("%w: %s->%s: no rate source", ErrRateUnavailable, t.base, target)
	}

	rate, err := t.rates.Rate(ctx, t.base, target)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s->%s: %w", ErrRateUnavailable, t.base, target, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s->%s is %s", ErrRateUnavailable, t.base, target, rate)
	}
	return rate, nil
}

// Price converts price (and an optional promotional price) into currency
// for a customer in country, looking up the rate first.
func (t *Transformer) Price(
	ctx context.Context,
	price decimal.Decimal,
	promo *decimal.Decimal,
	country, currency string,
) (domain.PricingView, error) {
	if err := checkPrice(price); err != nil {
		return domain.PricingView{}, err
	}

	code, err := ParseCurrency(currency)
	if err != nil {
		return domain.PricingView{}, err
	}

	rate, err := t.Rate(ctx, code)
	if err != nil {
		return domain.PricingView{}, err
	}
	return t.PriceAt(price, promo, rate, country, code)
}

// PriceAt prices with a base->currency rate the caller already resolved,
// so a batch of items in one currency needs a single lookup.
//
// Each final amount is round2(amount*rate) + round2(markup(amount)*rate),
// rounding half-up before summing. The promo price only applies when it is
// positive and strictly below price. The discount percentage is the floor
// of discount/original*100 and is never taken from the upstream.
func (t *Transformer) PriceAt(
	price decimal.Decimal,
	promo *decimal.Decimal,
	rate decimal.Decimal,
	country, currency string,
) (domain.PricingView, error) {
	if err := checkPrice(price); err != nil {
		return domain.PricingView{}, err
	}

	code, err := ParseCurrency(currency)
	if err != nil {
		return domain.PricingView{}, err
	}
	if !rate.IsPositive() {
		return domain.PricingView{}, fmt.Errorf("%w: %s->%s is %s", ErrRateUnavailable, t.base, code, rate)
	}

	country = strings.ToUpper(country)
	finalOriginal := t.final(price, rate, country)

	effective := price
	if promo != nil && promo.IsPositive() && promo.LessThan(price) {
		effective = *promo
	}
	finalCurrent := t.final(effective, rate, country)

	f := newFormatter(t.lang, code)
	view := domain.PricingView{
		Currency:     code,
		CurrentPrice: finalOriginal,
	}

	if finalOriginal.GreaterThan(finalCurrent) {
		original := finalOriginal
		amount := finalOriginal.Sub(finalCurrent)
		pct, _ := amount.Mul(hundred).QuoRem(finalOriginal, 0)

		view.CurrentPrice = finalCurrent
		view.OriginalPrice = &original
		view.DiscountAmount = amount
		view.DiscountPercentage = int(pct.IntPart())
		view.IsDiscounted = true
		view.Display = domain.PriceDisplay{
			CurrentPrice:  f.money(finalCurrent),
			OriginalPrice: f.money(original),
			Discount:      f.money(amount),
			DiscountLabel: fmt.Sprintf("-%d%%", view.DiscountPercentage),
			Savings:       "Save " + f.money(amount),
		}
		return view, nil
	}

	view.Display = domain.PriceDisplay{CurrentPrice: f.money(finalOriginal)}
	return view, nil
}

// Transform prices raw and builds the customer-facing item.
func (t *Transformer) Transform(
	ctx context.Context,
	provider string,
	raw *domain.RawCatalogItem,
	country, currency string,
) (domain.CatalogItem, error) {
	view, err := t.Price(ctx, raw.Price, raw.PromoPrice, country, currency)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("pricing item %s: %w", raw.ID, err)
	}
	return domain.NewCatalogItem(provider, raw, view), nil
}

// TransformAt is Transform with a pre-resolved rate.
func (t *Transformer) TransformAt(
	provider string,
	raw *domain.RawCatalogItem,
	rate decimal.Decimal,
	country, currency string,
) (domain.CatalogItem, error) {
	view, err := t.PriceAt(raw.Price, raw.PromoPrice, rate, country, currency)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("pricing item %s: %w", raw.ID, err)
	}
	return domain.NewCatalogItem(provider, raw, view), nil
}

func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: negative price %s", ErrInvalidPrice, price)
	}
	return nil
}

func (t *Transformer) final(amount, rate decimal.Decimal, country string) decimal.Decimal {
	converted := amount.Mul(rate).Round(2)
	markup := t.markup.Markup(amount, country).Mul(rate).Round(2)
	return converted.Add(markup)
}
