// Package domain defines the core business types for the catalog aggregator.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProviderDescriptor identifies one upstream catalog provider for a single
// fan-out. Share is the provider's slice of the requested page size.
type ProviderDescriptor struct {
	Name             string `json:"name"`
	Share            int    `json:"share"`
	CategoryOverride string `json:"category_override,omitempty"`
}

// RawCatalogItem is an upstream record as returned by a provider, with
// prices in the provider reference currency. It is consumed by the pricing
// transform and never retained.
type RawCatalogItem struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Brand       string           `json:"brand,omitempty"`
	Category    string           `json:"category,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	PromoPrice  *decimal.Decimal `json:"promo_price,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Rating      float64          `json:"rating,omitempty"`
	ReviewCount int              `json:"review_count,omitempty"`
	Stock       int              `json:"stock"`
}

// PriceDisplay holds the display-ready strings for a PricingView.
type PriceDisplay struct {
	CurrentPrice  string `json:"current_price"`
	OriginalPrice string `json:"original_price,omitempty"`
	Discount      string `json:"discount,omitempty"`
	DiscountLabel string `json:"discount_label,omitempty"`
	Savings       string `json:"savings,omitempty"`
}

// PricingView is a price converted into the customer's currency with the
// country markup applied. OriginalPrice is only set when IsDiscounted is
// true, and CurrentPrice never exceeds it.
type PricingView struct {
	Currency           string           `json:"currency"`
	CurrentPrice       decimal.Decimal  `json:"current_price"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	DiscountAmount     decimal.Decimal  `json:"discount_amount"`
	DiscountPercentage int              `json:"discount_percentage"`
	IsDiscounted       bool             `json:"is_discounted"`
	Display            PriceDisplay     `json:"display"`
}

// CatalogItem is a transformed, customer-facing catalog entry.
type CatalogItem struct {
	ID          string      `json:"id"`
	Provider    string      `json:"provider"`
	Title       string      `json:"title"`
	Brand       string      `json:"brand,omitempty"`
	Category    string      `json:"category,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Rating      float64     `json:"rating,omitempty"`
	ReviewCount int         `json:"review_count,omitempty"`
	Stock       int         `json:"stock"`
	InStock     bool        `json:"in_stock"`
	Pricing     PricingView `json:"pricing"`
}

// NewCatalogItem builds a CatalogItem from a raw upstream record and its
// computed pricing.
func NewCatalogItem(provider string, raw *RawCatalogItem, pricing PricingView) CatalogItem {
	return CatalogItem{
		ID:          raw.ID,
		Provider:    provider,
		Title:       raw.Title,
		Brand:       raw.Brand,
		Category:    raw.Category,
		Images:      raw.Images,
		Rating:      raw.Rating,
		ReviewCount: raw.ReviewCount,
		Stock:       raw.Stock,
		InStock:     raw.Stock > 0,
		Pricing:     pricing,
	}
}

// SearchStats summarizes how a search fan-out went.
type SearchStats struct {
	ProvidersQueried   int   `json:"providers_queried"`
	ProvidersSucceeded int   `json:"providers_succeeded"`
	ProvidersFailed    int   `json:"providers_failed"`
	ProvidersTimedOut  int   `json:"providers_timed_out"`
	ItemsDropped       int   `json:"items_dropped"`
	DurationMs         int64 `json:"duration_ms"`
	Coalesced          bool  `json:"coalesced"`
}

// AggregatedResult is the merged outcome of one search across providers.
// Items are ordered by provider iteration order, then upstream order, with
// duplicate ids removed (first occurrence wins).
type AggregatedResult struct {
	Items []CatalogItem `json:"items"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Stats SearchStats   `json:"stats"`
}

// Clone returns a copy of r whose Items slice can be modified without
// affecting other holders of r.
func (r AggregatedResult) Clone() AggregatedResult {
	out := r
	out.Items = make([]CatalogItem, len(r.Items))
	copy(out.Items, r.Items)
	return out
}

// ExchangeRate is one stored base->target conversion rate.
type ExchangeRate struct {
	Base      string          `json:"base"`
	Target    string          `json:"target"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}
