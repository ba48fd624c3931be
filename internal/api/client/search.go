package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// SearchParams is the body of a search request. Zero fields take the
// server defaults.
type SearchParams struct {
	Query     string   `json:"query,omitempty"`
	Category  string   `json:"category,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	Providers []string `json:"providers,omitempty"`
	Page      int      `json:"page,omitempty"`
	Size      int      `json:"size,omitempty"`
	Country   string   `json:"country,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

// Search runs a search across every provider.
func (c *Client) Search(ctx context.Context, params *SearchParams) (*domain.AggregatedResult, error) {
	var res domain.AggregatedResult
	if err := c.post(ctx, "/api/v1/search", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Product fetches one item from one provider, priced for country and
// currency. Empty country or currency take the server defaults.
func (c *Client) Product(
	ctx context.Context,
	provider, id, country, currency string,
) (*domain.CatalogItem, error) {
	q := url.Values{}
	if country != "" {
		q.Set("country", country)
	}
	if currency != "" {
		q.Set("currency", currency)
	}

	path := "/api/v1/providers/" + url.PathEscape(provider) + "/products/" + url.PathEscape(id)

	var item domain.CatalogItem
	if err := c.get(ctx, path, q, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
