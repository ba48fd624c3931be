package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// GetRate returns the exchange rate the server prices base->target with.
func (c *Client) GetRate(ctx context.Context, base, target string) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	path := "/api/v1/rates/" + url.PathEscape(base) + "/" + url.PathEscape(target)
	if err := c.get(ctx, path, nil, &rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

// ListRates returns the rates the server holds in memory, optionally only
// those from base.
func (c *Client) ListRates(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	var q url.Values
	if base != "" {
		q = url.Values{"base": {base}}
	}
	var resp struct {
		Rates []domain.ExchangeRate `json:"rates"`
	}
	if err := c.get(ctx, "/api/v1/rates", q, &resp); err != nil {
		return nil, err
	}
	return resp.Rates, nil
}
