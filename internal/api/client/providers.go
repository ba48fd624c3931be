package client

import (
	"context"

	"github.com/donaldgifford/catalog-aggregator/internal/api/handlers"
)

// ListProviders returns the configured providers with their guard state.
func (c *Client) ListProviders(ctx context.Context) ([]handlers.ProviderStatus, error) {
	var resp struct {
		Providers []handlers.ProviderStatus `json:"providers"`
	}
	if err := c.get(ctx, "/api/v1/providers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Providers, nil
}
