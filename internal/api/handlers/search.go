// Package handlers implements the catalog aggregator HTTP API. Search,
// provider and rate operations are huma operations; the probes are plain
// Echo handlers.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/catalog-aggregator/internal/aggregator"
	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	"github.com/donaldgifford/catalog-aggregator/internal/provider"
	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// Searcher runs searches and detail lookups across providers.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.AggregatedResult, error)
	Product(ctx context.Context, req domain.DetailRequest) (domain.CatalogItem, error)
}

// SearchHandler serves catalog searches and item details.
type SearchHandler struct {
	svc Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc Searcher) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		Query     string   `json:"query,omitempty" maxLength:"256" doc:"Free-text query" example:"samsung galaxy"`
		Category  string   `json:"category,omitempty" maxLength:"128" doc:"Category filter" example:"phones"`
		Brand     string   `json:"brand,omitempty" maxLength:"128" doc:"Brand filter" example:"samsung"`
		Providers []string `json:"providers,omitempty" doc:"Only query these providers"`
		Page      int      `json:"page,omitempty" minimum:"0" doc:"Zero-based page number"`
		Size      int      `json:"size,omitempty" minimum:"0" doc:"Page size (default and cap are configured)" example:"20"`
		Country   string   `json:"country,omitempty" doc:"ISO 3166-1 alpha-2 country" example:"ET"`
		Currency  string   `json:"currency,omitempty" doc:"ISO 4217 currency" example:"ETB"`
	}
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body domain.AggregatedResult
}

// Search fans the query out to every provider. Provider failures shrink the
// result but never fail the request.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	res, err := h.svc.Search(ctx, domain.SearchRequest{
		Page:      input.Body.Page,
		Size:      input.Body.Size,
		Query:     input.Body.Query,
		Category:  input.Body.Category,
		Brand:     input.Body.Brand,
		Providers: input.Body.Providers,
		Country:   input.Body.Country,
		Currency:  input.Body.Currency,
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &SearchOutput{Body: res}, nil
}

// ProductInput identifies one provider item.
type ProductInput struct {
	Provider string `path:"provider" doc:"Provider name" example:"alpha"`
	ID       string `path:"id" maxLength:"256" doc:"Provider item id" example:"sku-123"`
	Country  string `query:"country" doc:"ISO 3166-1 alpha-2 country" example:"ET"`
	Currency string `query:"currency" doc:"ISO 4217 currency" example:"ETB"`
}

// ProductOutput is a single priced item.
type ProductOutput struct {
	Body domain.CatalogItem
}

// Product looks up one item from one provider.
func (h *SearchHandler) Product(ctx context.Context, input *ProductInput) (*ProductOutput, error) {
	item, err := h.svc.Product(ctx, domain.DetailRequest{
		Provider: input.Provider,
		ItemID:   input.ID,
		Country:  input.Country,
		Currency: input.Currency,
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &ProductOutput{Body: item}, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-catalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search all providers",
		Description: "Fans the query out to every active provider and returns the merged, priced items.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers/{provider}/products/{id}",
		Summary:     "Get one provider item",
		Description: "Fetches a single item from one provider and prices it for the customer.",
		Tags:        []string{"search"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		},
	}, h.Product)
}

// toHTTPError maps service errors onto HTTP statuses.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, aggregator.ErrInvalidRequest):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, aggregator.ErrNoProviders):
		return huma.Error422UnprocessableEntity("no matching provider is configured")
	case errors.Is(err, provider.ErrUnknownProvider),
		errors.Is(err, provider.ErrItemNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, pricing.ErrRateUnavailable),
		errors.Is(err, pricing.ErrInvalidPrice),
		errors.Is(err, pricing.ErrUnknownCurrency):
		return huma.Error422UnprocessableEntity(err.Error())
	case resilience.IsRejection(err):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, context.Canceled):
		return huma.NewError(499, "client closed request")
	default:
		return huma.Error502BadGateway(err.Error())
	}
}
