package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// ProviderCatalog lists the configured providers and their guards.
type ProviderCatalog interface {
	Descriptors() []domain.ProviderDescriptor
	Registry() *resilience.Registry
}

// ProvidersHandler reports provider health.
type ProvidersHandler struct {
	catalog ProviderCatalog
}

// NewProvidersHandler creates a new ProvidersHandler.
func NewProvidersHandler(c ProviderCatalog) *ProvidersHandler {
	return &ProvidersHandler{catalog: c}
}

// ProviderStatus is one provider with its resilience state.
type ProviderStatus struct {
	Name             string  `json:"name" example:"alpha"`
	CategoryOverride string  `json:"category_override,omitempty"`
	BreakerState     string  `json:"breaker_state" enum:"closed,open,half_open"`
	InFlight         int64   `json:"in_flight"`
	MaxConcurrent    int     `json:"max_concurrent"`
	AvailablePermits float64 `json:"available_permits"`
}

// ListProvidersOutput is the response of the providers endpoint.
type ListProvidersOutput struct {
	Body struct {
		Providers []ProviderStatus `json:"providers"`
	}
}

// List returns every configured provider in search order.
func (h *ProvidersHandler) List(_ context.Context, _ *struct{}) (*ListProvidersOutput, error) {
	registry := h.catalog.Registry()
	descs := h.catalog.Descriptors()

	out := &ListProvidersOutput{}
	out.Body.Providers = make([]ProviderStatus, 0, len(descs))
	for _, d := range descs {
		st := registry.Get(d.Name).State()
		out.Body.Providers = append(out.Body.Providers, ProviderStatus{
			Name:             d.Name,
			CategoryOverride: d.CategoryOverride,
			BreakerState:     st.BreakerState,
			InFlight:         st.InFlight,
			MaxConcurrent:    st.MaxConcurrent,
			AvailablePermits: st.AvailablePermits,
		})
	}
	return out, nil
}

// RegisterProviderRoutes registers provider endpoints with the Huma API.
func RegisterProviderRoutes(api huma.API, h *ProvidersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-providers",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers",
		Summary:     "List providers",
		Description: "Returns the configured providers with breaker state and bulkhead usage.",
		Tags:        []string{"providers"},
	}, h.List)
}
