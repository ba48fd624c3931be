package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/catalog-aggregator/internal/fxrate"
	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// RateSource resolves a single exchange rate.
type RateSource interface {
	GetRate(ctx context.Context, base, target string) (domain.ExchangeRate, error)
}

// RateLister lists the rates currently held in memory.
type RateLister interface {
	All() []domain.ExchangeRate
}

// RatesHandler exposes exchange rates read-only.
type RatesHandler struct {
	source RateSource
	lister RateLister
}

// NewRatesHandler creates a new RatesHandler. lister may be nil.
func NewRatesHandler(source RateSource, lister RateLister) *RatesHandler {
	return &RatesHandler{source: source, lister: lister}
}

// GetRateInput selects a currency pair.
type GetRateInput struct {
	Base   string `path:"base" minLength:"3" maxLength:"3" doc:"ISO 4217 base currency" example:"USD"`
	Target string `path:"target" minLength:"3" maxLength:"3" doc:"ISO 4217 target currency" example:"ETB"`
}

// RateOutput is one exchange rate.
type RateOutput struct {
	Body domain.ExchangeRate
}

// Get returns the rate the pricing transform would use for the pair.
func (h *RatesHandler) Get(ctx context.Context, input *GetRateInput) (*RateOutput, error) {
	base, err := pricing.ParseCurrency(input.Base)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	target, err := pricing.ParseCurrency(input.Target)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	if base == target {
		return &RateOutput{Body: domain.ExchangeRate{Base: base, Target: target, Rate: decimal.NewFromInt(1)}}, nil
	}

	rate, err := h.source.GetRate(ctx, base, target)
	if errors.Is(err, fxrate.ErrNotFound) {
		return nil, huma.Error404NotFound("no rate for " + base + "/" + target)
	}
	if err != nil {
		return nil, huma.Error502BadGateway("looking up rate: " + err.Error())
	}
	return &RateOutput{Body: rate}, nil
}

// ListRatesInput optionally narrows the listing to one base currency.
type ListRatesInput struct {
	Base string `query:"base" doc:"Only rates from this base currency" example:"USD"`
}

// ListRatesOutput is the response of the rate listing endpoint.
type ListRatesOutput struct {
	Body struct {
		Rates []domain.ExchangeRate `json:"rates"`
	}
}

// List returns the in-memory rate snapshot.
func (h *RatesHandler) List(_ context.Context, input *ListRatesInput) (*ListRatesOutput, error) {
	out := &ListRatesOutput{}
	out.Body.Rates = []domain.ExchangeRate{}
	if h.lister == nil {
		return out, nil
	}
	for _, r := range h.lister.All() {
		if input.Base != "" && !strings.EqualFold(r.Base, input.Base) {
			continue
		}
		out.Body.Rates = append(out.Body.Rates, r)
	}
	return out, nil
}

// RegisterRateRoutes registers exchange rate endpoints with the Huma API.
func RegisterRateRoutes(api huma.API, h *RatesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-rates",
		Method:      http.MethodGet,
		Path:        "/api/v1/rates",
		Summary:     "List exchange rates",
		Tags:        []string{"rates"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-rate",
		Method:      http.MethodGet,
		Path:        "/api/v1/rates/{base}/{target}",
		Summary:     "Get an exchange rate",
		Description: "Returns the rate used when pricing base-currency amounts in the target currency.",
		Tags:        []string{"rates"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusBadGateway},
	}, h.Get)
}
