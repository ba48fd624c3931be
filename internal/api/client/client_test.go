package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-aggregator/internal/api/handlers"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListProviders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		wantMsg      string
		wantNotFound bool
	}{
		{
			name:    "problem detail",
			status:  http.StatusBadGateway,
			body:    `{"title":"Bad Gateway","status":502,"detail":"alpha: upstream error"}`,
			wantMsg: "API error (HTTP 502): alpha: upstream error",
		},
		{
			name:    "plain body",
			status:  http.StatusInternalServerError,
			body:    "internal",
			wantMsg: "API error (HTTP 500): internal",
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			body:         `{"detail":"no rate for USD/KES"}`,
			wantMsg:      "no rate for USD/KES",
			wantNotFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).GetRate(context.Background(), "USD", "KES")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, tt.wantNotFound, IsNotFound(err))
		})
	}
}

func TestClient_Search(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "phone", body["query"])
		assert.Equal(t, "ETB", body["currency"])
		assert.NotContains(t, body, "page", "zero fields are omitted")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.AggregatedResult{
			Items: []domain.CatalogItem{{ID: "sku-1", Provider: "alpha"}},
			Size:  20,
			Stats: domain.SearchStats{ProvidersQueried: 2, ProvidersSucceeded: 2},
		})
	}))
	defer srv.Close()

	res, err := New(srv.URL).Search(context.Background(), &SearchParams{Query: "phone", Currency: "ETB"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "sku-1", res.Items[0].ID)
	assert.Equal(t, 2, res.Stats.ProvidersSucceeded)
}

func TestClient_Product(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/providers/alpha/products/sku 1", r.URL.Path)
		assert.Equal(t, "ETB", r.URL.Query().Get("currency"))
		assert.Empty(t, r.URL.Query().Get("country"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.CatalogItem{
			ID:       "sku 1",
			Provider: "alpha",
			Pricing:  domain.PricingView{Currency: "ETB", CurrentPrice: decimal.NewFromInt(1800)},
		})
	}))
	defer srv.Close()

	item, err := New(srv.URL).Product(context.Background(), "alpha", "sku 1", "", "ETB")
	require.NoError(t, err)
	assert.Equal(t, "ETB", item.Pricing.Currency)
	assert.True(t, decimal.NewFromInt(1800).Equal(item.Pricing.CurrentPrice))
}

func TestClient_ListProviders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/providers", r.URL.Path)
		assert.Equal(t, "cagg", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"providers":[{"name":"alpha","breaker_state":"open","max_concurrent":50}]}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).ListProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []handlers.ProviderStatus{{Name: "alpha", BreakerState: "open", MaxConcurrent: 50}}, got)
}

func TestClient_Rates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/rates/USD/ETB":
			_, _ = w.Write([]byte(`{"base":"USD","target":"ETB","rate":"150.5"}`))
		case "/api/v1/rates":
			assert.Equal(t, "USD", r.URL.Query().Get("base"))
			_, _ = w.Write([]byte(`{"rates":[{"base":"USD","target":"ETB","rate":"150.5"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	rate, err := c.GetRate(context.Background(), "USD", "ETB")
	require.NoError(t, err)
	assert.Equal(t, "150.5", rate.Rate.String())

	rates, err := c.ListRates(context.Background(), "USD")
	require.NoError(t, err)
	assert.Len(t, rates, 1)
}

func TestClient_EmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	got, err := New(srv.URL).ListProviders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := New("http://example.com/", WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
	assert.Equal(t, "http://example.com", c.baseURL)

	c = New("http://example.com", WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}
