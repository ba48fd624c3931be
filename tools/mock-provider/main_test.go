package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func loadTestFixture(t *testing.T) []domain.RawCatalogItem {
	t.Helper()
	products, err := loadFixture(filepath.Join("testdata", "products.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return products
}

func TestLoadFixture(t *testing.T) {
	products := loadTestFixture(t)
	if len(products) != 5 {
		t.Fatalf("len=%d, want 5", len(products))
	}
	if products[0].PromoPrice == nil {
		t.Error("expected promo price on first product")
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := loadFixture("testdata/nope.json"); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func doSearch(t *testing.T, h http.Handler, query string) (int, searchResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/products?"+query, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp searchResponse
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return w.Code, resp
}

func TestSearchHandler(t *testing.T) {
	h := newMux(testLogger(), loadTestFixture(t), "", chaos{})

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantLen   int
	}{
		{name: "everything", query: "", wantTotal: 5, wantLen: 5},
		{name: "title match", query: "q=smartphone", wantTotal: 3, wantLen: 3},
		{name: "case insensitive", query: "q=GALAXY", wantTotal: 2, wantLen: 2},
		{name: "category", query: "category=laptops", wantTotal: 1, wantLen: 1},
		{name: "brand", query: "q=smartphone&brand=samsung", wantTotal: 2, wantLen: 2},
		{name: "first page", query: "q=smartphone&size=2&page=0", wantTotal: 3, wantLen: 2},
		{name: "second page", query: "q=smartphone&size=2&page=1", wantTotal: 3, wantLen: 1},
		{name: "past the end", query: "size=2&page=9", wantTotal: 5, wantLen: 0},
		{name: "no match", query: "q=toaster", wantTotal: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doSearch(t, h, tt.query)
			if code != http.StatusOK {
				t.Fatalf("status=%d, want 200", code)
			}
			if resp.Total != tt.wantTotal {
				t.Errorf("total=%d, want %d", resp.Total, tt.wantTotal)
			}
			if len(resp.Items) != tt.wantLen {
				t.Errorf("len=%d, want %d", len(resp.Items), tt.wantLen)
			}
			if resp.Items == nil {
				t.Error("items must be an empty array, not null")
			}
		})
	}
}

func TestItemHandler(t *testing.T) {
	h := newMux(testLogger(), loadTestFixture(t), "", chaos{})

	req := httptest.NewRequest(http.MethodGet, "/products/lp-200", http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	var item domain.RawCatalogItem
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatalf("decoding item: %v", err)
	}
	if item.Brand != "Lenovo" {
		t.Errorf("brand=%s, want Lenovo", item.Brand)
	}

	req = httptest.NewRequest(http.MethodGet, "/products/missing", http.NoBody)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", w.Code)
	}
}

func TestRequireKey(t *testing.T) {
	h := newMux(testLogger(), loadTestFixture(t), "secret", chaos{})

	req := httptest.NewRequest(http.MethodGet, "/products", http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/products", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
}

func TestChaos_AlwaysFail(t *testing.T) {
	h := newMux(testLogger(), loadTestFixture(t), "", chaos{failRate: 1})

	code, _ := doSearch(t, h, "q=phone")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", code)
	}
}
