// Package main implements a mock catalog provider for local development.
// It serves products from a JSON fixture using the same endpoints the
// aggregator's HTTP upstream client calls, and can inject latency and
// failures to exercise the circuit breaker and deadline handling.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

type searchResponse struct {
	Items []domain.RawCatalogItem `json:"items"`
	Total int                     `json:"total"`
}

type chaos struct {
	latency  time.Duration
	failRate float64
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-provider/testdata/products.json", "path to products fixture")
	apiKey := flag.String("api-key", "", "require this bearer token when set")
	latency := flag.Duration("latency", 0, "delay added to every response")
	failRate := flag.Float64("fail-rate", 0, "fraction of requests answered with 503 (0-1)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	products, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(products))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock provider", "addr", addr, "latency", *latency, "fail_rate", *failRate)

	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(logger, products, *apiKey, chaos{latency: *latency, failRate: *failRate}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10*time.Second + *latency,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, products []domain.RawCatalogItem, apiKey string, c chaos) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", searchHandler(logger, products))
	mux.HandleFunc("GET /products/{id}", itemHandler(logger, products))
	return requestLogger(logger, withChaos(c, requireKey(apiKey, mux)))
}

func loadFixture(path string) ([]domain.RawCatalogItem, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var products []domain.RawCatalogItem
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return products, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func requireKey(key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+key {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withChaos(c chaos, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.latency > 0 {
			select {
			case <-time.After(c.latency):
			case <-r.Context().Done():
				return
			}
		}
		if c.failRate > 0 && rand.Float64() < c.failRate { //nolint:gosec // not security sensitive
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func searchHandler(logger *slog.Logger, products []domain.RawCatalogItem) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		q := strings.ToLower(query.Get("q"))
		category := strings.ToLower(query.Get("category"))
		brand := strings.ToLower(query.Get("brand"))

		size := 20
		if v, err := strconv.Atoi(query.Get("size")); err == nil && v > 0 {
			size = v
		}
		page := 0
		if v, err := strconv.Atoi(query.Get("page")); err == nil && v >= 0 {
			page = v
		}

		matched := make([]domain.RawCatalogItem, 0, len(products))
		for i := range products {
			p := &products[i]
			if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
				continue
			}
			if category != "" && !strings.EqualFold(p.Category, category) {
				continue
			}
			if brand != "" && !strings.EqualFold(p.Brand, brand) {
				continue
			}
			matched = append(matched, *p)
		}
		total := len(matched)

		offset := page * size
		if offset >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[offset:min(offset+size, len(matched))]
		}

		writeJSON(w, http.StatusOK, searchResponse{Items: matched, Total: total})
		logger.Info("search", "query", q, "matched", total, "returned", len(matched), "page", page, "size", size)
	}
}

func itemHandler(logger *slog.Logger, products []domain.RawCatalogItem) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		for i := range products {
			if products[i].ID == id {
				writeJSON(w, http.StatusOK, products[i])
				return
			}
		}
		logger.Info("item not found", "id", id)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
