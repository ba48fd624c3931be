package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

const maxResponseBytes = 4 << 20

// HTTPUpstream implements CatalogUpstream against a JSON catalog API:
//
//	GET {base}/products?q=&page=&size=&category=&brand=
//	GET {base}/products/{id}
type HTTPUpstream struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// HTTPOption configures an HTTPUpstream.
type HTTPOption func(*HTTPUpstream)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(u *HTTPUpstream) {
		u.client = hc
	}
}

// WithAPIKey sends key as a bearer token on every request.
func WithAPIKey(key string) HTTPOption {
	return func(u *HTTPUpstream) {
		u.apiKey = key
	}
}

// NewHTTPUpstream creates an upstream client rooted at baseURL.
func NewHTTPUpstream(baseURL string, opts ...HTTPOption) *HTTPUpstream {
	u := &HTTPUpstream{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type searchResponse struct {
	Items []domain.RawCatalogItem `json:"items"`
	Total int                     `json:"total"`
}

// Search implements CatalogUpstream.
func (u *HTTPUpstream) Search(ctx context.Context, f Filter) ([]domain.RawCatalogItem, error) {
	body, status, err := u.get(ctx, u.buildSearchURL(f))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: search status %d: %s", ErrUpstream, status, truncate(body))
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing search response: %w", ErrUpstream, err)
	}
	return resp.Items, nil
}

// Item implements CatalogUpstream.
func (u *HTTPUpstream) Item(ctx context.Context, id string) (*domain.RawCatalogItem, error) {
	body, status, err := u.get(ctx, u.baseURL+"/products/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrItemNotFound
	default:
		return nil, fmt.Errorf("%w: item status %d: %s", ErrUpstream, status, truncate(body))
	}

	var item domain.RawCatalogItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("%w: parsing item response: %w", ErrUpstream, err)
	}
	return &item, nil
}

func (u *HTTPUpstream) get(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: executing request: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading response body: %w", ErrUpstream, err)
	}
	return body, resp.StatusCode, nil
}

func (u *HTTPUpstream) buildSearchURL(f Filter) string {
	params := url.Values{}
	params.Set("q", f.Query)
	params.Set("page", strconv.Itoa(f.Page))

	size := f.Size
	if size <= 0 {
		size = 20
	}
	params.Set("size", strconv.Itoa(size))

	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Brand != "" {
		params.Set("brand", f.Brand)
	}
	return u.baseURL + "/products?" + params.Encode()
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
