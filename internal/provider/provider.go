// Package provider wraps upstream catalog providers behind a uniform
// contract and guards every call with the provider's resilience policy.
package provider

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// Sentinel errors returned by the gateway and upstream clients.
var (
	ErrUpstream        = errors.New("upstream error")
	ErrItemNotFound    = errors.New("item not found")
	ErrUnknownProvider = errors.New("unknown provider")
)

// Filter is the query sent to a single upstream.
type Filter struct {
	Query    string
	Category string
	Brand    string
	Page     int
	Size     int
}

// CatalogUpstream is one upstream catalog. Implementations may block up to
// their own timeout and must honor ctx cancellation where they can.
type CatalogUpstream interface {
	Search(ctx context.Context, f Filter) ([]domain.RawCatalogItem, error)
	Item(ctx context.Context, id string) (*domain.RawCatalogItem, error)
}

// MetricsSink receives per-call observations. Implementations must not block.
type MetricsSink interface {
	RecordLatency(provider string, d time.Duration)
	RecordError(provider string, d time.Duration, err error)
}

type noopSink struct{}

func (noopSink) RecordLatency(string, time.Duration)      {}
func (noopSink) RecordError(string, time.Duration, error) {}
