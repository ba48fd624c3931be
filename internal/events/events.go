// Package events publishes search lifecycle events to downstream consumers.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// DefaultTopic is the Kafka topic completed searches are published to.
const DefaultTopic = "catalog.search.completed"

// SearchEvent describes one completed search fan-out.
type SearchEvent struct {
	ID          string             `json:"id"`
	Key         string             `json:"key"`
	Query       string             `json:"query"`
	Country     string             `json:"country"`
	Currency    string             `json:"currency"`
	Providers   []string           `json:"providers"`
	ItemCount   int                `json:"item_count"`
	Stats       domain.SearchStats `json:"stats"`
	CompletedAt time.Time          `json:"completed_at"`
}

// NewSearchEvent builds a SearchEvent for req and its merged result.
func NewSearchEvent(req domain.SearchRequest, providers []string, res domain.AggregatedResult) SearchEvent {
	return SearchEvent{
		ID:          uuid.NewString(),
		Key:         req.Key(),
		Query:       req.Query,
		Country:     req.Country,
		Currency:    req.Currency,
		Providers:   providers,
		ItemCount:   len(res.Items),
		Stats:       res.Stats,
		CompletedAt: time.Now().UTC(),
	}
}

// Publisher delivers search events.
type Publisher interface {
	PublishSearch(ctx context.Context, ev SearchEvent) error
	Close() error
}

type multi []Publisher

// Multi returns a Publisher that delivers each event to every publisher in
// pubs and joins their errors.
func Multi(pubs ...Publisher) Publisher {
	return multi(pubs)
}

func (m multi) PublishSearch(ctx context.Context, ev SearchEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishSearch(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
