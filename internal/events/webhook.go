package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
)

// SearchEventType is sent in the X-Catalog-Event header of every webhook
// delivery.
const SearchEventType = "search.completed"

const eventTypeHeader = "X-Catalog-Event"

// Webhook delivery failures.
var (
	ErrWebhookThrottled = errors.New("webhook throttled")
	ErrWebhookRejected  = errors.New("webhook rejected event")
)

// WebhookPublisher implements Publisher by POSTing each event as JSON to a
// fixed URL.
type WebhookPublisher struct {
	url    string
	client *http.Client
}

// WebhookOption configures a WebhookPublisher.
type WebhookOption func(*WebhookPublisher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookPublisher) {
		w.client = c
	}
}

// NewWebhookPublisher creates a new WebhookPublisher.
func NewWebhookPublisher(url string, opts ...WebhookOption) *WebhookPublisher {
	w := &WebhookPublisher{
		url:    url,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PublishSearch posts ev to the webhook. The event id doubles as the
// Idempotency-Key so receivers can drop redeliveries.
func (w *WebhookPublisher) PublishSearch(ctx context.Context, ev SearchEvent) error {
	err := w.post(ctx, ev)
	if err != nil {
		metrics.EventPublishFailuresTotal.Inc()
		return fmt.Errorf("publishing search event %s: %w", ev.ID, err)
	}
	metrics.EventsPublishedTotal.Inc()
	return nil
}

func (w *WebhookPublisher) post(ctx context.Context, ev SearchEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ev.ID)
	req.Header.Set(eventTypeHeader, SearchEventType)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry after %q", ErrWebhookThrottled, resp.Header.Get("Retry-After"))
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("%w: status %d: %s", ErrWebhookRejected, resp.StatusCode, bytes.TrimSpace(snippet))
	}
}

// Close is a no-op.
func (*WebhookPublisher) Close() error { return nil }
