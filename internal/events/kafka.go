package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures a KafkaPublisher.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	Async        bool
}

// KafkaPublisher implements Publisher by writing JSON messages keyed by the
// search key to a Kafka topic.
type KafkaPublisher struct {
	writer MessageWriter
}

// KafkaOption configures a KafkaPublisher.
type KafkaOption func(*KafkaPublisher)

// WithMessageWriter replaces the underlying writer, for testing.
func WithMessageWriter(w MessageWriter) KafkaOption {
	return func(p *KafkaPublisher) {
		p.writer = w
	}
}

// NewKafkaPublisher creates a KafkaPublisher for cfg.
func NewKafkaPublisher(cfg KafkaConfig, opts ...KafkaOption) *KafkaPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	batch := cfg.BatchTimeout
	if batch <= 0 {
		batch = 50 * time.Millisecond
	}

	p := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           batch,
			RequiredAcks:           kafka.RequireOne,
			Async:                  cfg.Async,
			AllowAutoTopicCreation: true,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishSearch writes ev to the topic.
func (p *KafkaPublisher) PublishSearch(ctx context.Context, ev SearchEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		metrics.EventPublishFailuresTotal.Inc()
		return fmt.Errorf("marshaling search event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.Key),
		Value: body,
		Time:  ev.CompletedAt,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(ev.ID)},
			{Key: "event-type", Value: []byte(SearchEventType)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventPublishFailuresTotal.Inc()
		return fmt.Errorf("writing search event %s: %w", ev.ID, err)
	}

	metrics.EventsPublishedTotal.Inc()
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}
