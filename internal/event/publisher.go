package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"customer-addressbook/internal/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher sends events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, e *Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events with a kafka-go writer.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers. With no
// brokers it returns a publisher that drops every event.
func NewKafkaPublisher(brokers []string, log *slog.Logger) Publisher {
	if log == nil {
		log = logger.Discard()
	}
	if len(brokers) == 0 {
		return Noop{}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, logger: log}
}

func newPublisherWithWriter(w messageWriter, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: log}
}

// Publish writes e to topic keyed by customer so one customer's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, e *Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(e.CustomerID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "source", Value: []byte(e.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("event_type", e.EventType),
			slog.Any("error", err),
		)
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("aggregate_id", e.AggregateID),
	)
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops events.
type Noop struct{}

func (Noop) Publish(context.Context, string, *Event) error { return nil }

func (Noop) Close() error { return nil }
