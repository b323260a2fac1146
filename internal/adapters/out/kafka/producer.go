// Package kafka publishes order status changes.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"courier-dispatch/internal/core/ports"
	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/resilience"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventTypeHeader names the domain event carried by a message.
const EventTypeHeader = "event-type"

var ErrMalformedPayload = errs.NewValidationError("outbox.payload.is.malformed", "outbox payload is not an order status change")

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type orderStatusChanged struct {
	EventID     uuid.UUID `json:"eventId"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderStatus string    `json:"orderStatus"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// OrderStatusChangedProducer implements ports.MessageBusProducer on one topic.
type OrderStatusChangedProducer struct {
	writer  MessageWriter
	breaker *resilience.Breaker
	logger  *slog.Logger
}

func NewOrderStatusChangedProducer(brokers []string, topic string, breaker *resilience.Breaker, logger *slog.Logger) *OrderStatusChangedProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewOrderStatusChangedProducerWithWriter(writer, breaker, logger)
}

func NewOrderStatusChangedProducerWithWriter(
	writer MessageWriter,
	breaker *resilience.Breaker,
	logger *slog.Logger,
) *OrderStatusChangedProducer {
	return &OrderStatusChangedProducer{
		writer:  writer,
		breaker: breaker,
		logger:  logger.With("component", "order_status_producer"),
	}
}

// Publish writes msg keyed by its event id. A malformed payload is a
// validation error: retrying it would never succeed.
func (p *OrderStatusChangedProducer) Publish(ctx context.Context, msg ports.Message) error {
	var event orderStatusChanged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return ErrMalformedPayload.WithMessage("message %s: %v", msg.ID, err)
	}
	if event.OrderID == uuid.Nil || event.OrderStatus == "" {
		return ErrMalformedPayload.WithMessage("message %s has no order id or status", msg.ID)
	}
	event.EventID = msg.ID
	event.OccurredAt = msg.OccurredAt.UTC()

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode message %s: %w", msg.ID, err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.ID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(msg.Name)},
		},
		Time: msg.OccurredAt,
	}

	write := func() error {
		return p.writer.WriteMessages(ctx, kafkaMsg)
	}
	if p.breaker != nil {
		err = p.breaker.Execute(write)
	} else {
		err = write()
	}
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", msg.Name, msg.ID, err)
	}

	p.logger.DebugContext(ctx, "message published", "event", msg.Name, "event_id", msg.ID.String())
	return nil
}

func (p *OrderStatusChangedProducer) Close() error {
	return p.writer.Close()
}
