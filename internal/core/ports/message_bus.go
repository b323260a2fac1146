package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is a serialized domain event on its way to the message bus.
type Message struct {
	ID         uuid.UUID
	Name       string
	Payload    []byte
	OccurredAt time.Time
}

// MessageBusProducer delivers messages at least once; consumers deduplicate by Message.ID.
type MessageBusProducer interface {
	Publish(ctx context.Context, msg Message) error
}

// OutboxRepository gives the relay access to stored, not yet published messages.
type OutboxRepository interface {
	GetUnprocessed(ctx context.Context, limit int) ([]Message, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
}
