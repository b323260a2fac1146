package order

import (
	"time"

	"courier-dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// Event names as written to the outbox and the event-type header.
const (
	CreatedEventName   = "OrderCreated"
	CompletedEventName = "OrderCompleted"
)

// StatusChangedDomainEvent is raised when an order is created or completed.
// Consumers receive it at least once and deduplicate by ID.
type StatusChangedDomainEvent struct {
	ID       uuid.UUID `json:"eventId"`
	Name     string    `json:"eventName"`
	OrderID  uuid.UUID `json:"orderId"`
	Status   string    `json:"orderStatus"`
	Occurred time.Time `json:"occurredAt"`
}

// NewCreatedDomainEvent builds the event NewOrder records.
func NewCreatedDomainEvent(orderID kernel.UUID, at time.Time) StatusChangedDomainEvent {
	return StatusChangedDomainEvent{
		ID:       uuid.New(),
		Name:     CreatedEventName,
		OrderID:  orderID.Bytes(),
		Status:   Created.String(),
		Occurred: at,
	}
}

// NewCompletedDomainEvent builds the event Complete records.
func NewCompletedDomainEvent(orderID kernel.UUID, at time.Time) StatusChangedDomainEvent {
	return StatusChangedDomainEvent{
		ID:       uuid.New(),
		Name:     CompletedEventName,
		OrderID:  orderID.Bytes(),
		Status:   Completed.String(),
		Occurred: at,
	}
}

// EventID returns the unique event identifier used for outbox deduplication.
func (e StatusChangedDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventName returns the event kind.
func (e StatusChangedDomainEvent) EventName() string {
	return e.Name
}

// OccurredAt returns when the status changed.
func (e StatusChangedDomainEvent) OccurredAt() time.Time {
	return e.Occurred
}
