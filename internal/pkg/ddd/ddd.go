// Package ddd contains the building blocks aggregates use to publish what happened to them.
package ddd

import (
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventName() string
	OccurredAt() time.Time
}

// EventSource is implemented by aggregates that collect domain events until they are persisted.
type EventSource interface {
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// AggregateRoot is embedded by aggregates to record domain events.
// The zero value is ready to use.
type AggregateRoot struct {
	domainEvents []DomainEvent
}

func (a *AggregateRoot) RaiseDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *AggregateRoot) GetDomainEvents() []DomainEvent {
	events := make([]DomainEvent, len(a.domainEvents))
	copy(events, a.domainEvents)
	return events
}

func (a *AggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
