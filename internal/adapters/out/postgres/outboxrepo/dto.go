// Package outboxrepo stores domain events until the relay hands them to the message bus.
package outboxrepo

import (
	"time"

	"courier-dispatch/internal/core/ports"

	"github.com/google/uuid"
)

type OutboxMessageDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"type:varchar(128);not null"`
	Payload     string     `gorm:"type:jsonb;not null"`
	OccurredAt  time.Time  `gorm:"not null;index"`
	ProcessedAt *time.Time `gorm:"index"`
}

func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

func fromMessage(msg ports.Message) OutboxMessageDTO {
	return OutboxMessageDTO{
		ID:         msg.ID,
		Name:       msg.Name,
		Payload:    string(msg.Payload),
		OccurredAt: msg.OccurredAt.UTC(),
	}
}

func toMessage(dto OutboxMessageDTO) ports.Message {
	return ports.Message{
		ID:         dto.ID,
		Name:       dto.Name,
		Payload:    []byte(dto.Payload),
		OccurredAt: dto.OccurredAt,
	}
}
