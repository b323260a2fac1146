package outboxrepo

import (
	"context"
	"fmt"
	"time"

	"courier-dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotifyChannel is the LISTEN/NOTIFY channel signalled when messages are staged.
const NotifyChannel = "outbox_messages"

// GormOutboxRepository implements ports.OutboxRepository and the staging side
// used by the unit of work.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add stages messages and notifies listeners. Inside a transaction the
// notification is only delivered on commit.
func (r *GormOutboxRepository) Add(ctx context.Context, msgs []ports.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	dtos := make([]OutboxMessageDTO, 0, len(msgs))
	for _, msg := range msgs {
		dtos = append(dtos, fromMessage(msg))
	}

	db := r.db.WithContext(ctx)
	if err := db.Create(&dtos).Error; err != nil {
		return fmt.Errorf("insert outbox messages: %w", err)
	}

	if err := db.Exec("SELECT pg_notify(?, '')", NotifyChannel).Error; err != nil {
		return fmt.Errorf("notify %s: %w", NotifyChannel, err)
	}
	return nil
}

// GetUnprocessed returns up to limit unpublished messages, oldest first.
func (r *GormOutboxRepository) GetUnprocessed(ctx context.Context, limit int) ([]ports.Message, error) {
	query := r.db.WithContext(ctx).
		Where("processed_at IS NULL").
		Order("occurred_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []OutboxMessageDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	msgs := make([]ports.Message, 0, len(dtos))
	for _, dto := range dtos {
		msgs = append(msgs, toMessage(dto))
	}
	return msgs, nil
}

func (r *GormOutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ? AND processed_at IS NULL", id).
		Update("processed_at", at.UTC())
	if result.Error != nil {
		return fmt.Errorf("mark outbox message %s: %w", id, result.Error)
	}
	return nil
}
