package queries

import (
	"context"
	"fmt"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUncompletedOrdersQueryHandler reads Created and Assigned orders straight
// from the orders table.
//
// Example:
//
//	handler := queries.NewGetUncompletedOrdersQueryHandler(db)
//	orders, err := handler.Handle(ctx, queries.NewGetUncompletedOrdersQuery())
//	if err != nil {
//	    return err
//	}
type GetUncompletedOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetUncompletedOrdersQueryHandler returns a handler reading through db.
func NewGetUncompletedOrdersQueryHandler(db *gorm.DB) GetUncompletedOrdersQueryHandler {
	return GetUncompletedOrdersQueryHandler{db: db}
}

type orderRow struct {
	ID        uuid.UUID
	LocationX int
	LocationY int
}

// Handle lists Created and Assigned orders, oldest first.
func (h GetUncompletedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUncompletedOrdersQuery,
) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []orderRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT id, location_x, location_y
		FROM orders
		WHERE status IN (?, ?)
		ORDER BY created_at, id
	`, order.Created.String(), order.Assigned.String()).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select uncompleted orders: %w", err)
	}

	orders := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		id, idErr := kernel.UUIDFromBytes(row.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		orders = append(orders, OrderView{
			ID:       id,
			Location: LocationView{X: row.LocationX, Y: row.LocationY},
		})
	}

	return orders, nil
}
