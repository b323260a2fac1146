package queries

import (
	"context"
	"fmt"

	"courier-dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAllCouriersQueryHandler reads couriers straight from the couriers table,
// bypassing the aggregate and its storage places.
//
// Example:
//
//	handler := queries.NewGetAllCouriersQueryHandler(db)
//	couriers, err := handler.Handle(ctx, queries.NewGetAllCouriersQuery())
//	if err != nil {
//	    return err
//	}
//	for _, c := range couriers {
//	    fmt.Printf("%s at (%d,%d)\n", c.Name, c.Location.X, c.Location.Y)
//	}
type GetAllCouriersQueryHandler struct {
	db *gorm.DB
}

// NewGetAllCouriersQueryHandler returns a handler reading through db.
func NewGetAllCouriersQueryHandler(db *gorm.DB) GetAllCouriersQueryHandler {
	return GetAllCouriersQueryHandler{db: db}
}

type courierRow struct {
	ID        uuid.UUID
	Name      string
	LocationX int
	LocationY int
}

// Handle lists every courier sorted by name. The result is never nil.
func (h GetAllCouriersQueryHandler) Handle(ctx context.Context, query GetAllCouriersQuery) ([]CourierView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []courierRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT id, name, location_x, location_y
		FROM couriers
		ORDER BY name, id
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select couriers: %w", err)
	}

	couriers := make([]CourierView, 0, len(rows))
	for _, row := range rows {
		id, idErr := kernel.UUIDFromBytes(row.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		couriers = append(couriers, CourierView{
			ID:       id,
			Name:     row.Name,
			Location: LocationView{X: row.LocationX, Y: row.LocationY},
		})
	}

	return couriers, nil
}
