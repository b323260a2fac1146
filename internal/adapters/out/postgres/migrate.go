package postgres

import (
	"context"
	"fmt"

	"courier-dispatch/internal/adapters/out/postgres/courierrepo"
	"courier-dispatch/internal/adapters/out/postgres/orderrepo"
	"courier-dispatch/internal/adapters/out/postgres/outboxrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables of every repository.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&courierrepo.CourierDTO{},
		&courierrepo.StoragePlaceDTO{},
		&orderrepo.OrderDTO{},
		&outboxrepo.OutboxMessageDTO{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
