package ports

import (
	"context"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order in the Created status.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status and courier changes of a stored order.
	// Updating an order that was never added is an error.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get reports a missing order with found == false and a nil error.
	Get(ctx context.Context, id kernel.UUID) (aggregate *order.Order, found bool, err error)

	// GetForUpdate reads like Get and locks the order row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (aggregate *order.Order, found bool, err error)

	// GetOldestCreated returns up to limit orders in the Created status, earliest created first.
	// A limit <= 0 means no limit.
	//
	// Example:
	//   orders, err := repo.GetOldestCreated(ctx, 50)
	//   if err != nil {
	//       return fmt.Errorf("load created orders: %w", err)
	//   }
	GetOldestCreated(ctx context.Context, limit int) ([]*order.Order, error)
}
