// Package ports defines the contracts between the domain core and infrastructure.
// Adapters under internal/adapters implement them; use cases depend only on
// these interfaces, which keeps them testable with mocks.
package ports

import (
	"context"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
// A courier is always stored and loaded together with its storage places, in
// the order they were added.
type CourierRepository interface {
	// Add persists a new courier aggregate. The courier must be valid and not
	// stored yet.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Update persists the current state of a stored courier: its location and
	// every storage place, including places added since it was loaded.
	// Updating a courier that was never added is an error.
	Update(ctx context.Context, aggregate *courier.Courier) error

	// Get reports a missing courier with found == false and a nil error.
	Get(ctx context.Context, id kernel.UUID) (aggregate *courier.Courier, found bool, err error)

	// GetForUpdate reads like Get and locks the courier row until the
	// surrounding transaction ends. Writers that reload through it never
	// overwrite each other's changes with a stale copy.
	//
	// Example:
	//   uow.Begin(ctx)
	//   c, found, err := uow.CourierRepository().GetForUpdate(ctx, id)
	//   if err != nil || !found {
	//       return err
	//   }
	//   // mutate c, then Update and Commit
	GetForUpdate(ctx context.Context, id kernel.UUID) (aggregate *courier.Courier, found bool, err error)

	// GetAllFree returns couriers none of whose storage places is occupied.
	//
	// Business Rules:
	//   - Courier with every storage place empty: free
	//   - Courier holding at least one order: busy, not returned
	GetAllFree(ctx context.Context) ([]*courier.Courier, error)

	// GetAllBusy returns couriers holding at least one order.
	GetAllBusy(ctx context.Context) ([]*courier.Courier, error)

	// GetAll returns every courier, ordered by name.
	GetAll(ctx context.Context) ([]*courier.Courier, error)
}
