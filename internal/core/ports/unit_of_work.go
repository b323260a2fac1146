package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh unit of work per business transaction.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork scopes repositories to one transaction. Domain events raised by the
// aggregates saved through it are stored in the outbox when Commit succeeds.
// Repositories used before Begin operate outside any transaction.
//
// Example:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//	// read with GetForUpdate, mutate, Update
//	return uow.Commit(ctx)
type UnitOfWork interface {
	// Begin opens the transaction. It is a no-op when one is already open.
	Begin(ctx context.Context) error
	// Commit stages pending domain events in the outbox and commits.
	Commit(ctx context.Context) error
	// Rollback discards the transaction. After Commit it returns an error that
	// callers deferring it ignore.
	Rollback(ctx context.Context) error

	CourierRepository() CourierRepository
	OrderRepository() OrderRepository
}
