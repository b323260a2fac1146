package commands

import (
	"context"
	"fmt"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"
	"courier-dispatch/internal/core/ports"
)

// CreateOrderCommandHandler stores a new Created order.
//
// The destination is resolved by the geo service. Without one (geo == nil) a
// random point on the grid is drawn from rnd. Creating an order whose id is
// already known succeeds without changes.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	geo        ports.GeoClient
	rnd        kernel.RandomSource
}

// NewCreateOrderCommandHandler accepts a nil geo client; rnd is used then.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	geo ports.GeoClient,
	rnd kernel.RandomSource,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		geo:        geo,
		rnd:        rnd,
	}
}

// Handle resolves the destination before opening the transaction, so a slow
// geo service never holds a database connection.
//
// Business rules:
//   - an order id that is already stored is accepted and left untouched
//   - a geo service failure fails the command and nothing is stored
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	location, err := h.resolveLocation(ctx, cmd.Street())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	if _, found, getErr := orderRepo.Get(ctx, cmd.OrderID()); getErr != nil {
		return getErr
	} else if found {
		return nil
	}

	newOrder, err := order.NewOrder(cmd.OrderID(), location, cmd.Volume())
	if err != nil {
		return err
	}

	if err = orderRepo.Add(ctx, newOrder); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h CreateOrderCommandHandler) resolveLocation(ctx context.Context, street string) (kernel.Location, error) {
	if h.geo == nil {
		return kernel.NewRandomLocation(h.rnd)
	}

	location, err := h.geo.GetLocation(ctx, street)
	if err != nil {
		return kernel.Location{}, fmt.Errorf("resolve location of %q: %w", street, err)
	}
	return location, nil
}
