package commands

import (
	"context"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"
)

// CreateCourierCommandHandler places a new courier at a random point of the grid.
type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
	rnd        kernel.RandomSource
}

// NewCreateCourierCommandHandler draws starting locations from rnd.
func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory, rnd kernel.RandomSource) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{
		uowFactory: uowFactory,
		rnd:        rnd,
	}
}

// Handle stores the courier in its own transaction.
//
// Example:
//
//	cmd, _ := commands.NewCreateCourierCommand("Pete", 2)
//	if err := handler.Handle(ctx, cmd); err != nil {
//		return err
//	}
//	log.Printf("courier %s created", cmd.CourierID())
func (h CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	location, err := kernel.NewRandomLocation(h.rnd)
	if err != nil {
		return err
	}

	newCourier, err := courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Speed(), location)
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

	if err = uow.CourierRepository().Add(ctx, newCourier); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
