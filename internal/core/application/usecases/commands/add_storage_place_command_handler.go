package commands

import (
	"context"

	"courier-dispatch/internal/pkg/errs"
)

// AddStoragePlaceCommandHandler adds an empty storage place to a stored courier.
// The courier is read with a row lock, so a movement or assignment committed
// meanwhile is never overwritten.
type AddStoragePlaceCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewAddStoragePlaceCommandHandler returns a handler using one courier unit of work per call.
func NewAddStoragePlaceCommandHandler(uowFactory CourierUoWFactory) AddStoragePlaceCommandHandler {
	return AddStoragePlaceCommandHandler{uowFactory: uowFactory}
}

// Handle fails with an ObjectNotFoundError for an unknown courier.
func (h AddStoragePlaceCommandHandler) Handle(ctx context.Context, cmd AddStoragePlaceCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()
	c, found, err := courierRepo.GetForUpdate(ctx, cmd.CourierID())
	if err != nil {
		return err
	}
	if !found {
		return errs.NewObjectNotFoundError("courierId", cmd.CourierID().String())
	}

	if err = c.AddStoragePlace(cmd.Name(), cmd.TotalVolume()); err != nil {
		return err
	}

	if err = courierRepo.Update(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
