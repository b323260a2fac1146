package commands

import (
	"context"
	"fmt"
	"log/slog"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/order"
)

// AdvanceCouriersResult counts what happened to the busy couriers of one run.
type AdvanceCouriersResult struct {
	// Moved couriers made a step and were stored, including those that delivered.
	Moved     int
	Completed int
	// Skipped couriers were in an inconsistent state, usually a stale snapshot.
	Skipped int
	Failed  int
}

type advanceOutcome int

const (
	advanceMoved advanceOutcome = iota
	advanceCompleted
	advanceSkipped
)

// AdvanceCouriersCommandHandler moves busy couriers toward the order they carry
// and completes the order on arrival.
//
// The busy snapshot only lists which couriers to visit. Each courier is then
// reloaded with a row lock inside its own transaction, together with the order
// it carries, so the step is computed from the stored state and never writes
// back a stale copy.
//
// Business rules:
//   - A courier moves toward the order in its first occupied storage place
//   - Reaching the destination exactly completes the order and frees the place
//   - A courier that is gone, carries nothing, or carries an order that is not
//     Assigned is skipped: a concurrent run may have already changed it
type AdvanceCouriersCommandHandler struct {
	uowFactory UoWFactory
	logger     *slog.Logger
}

// NewAdvanceCouriersCommandHandler wires the handler to a unit of work factory
// spanning both aggregates.
func NewAdvanceCouriersCommandHandler(uowFactory UoWFactory, logger *slog.Logger) AdvanceCouriersCommandHandler {
	return AdvanceCouriersCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "advance_couriers"),
	}
}

// Handle advances every busy courier by one step. Per-courier failures are
// counted in the result; only a failed snapshot load or cancellation is returned.
func (h AdvanceCouriersCommandHandler) Handle(
	ctx context.Context,
	cmd AdvanceCouriersCommand,
) (AdvanceCouriersResult, error) {
	var result AdvanceCouriersResult
	if err := cmd.Validate(); err != nil {
		return result, err
	}

	couriers, err := h.uowFactory.Create().CourierRepository().GetAllBusy(ctx)
	if err != nil {
		return result, fmt.Errorf("load busy couriers: %w", err)
	}

	for _, c := range couriers {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		outcome, advanceErr := h.advance(ctx, c)
		if advanceErr != nil {
			result.Failed++
			h.logger.ErrorContext(ctx, "failed to advance courier",
				"courier_id", c.ID().String(),
				"error", advanceErr)
			continue
		}

		switch outcome {
		case advanceSkipped:
			result.Skipped++
		case advanceCompleted:
			result.Moved++
			result.Completed++
		case advanceMoved:
			result.Moved++
		}
	}

	return result, nil
}

func (h AdvanceCouriersCommandHandler) advance(ctx context.Context, listed *courier.Courier) (advanceOutcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return advanceSkipped, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	c, found, err := uow.CourierRepository().GetForUpdate(ctx, listed.ID())
	if err != nil {
		return advanceSkipped, err
	}
	if !found {
		h.logger.WarnContext(ctx, "busy courier no longer exists", "courier_id", listed.ID().String())
		return advanceSkipped, nil
	}

	orderID, busy := c.CurrentOrderID()
	if !busy {
		h.logger.WarnContext(ctx, "courier listed as busy carries nothing", "courier_id", c.ID().String())
		return advanceSkipped, nil
	}

	o, found, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return advanceSkipped, err
	}
	if !found || o.Status() != order.Assigned {
		h.logger.WarnContext(ctx, "courier carries an order that is not in delivery",
			"courier_id", c.ID().String(),
			"order_id", orderID.String(),
			"found", found)
		return advanceSkipped, nil
	}

	if err = c.Move(o.Location()); err != nil {
		return advanceSkipped, err
	}

	outcome := advanceMoved
	arrived, err := c.Location().IsEqual(o.Location())
	if err != nil {
		return advanceSkipped, err
	}
	if arrived {
		if err = c.CompleteOrder(o); err != nil {
			return advanceSkipped, err
		}
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return advanceSkipped, err
		}
		outcome = advanceCompleted
	}

	if err = uow.CourierRepository().Update(ctx, c); err != nil {
		return advanceSkipped, err
	}
	if err = uow.Commit(ctx); err != nil {
		return advanceSkipped, err
	}

	if outcome == advanceCompleted {
		h.logger.InfoContext(ctx, "order delivered",
			"courier_id", c.ID().String(),
			"order_id", orderID.String())
	}
	return outcome, nil
}
