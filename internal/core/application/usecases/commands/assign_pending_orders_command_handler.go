package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/order"
	"courier-dispatch/internal/core/domain/services"
	"courier-dispatch/internal/pkg/errs"
)

var (
	ErrNoPendingOrders = errs.NewNotFoundError("orders.is.not.exists", "there are no orders waiting for a courier")
	ErrNoFreeCouriers  = services.ErrCouriersIsNotExists.WithMessage("there are no free couriers")
)

// AssignPendingOrdersResult counts what happened to the orders of one run.
type AssignPendingOrdersResult struct {
	// Assigned orders were stored together with the courier that took them.
	Assigned int
	// Skipped orders had no eligible courier, or were no longer pending when
	// reloaded, and are left as they are in the store.
	Skipped int
	// Failed orders were dispatched but could not be persisted.
	Failed int
}

type assignOutcome int

const (
	assignDone assignOutcome = iota
	assignSkipped
)

// AssignPendingOrdersCommandHandler dispatches Created orders to free couriers.
//
// Orders are taken oldest first and matched against one snapshot of free
// couriers. The snapshot only chooses the candidate: inside each order's
// transaction the chosen courier and the order are reloaded with a row lock and
// the assignment is applied to those fresh copies. A concurrent AdvanceCouriers
// run therefore never has its moves or deliveries overwritten by a stale
// snapshot.
//
// Business rules:
//   - An order that is no longer Created when reloaded is skipped
//   - A courier whose stored state can no longer take the order is refreshed in
//     the snapshot and the next best candidate is tried
//   - A courier that received an order stays in the snapshot while it has room left
//   - A failure for one order never aborts the rest of the batch
type AssignPendingOrdersCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.DispatchService
	logger     *slog.Logger
}

// NewAssignPendingOrdersCommandHandler wires the handler to a unit of work
// factory spanning both aggregates.
func NewAssignPendingOrdersCommandHandler(
	uowFactory UoWFactory,
	dispatcher services.DispatchService,
	logger *slog.Logger,
) AssignPendingOrdersCommandHandler {
	return AssignPendingOrdersCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		logger:     logger.With("component", "assign_pending_orders"),
	}
}

// Handle returns ErrNoPendingOrders or ErrNoFreeCouriers when there is nothing to do.
// Per-order failures are counted in the result, never returned.
func (h AssignPendingOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd AssignPendingOrdersCommand,
) (AssignPendingOrdersResult, error) {
	var result AssignPendingOrdersResult
	if err := cmd.Validate(); err != nil {
		return result, err
	}

	snapshot := h.uowFactory.Create()
	orders, err := snapshot.OrderRepository().GetOldestCreated(ctx, cmd.BatchSize())
	if err != nil {
		return result, fmt.Errorf("load created orders: %w", err)
	}
	if len(orders) == 0 {
		return result, ErrNoPendingOrders
	}

	couriers, err := snapshot.CourierRepository().GetAllFree(ctx)
	if err != nil {
		return result, fmt.Errorf("load free couriers: %w", err)
	}
	if len(couriers) == 0 {
		return result, ErrNoFreeCouriers
	}

	for i, o := range orders {
		if err = ctx.Err(); err != nil {
			return result, err
		}
		if len(couriers) == 0 {
			result.Skipped += len(orders) - i
			h.logger.WarnContext(ctx, "no couriers left in snapshot", "remaining_orders", len(orders)-i)
			break
		}

		var (
			outcome assignOutcome
			picked  *courier.Courier
		)
		outcome, picked, couriers, err = h.assign(ctx, o, couriers)
		if err != nil {
			result.Failed++
			attrs := []any{"order_id", o.ID().String(), "error", err}
			if picked != nil {
				couriers = withoutCourier(couriers, picked)
				attrs = append(attrs, "courier_id", picked.ID().String())
			}
			h.logger.ErrorContext(ctx, "failed to store assignment", attrs...)
			continue
		}

		if outcome == assignSkipped {
			result.Skipped++
			continue
		}

		result.Assigned++
		h.logger.InfoContext(ctx, "order assigned",
			"order_id", o.ID().String(),
			"courier_id", picked.ID().String())
	}

	return result, nil
}

// assign runs one order in its own transaction and returns the snapshot with
// every courier it reloaded replaced by the stored copy. picked is the courier
// involved when an error is returned after one was chosen.
func (h AssignPendingOrdersCommandHandler) assign(
	ctx context.Context,
	pending *order.Order,
	couriers []*courier.Courier,
) (outcome assignOutcome, picked *courier.Courier, snapshot []*courier.Courier, err error) {
	snapshot = couriers

	candidate, err := h.selectCourier(ctx, pending, snapshot)
	if err != nil {
		return assignSkipped, nil, snapshot, nil
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return assignSkipped, nil, snapshot, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	var current *order.Order

	// Each pass either returns or makes one snapshot entry ineligible.
	for range len(couriers) {
		if candidate == nil {
			if candidate, err = h.selectCourier(ctx, pending, snapshot); err != nil {
				return assignSkipped, nil, snapshot, nil
			}
		}

		fresh, found, getErr := uow.CourierRepository().GetForUpdate(ctx, candidate.ID())
		if getErr != nil {
			return assignSkipped, candidate, snapshot, getErr
		}
		if !found {
			snapshot = withoutCourier(snapshot, candidate)
			candidate = nil
			continue
		}
		snapshot = replaceCourier(snapshot, fresh)
		candidate = nil

		if current == nil {
			stored, orderFound, orderErr := uow.OrderRepository().GetForUpdate(ctx, pending.ID())
			if orderErr != nil {
				return assignSkipped, fresh, snapshot, orderErr
			}
			if !orderFound || stored.Status() != order.Created {
				h.logger.WarnContext(ctx, "order is no longer pending",
					"order_id", pending.ID().String(),
					"found", orderFound)
				return assignSkipped, nil, snapshot, nil
			}
			current = stored
		}

		if _, dispatchErr := h.dispatcher.Dispatch(current, []*courier.Courier{fresh}); dispatchErr != nil {
			if errors.Is(dispatchErr, services.ErrFreeCourierIsNotExists) {
				// the stored courier is fuller than the snapshot said; try the next one
				continue
			}
			return assignSkipped, fresh, snapshot, dispatchErr
		}

		if err = uow.OrderRepository().Update(ctx, current); err != nil {
			return assignSkipped, fresh, snapshot, err
		}
		if err = uow.CourierRepository().Update(ctx, fresh); err != nil {
			return assignSkipped, fresh, snapshot, err
		}
		if err = uow.Commit(ctx); err != nil {
			return assignSkipped, fresh, snapshot, err
		}
		return assignDone, fresh, snapshot, nil
	}

	return assignSkipped, nil, snapshot, nil
}

func (h AssignPendingOrdersCommandHandler) selectCourier(
	ctx context.Context,
	pending *order.Order,
	couriers []*courier.Courier,
) (*courier.Courier, error) {
	candidate, err := h.dispatcher.SelectCourier(pending, couriers)
	if err != nil {
		h.logger.WarnContext(ctx, "order not dispatched",
			"order_id", pending.ID().String(),
			"code", errs.CodeOf(err),
			"error", err)
		return nil, err
	}
	return candidate, nil
}

// withoutCourier drops a courier whose in-memory state no longer matches the store.
func withoutCourier(couriers []*courier.Courier, c *courier.Courier) []*courier.Courier {
	out := make([]*courier.Courier, 0, len(couriers))
	for _, candidate := range couriers {
		if !candidate.IsEqual(c) {
			out = append(out, candidate)
		}
	}
	return out
}

// replaceCourier swaps the snapshot entry for c with c, keeping its position.
func replaceCourier(couriers []*courier.Courier, c *courier.Courier) []*courier.Courier {
	out := make([]*courier.Courier, len(couriers))
	for i, candidate := range couriers {
		if candidate.IsEqual(c) {
			out[i] = c
			continue
		}
		out[i] = candidate
	}
	return out
}
