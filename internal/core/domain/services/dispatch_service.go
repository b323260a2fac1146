package services

import (
	"fmt"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/order"
	"courier-dispatch/internal/pkg/errs"
)

var (
	ErrOrderIsNotExists       = errs.NewValidationError("order.is.not.exists", "order is required for dispatch")
	ErrCouriersIsNotExists    = errs.NewNotFoundError("couriers.is.not.exists", "no couriers to dispatch to")
	ErrFreeCourierIsNotExists = errs.NewNotFoundError("free.courier.is.not.exists", "no courier can take the order")
)

// DispatchService matches a pending order with the courier that reaches it first.
//
// Business rules:
//   - Only couriers with a storage place that fits the order's volume are eligible
//   - Unconstructed or nil couriers in the list are ignored
//   - The courier with the smallest travel time wins; ties go to the one listed first
//   - A single eligible courier is taken without computing travel times
//
// Example usage:
//
//	svc := services.NewDispatchService()
//	c, err := svc.Dispatch(o, freeCouriers)
//	if errors.Is(err, services.ErrFreeCourierIsNotExists) {
//	    // nobody can carry it now, retry on the next run
//	    return nil
//	}
//	if err != nil {
//	    return err
//	}
//	// persist o and c in one transaction
type DispatchService struct{}

// NewDispatchService returns a stateless DispatchService.
func NewDispatchService() DispatchService {
	return DispatchService{}
}

// Dispatch picks a courier for the order among those able to carry it, assigns
// the order and puts it into the courier's storage.
//
// Both the order and the returned courier are mutated in place and must be
// persisted by the caller. On failure neither is changed.
func (s DispatchService) Dispatch(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error) {
	best, err := s.SelectCourier(o, couriers)
	if err != nil {
		return nil, err
	}

	before := *o
	if err := o.Assign(best.ID()); err != nil {
		return nil, err
	}
	if err := best.TakeOrder(o); err != nil {
		*o = before
		return nil, fmt.Errorf("courier %s accepted order %s but could not store it: %w", best.ID(), o.ID(), err)
	}

	return best, nil
}

// SelectCourier applies the same rules as Dispatch but changes nothing. Callers
// use it to choose which courier to lock and reload before dispatching to it.
func (s DispatchService) SelectCourier(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error) {
	if o.Validate() != nil {
		return nil, ErrOrderIsNotExists
	}
	if len(couriers) == 0 {
		return nil, ErrCouriersIsNotExists
	}

	eligible, err := s.eligibleCouriers(o, couriers)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, ErrFreeCourierIsNotExists.WithMessage("no courier can take order %s of volume %d", o.ID(), o.Volume())
	}

	if len(eligible) == 1 {
		return eligible[0], nil
	}
	return s.fastest(o, eligible)
}

func (s DispatchService) eligibleCouriers(o *order.Order, couriers []*courier.Courier) ([]*courier.Courier, error) {
	eligible := make([]*courier.Courier, 0, len(couriers))
	for _, c := range couriers {
		if c.Validate() != nil {
			continue
		}

		canTake, err := c.CanTakeOrder(o)
		if err != nil {
			return nil, err
		}
		if canTake {
			eligible = append(eligible, c)
		}
	}
	return eligible, nil
}

func (s DispatchService) fastest(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error) {
	var (
		best     *courier.Courier
		bestTime float64
	)

	for _, c := range couriers {
		tm, err := c.CalculateTimeToLocation(o.Location())
		if err != nil {
			return nil, err
		}
		// strict comparison keeps the earliest courier on ties
		if best == nil || tm < bestTime {
			best, bestTime = c, tm
		}
	}

	return best, nil
}
