package order

import (
	"errors"
	"fmt"
	"time"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/pkg/ddd"
	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/guard"
)

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when a zero-value or nil Order is used.
	ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder")

	// ErrCourierIsNeeded is returned by Assign when no courier identifier is given.
	ErrCourierIsNeeded = errs.NewValidationError("courier.is.needed", "courier is needed to assign an order")
	// ErrOrderIsAlreadyAssigned is returned by Assign on any order that already has a courier,
	// including a repeated assignment to the same courier.
	ErrOrderIsAlreadyAssigned = errs.NewConflictError("order.is.already.assigned", "order is already assigned")
	// ErrOrderIsCompleted is returned by Assign and Complete on a delivered order.
	ErrOrderIsCompleted = errs.NewConflictError("order.is.completed", "order is completed")
	// ErrOrderIsNotAssigned is returned by Complete on an order still waiting for a courier.
	ErrOrderIsNotAssigned = errs.NewConflictError("order.is.not.assigned", "order is not assigned")
)

// Order is a delivery request: a destination, a volume to carry and the courier
// that took it. It references its courier by identifier only.
//
// Key responsibilities:
//   - Tracking the lifecycle Created -> Assigned -> Completed
//   - Remembering which courier took it
//   - Recording OrderCreated and OrderCompleted domain events for the outbox
//
// Business rules:
//   - Volume is positive and the destination is a valid location
//   - A courier is referenced exactly when the status is Assigned or Completed
//   - Status never goes back and Assigned is never skipped
//   - An order is assigned once; a second Assign fails even for the same courier
//
// Example usage:
//
//	dest, _ := kernel.NewLocation(4, 9)
//	o, err := order.NewOrder(basketID, dest, 5)
//	if err != nil {
//	    return err
//	}
//	_ = o.Assign(courierID) // Assigned
//	// the courier completes it on arrival through Courier.CompleteOrder
type Order struct {
	ddd.AggregateRoot

	// id is the basket identifier the order was created from
	id kernel.UUID
	// courierID is nil while the order is Created
	courierID *kernel.UUID
	// location is the delivery destination
	location kernel.Location
	// volume is compared against storage place capacity
	volume int
	// status is the lifecycle position
	status Status
	// guard marks orders built by a constructor
	guard guard.ConstructorGuard
}

// NewOrder creates an order in the Created status and records an OrderCreated event.
//
// Parameters:
//   - id: order identifier (must be valid), taken from the confirmed basket
//   - location: delivery destination (must be constructed)
//   - volume: space the order takes in a storage place (must be positive)
//
// All invalid arguments are reported together through errors.Join.
func NewOrder(id kernel.UUID, location kernel.Location, volume int) (*Order, error) {
	o := &Order{
		status: Created,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocation(location),
		o.setVolume(volume),
	); err != nil {
		return nil, err
	}

	o.RaiseDomainEvent(NewCreatedDomainEvent(o.id, time.Now().UTC()))
	return o, nil
}

// RestoreOrder rebuilds a persisted order. No events are recorded.
//
// The status and courier must agree: Created without a courier, Assigned or
// Completed with one.
//
// Example:
//
//	o, err := order.RestoreOrder(id, &courierID, dest, 5, order.Assigned)
//	if err != nil {
//	    return nil, fmt.Errorf("restore order %s: %w", id, err)
//	}
func RestoreOrder(
	id kernel.UUID,
	courierID *kernel.UUID,
	location kernel.Location,
	volume int,
	status Status,
) (*Order, error) {
	o := &Order{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		o.setID(id),
		o.setLocation(location),
		o.setVolume(volume),
		o.setStatus(status, courierID),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate reports ErrOrderIsNotConstructed for a nil or zero-value order.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares orders by identity only. A nil other is never equal.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Location returns the delivery destination.
func (o *Order) Location() kernel.Location {
	return o.location
}

// Volume returns the space the order needs.
func (o *Order) Volume() int {
	return o.volume
}

// Status returns the lifecycle position.
func (o *Order) Status() Status {
	return o.status
}

// CourierID returns the assigned courier, or nil while the order is still Created.
func (o *Order) CourierID() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

// Assign hands the order to a courier. Assignment happens once per order.
//
// Business rules:
//   - The courier identifier must be valid, otherwise ErrCourierIsNeeded
//   - A completed order fails with ErrOrderIsCompleted
//   - An order with a courier fails with ErrOrderIsAlreadyAssigned
//
// State is unchanged on failure.
func (o *Order) Assign(courierID kernel.UUID) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if courierID.Validate() != nil {
		return ErrCourierIsNeeded
	}
	if o.status == Completed {
		return ErrOrderIsCompleted.WithMessage("order %s is completed", o.id)
	}
	if o.courierID != nil {
		return ErrOrderIsAlreadyAssigned.WithMessage("order %s is already assigned to courier %s", o.id, o.courierID)
	}

	o.courierID = &courierID
	o.status = Assigned
	return nil
}

// Complete marks a delivered order and records an OrderCompleted event.
// The courier reference is kept.
//
// Only Courier.CompleteOrder calls it, after freeing the storage place.
func (o *Order) Complete() error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.courierID == nil {
		return ErrOrderIsNotAssigned.WithMessage("order %s is not assigned", o.id)
	}
	if o.status == Completed {
		return ErrOrderIsCompleted.WithMessage("order %s is already completed", o.id)
	}

	o.status = Completed
	o.RaiseDomainEvent(NewCompletedDomainEvent(o.id, time.Now().UTC()))
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setVolume(volume int) error {
	if volume <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("volume", fmt.Errorf("%d is not greater than 0", volume))
	}
	o.volume = volume
	return nil
}

func (o *Order) setStatus(status Status, courierID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return err
		}
	}
	if err := status.validateCourier(courierID != nil); err != nil {
		return err
	}

	o.status = status
	if courierID != nil {
		id := *courierID
		o.courierID = &id
	}
	return nil
}
