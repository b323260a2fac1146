package courier

import (
	"errors"
	"fmt"
	"strings"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/guard"
)

// Domain errors for storage place operations.
var (
	// ErrStoragePlaceIsNotConstructed is returned when a zero-value or nil StoragePlace is used.
	ErrStoragePlaceIsNotConstructed = errors.New("storage place must be created via NewStoragePlace or RestoreStoragePlace")

	// ErrCannotStoreOrder is returned by Store when the place is occupied or too small.
	ErrCannotStoreOrder = errs.NewConflictError("cant.store.order", "order cannot be stored in this storage place")
	// ErrEmptyStoragePlace is returned by Clear on a place that holds nothing.
	ErrEmptyStoragePlace = errs.NewConflictError("storage.place.is.empty", "storage place is empty")
	// ErrWrongOrder is returned by Clear when the place holds a different order.
	ErrWrongOrder = errs.NewConflictError("storage.place.holds.other.order", "storage place holds another order")
)

// StoragePlace is a compartment of a courier's equipment (a bag, a trunk) that
// holds at most one order whose volume fits its total volume.
//
// It is an entity inside the Courier aggregate and is changed only through the
// courier. The order is referenced by identifier.
//
// Business rules:
//   - Name is not blank and total volume is positive, fixed at creation
//   - At most one order is stored at a time
//   - An order fits when its volume does not exceed the total volume
//   - Clearing requires the order that is actually stored
//
// Example usage:
//
//	trunk, _ := courier.NewStoragePlace(kernel.NewUUID(), "Trunk", 30)
//	if err := trunk.Store(orderID, 12); err != nil {
//	    return err
//	}
//	trunk.IsOccupied() // true
//	_ = trunk.Clear(orderID)
type StoragePlace struct {
	// id identifies the place within its courier
	id kernel.UUID
	// name describes the equipment, e.g. "Bag"
	name string
	// totalVolume is the largest order volume that fits
	totalVolume int
	// orderID is the stored order, nil when empty
	orderID *kernel.UUID
	// guard marks places built by a constructor
	guard guard.ConstructorGuard
}

// NewStoragePlace creates an empty storage place.
//
// Parameters:
//   - id: identifier of the place (must be valid)
//   - name: non-blank description
//   - totalVolume: positive capacity
//
// All invalid arguments are reported together through errors.Join.
func NewStoragePlace(id kernel.UUID, name string, totalVolume int) (*StoragePlace, error) {
	place := &StoragePlace{guard: guard.NewConstructorGuard()}

	if err := errors.Join(place.setID(id), place.setName(name), place.setTotalVolume(totalVolume)); err != nil {
		return nil, err
	}

	return place, nil
}

// RestoreStoragePlace rebuilds a persisted place, occupied when orderID is not nil.
func RestoreStoragePlace(id kernel.UUID, name string, totalVolume int, orderID *kernel.UUID) (*StoragePlace, error) {
	place := &StoragePlace{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		place.setID(id),
		place.setName(name),
		place.setTotalVolume(totalVolume),
		place.setOrderID(orderID),
	); err != nil {
		return nil, err
	}

	return place, nil
}

// Validate reports ErrStoragePlaceIsNotConstructed for a nil or zero-value place.
func (s *StoragePlace) Validate() error {
	if s == nil {
		return ErrStoragePlaceIsNotConstructed
	}
	return s.guard.Validate(ErrStoragePlaceIsNotConstructed)
}

// IsEqual compares places by identity only. A nil other is never equal.
func (s *StoragePlace) IsEqual(other *StoragePlace) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the place identifier.
func (s *StoragePlace) ID() kernel.UUID {
	return s.id
}

// Name returns the place name.
func (s *StoragePlace) Name() string {
	return s.name
}

// TotalVolume returns the capacity fixed at creation.
func (s *StoragePlace) TotalVolume() int {
	return s.totalVolume
}

// OrderID returns a copy of the stored order identifier, nil when the place is empty.
func (s *StoragePlace) OrderID() *kernel.UUID {
	if s.orderID == nil {
		return nil
	}
	id := *s.orderID
	return &id
}

// IsOccupied reports whether an order is stored.
func (s *StoragePlace) IsOccupied() bool {
	return s.orderID != nil
}

// CanStore reports whether an order of the given volume fits into the empty place.
// A volume that is not positive is an error, not a false answer.
func (s *StoragePlace) CanStore(volume int) (bool, error) {
	if volume <= 0 {
		return false, errs.NewValueIsInvalidErrorWithCause("volume", fmt.Errorf("%d is not greater than 0", volume))
	}

	return !s.IsOccupied() && volume <= s.totalVolume, nil
}

// Store puts the order into the place. State is unchanged on failure.
//
// ErrCannotStoreOrder is returned when the place is occupied or too small.
func (s *StoragePlace) Store(orderID kernel.UUID, volume int) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	canStore, err := s.CanStore(volume)
	if err != nil {
		return err
	}
	if !canStore {
		return ErrCannotStoreOrder.WithMessage(
			"order %s of volume %d cannot be stored in %q (volume %d, occupied %t)",
			orderID, volume, s.name, s.totalVolume, s.IsOccupied())
	}

	s.orderID = &orderID
	return nil
}

// Clear frees the place. The given order must be the one currently stored.
//
// Business rules:
//   - Clearing an empty place fails with ErrEmptyStoragePlace
//   - Clearing with another order fails with ErrWrongOrder
func (s *StoragePlace) Clear(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	if !s.IsOccupied() {
		return ErrEmptyStoragePlace.WithMessage("storage place %q is empty, order %s is not there", s.name, orderID)
	}
	if !s.orderID.IsEqual(orderID) {
		return ErrWrongOrder.WithMessage("storage place %q holds order %s, not %s", s.name, s.orderID, orderID)
	}

	s.orderID = nil
	return nil
}

func (s *StoragePlace) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	s.id = id
	return nil
}

func (s *StoragePlace) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("name")
	}

	s.name = name
	return nil
}

func (s *StoragePlace) setTotalVolume(totalVolume int) error {
	if totalVolume <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalVolume", fmt.Errorf("%d is not greater than 0", totalVolume))
	}

	s.totalVolume = totalVolume
	return nil
}

func (s *StoragePlace) setOrderID(orderID *kernel.UUID) error {
	if orderID == nil {
		s.orderID = nil
		return nil
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	id := *orderID
	s.orderID = &id
	return nil
}
