package courier

import (
	"errors"
	"strings"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"
	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/guard"
)

const (
	// DefaultStoragePlaceName names the storage place every new courier starts with.
	DefaultStoragePlaceName = "Bag"
	// DefaultStoragePlaceVolume is the capacity of that first storage place.
	DefaultStoragePlaceVolume = 10
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned for an empty or blank courier name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrSpeedIsRequired is returned for a speed that is not positive.
	ErrSpeedIsRequired = errs.NewValueIsRequiredError("speed")
	// ErrCourierIsNotConstructed is returned when a zero-value or nil Courier is used.
	ErrCourierIsNotConstructed = errors.New("courier must be created via NewCourier or RestoreCourier")

	// ErrCannotTakeOrder is returned when no storage place of the courier fits the order.
	ErrCannotTakeOrder = errs.NewConflictError("cant.take.order", "courier cannot take the order")
	// ErrNoStorageWithSuchOrder is returned when the courier does not carry the order.
	ErrNoStorageWithSuchOrder = errs.NewConflictError("no.storage.with.such.order", "courier does not carry the order")
)

// Courier is the aggregate that carries orders around the grid.
//
// It owns an ordered list of storage places (never empty) and moves by at most
// Speed units of Manhattan distance per step. Orders are referenced by identifier
// only; CompleteOrder is the single place where an order becomes Completed.
//
// Key responsibilities:
//   - Holding courier identity, name and speed
//   - Stepping toward a target without overshooting it
//   - Placing orders into storage places first-fit and freeing them on delivery
//   - Estimating travel time to a location
//
// Business rules:
//   - Name is not blank and speed is positive
//   - A courier always has at least one storage place
//   - Each storage place holds at most one order
//   - A courier is free when no storage place is occupied, busy otherwise
//   - A step spends X distance first, then Y, at most Speed in total
//
// Example usage:
//
//	at, _ := kernel.NewLocation(1, 1)
//	c, err := courier.NewCourier(kernel.NewUUID(), "Ivan", 2, at)
//	if err != nil {
//	    return err
//	}
//	if err = c.AddStoragePlace("Trunk", 30); err != nil {
//	    return err
//	}
//	// c can now carry two orders at once
type Courier struct {
	// id identifies the courier
	id kernel.UUID
	// name is shown to operators, never blank
	name string
	// speed is the Manhattan distance covered per step
	speed int
	// location is the current position on the grid
	location kernel.Location
	// storagePlaces are kept in the order they were added
	storagePlaces []*StoragePlace
	// guard marks couriers built by a constructor
	guard guard.ConstructorGuard
}

// NewCourier creates a courier with one default storage place.
//
// Every argument is validated and all problems are reported together through
// errors.Join.
//
// Business rules applied:
//   - The first storage place is DefaultStoragePlaceName of DefaultStoragePlaceVolume
//   - The courier starts free
//
// Example:
//
//	at, _ := kernel.NewLocation(5, 7)
//	c, err := courier.NewCourier(kernel.NewUUID(), "Alice", 2, at)
//	if err != nil {
//	    return fmt.Errorf("create courier: %w", err)
//	}
func NewCourier(id kernel.UUID, name string, speed int, location kernel.Location) (*Courier, error) {
	c := &Courier{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setSpeed(speed),
		c.setLocation(location),
	); err != nil {
		return nil, err
	}

	if err := c.AddStoragePlace(DefaultStoragePlaceName, DefaultStoragePlaceVolume); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier rebuilds a persisted courier. At least one storage place is required.
//
// Unlike NewCourier it adds no default place: the storage places, occupied or
// not, are taken as they were stored. Repositories use it when loading rows.
//
// Example:
//
//	places := []*courier.StoragePlace{bag, trunk}
//	c, err := courier.RestoreCourier(id, "Alice", 2, at, places)
//	if err != nil {
//	    return nil, fmt.Errorf("restore courier %s: %w", id, err)
//	}
func RestoreCourier(
	id kernel.UUID,
	name string,
	speed int,
	location kernel.Location,
	storagePlaces []*StoragePlace,
) (*Courier, error) {
	c := &Courier{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setSpeed(speed),
		c.setLocation(location),
		c.setStoragePlaces(storagePlaces),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate reports ErrCourierIsNotConstructed for a nil or zero-value courier.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares couriers by identity only. A nil other is never equal.
//
// Example:
//
//	first, _ := courier.NewCourier(id, "Alice", 2, at)
//	second, _ := courier.NewCourier(id, "Bob", 3, at)
//	first.IsEqual(second) // true, same id
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier name.
func (c *Courier) Name() string {
	return c.name
}

// Speed returns the distance covered per step.
func (c *Courier) Speed() int {
	return c.speed
}

// Location returns the current position.
func (c *Courier) Location() kernel.Location {
	return c.location
}

// StoragePlaces returns the places in insertion order. The slice is a copy.
func (c *Courier) StoragePlaces() []*StoragePlace {
	out := make([]*StoragePlace, len(c.storagePlaces))
	copy(out, c.storagePlaces)
	return out
}

// IsFree reports whether none of the storage places holds an order.
func (c *Courier) IsFree() bool {
	for _, sp := range c.storagePlaces {
		if sp.IsOccupied() {
			return false
		}
	}
	return true
}

// CurrentOrderID returns the order held by the first occupied storage place.
// The boolean is false when the courier carries nothing.
//
// A courier carrying several orders delivers them one at a time in storage
// place order, so this is the order AdvanceCouriers moves toward.
func (c *Courier) CurrentOrderID() (kernel.UUID, bool) {
	for _, sp := range c.storagePlaces {
		if id := sp.OrderID(); id != nil {
			return *id, true
		}
	}
	return kernel.UUID{}, false
}

// AddStoragePlace appends an empty storage place with a new identifier.
//
// Business rules:
//   - Name is not blank and volume is positive
//   - Existing places and their contents are untouched
//
// Example:
//
//	if err := c.AddStoragePlace("Trunk", 30); err != nil {
//	    return err
//	}
func (c *Courier) AddStoragePlace(name string, volume int) error {
	place, err := NewStoragePlace(kernel.NewUUID(), name, volume)
	if err != nil {
		return err
	}

	c.storagePlaces = append(c.storagePlaces, place)
	return nil
}

// CanTakeOrder reports whether any storage place fits the order. A nil order cannot be taken.
func (c *Courier) CanTakeOrder(o *order.Order) (bool, error) {
	if o.Validate() != nil {
		return false, nil
	}

	place, err := c.findStorageForVolume(o.Volume())
	if err != nil {
		return false, err
	}

	return place != nil, nil
}

// TakeOrder stores the order in the first storage place that fits it.
//
// It does not change the order itself: assigning the order to this courier is
// the caller's job, done by DispatchService before TakeOrder. ErrCannotTakeOrder
// is returned when nothing fits.
//
// Example:
//
//	if err := o.Assign(c.ID()); err != nil {
//	    return err
//	}
//	if err := c.TakeOrder(o); err != nil {
//	    return err
//	}
func (c *Courier) TakeOrder(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if len(c.storagePlaces) == 0 {
		return ErrCannotTakeOrder.WithMessage("courier %s has no storage places", c.id)
	}

	place, err := c.findStorageForVolume(o.Volume())
	if err != nil {
		return err
	}
	if place == nil {
		return ErrCannotTakeOrder.WithMessage("courier %s has no room for order %s of volume %d", c.id, o.ID(), o.Volume())
	}

	return place.Store(o.ID(), o.Volume())
}

// CompleteOrder frees the storage place holding the order and completes the order.
// When the order refuses to complete the storage place keeps holding it.
//
// This is the only call site of Order.Complete, so a delivered order and its
// freed storage place always change together.
//
// Business rules:
//   - The courier must carry the order, otherwise ErrNoStorageWithSuchOrder
//   - The order must be Assigned
//
// Example:
//
//	arrived, _ := c.Location().IsEqual(o.Location())
//	if arrived {
//	    if err := c.CompleteOrder(o); err != nil {
//	        return err
//	    }
//	}
func (c *Courier) CompleteOrder(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	place := c.findStoragePlaceByOrderID(o.ID())
	if place == nil {
		return ErrNoStorageWithSuchOrder.WithMessage("courier %s does not carry order %s", c.id, o.ID())
	}

	if err := place.Clear(o.ID()); err != nil {
		return err
	}

	if err := o.Complete(); err != nil {
		orderID := o.ID()
		place.orderID = &orderID
		return err
	}

	return nil
}

// CalculateTimeToLocation returns the number of steps (possibly fractional) to reach target.
// It is the Manhattan distance divided by speed; DispatchService compares
// couriers by it.
func (c *Courier) CalculateTimeToLocation(target kernel.Location) (float64, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}

	distance, err := c.location.Distance(target)
	if err != nil {
		return 0, err
	}

	return float64(distance) / float64(c.speed), nil
}

// Move advances the courier one step toward target.
//
// The step spends at most Speed units: horizontal progress first, whatever is
// left on the vertical axis. The target is reached exactly when it is no
// further than Speed away; otherwise the courier stops short without overshooting.
func (c *Courier) Move(target kernel.Location) error {
	if err := target.Validate(); err != nil {
		return err
	}

	dx := int(target.X()) - int(c.location.X())
	dy := int(target.Y()) - int(c.location.Y())

	cruisingRange := c.speed
	moveX := clamp(dx, -cruisingRange, cruisingRange)
	cruisingRange -= absInt(moveX)
	moveY := clamp(dy, -cruisingRange, cruisingRange)

	newLocation, err := kernel.NewLocation(
		kernel.Coordinate(int(c.location.X())+moveX), //nolint:gosec // bounded by the grid
		kernel.Coordinate(int(c.location.Y())+moveY), //nolint:gosec // bounded by the grid
	)
	if err != nil {
		return err
	}

	c.location = newLocation
	return nil
}

func (c *Courier) findStorageForVolume(volume int) (*StoragePlace, error) {
	for _, place := range c.storagePlaces {
		canStore, err := place.CanStore(volume)
		if err != nil {
			return nil, err
		}
		if canStore {
			return place, nil
		}
	}

	return nil, nil //nolint:nilnil // no place fits
}

func (c *Courier) findStoragePlaceByOrderID(orderID kernel.UUID) *StoragePlace {
	for _, place := range c.storagePlaces {
		if place.orderID != nil && place.orderID.IsEqual(orderID) {
			return place
		}
	}
	return nil
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

func (c *Courier) setSpeed(speed int) error {
	if speed <= 0 {
		return ErrSpeedIsRequired
	}

	c.speed = speed
	return nil
}

func (c *Courier) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *Courier) setStoragePlaces(storagePlaces []*StoragePlace) error {
	if len(storagePlaces) == 0 {
		return errs.NewValueIsRequiredError("storagePlaces")
	}

	for _, sp := range storagePlaces {
		if err := sp.Validate(); err != nil {
			return err
		}
	}

	c.storagePlaces = make([]*StoragePlace, len(storagePlaces))
	copy(c.storagePlaces, storagePlaces)
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
