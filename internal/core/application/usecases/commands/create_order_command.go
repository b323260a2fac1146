package commands

import (
	"errors"
	"strings"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/guard"
)

var (
	// ErrCreateOrderCommandIsNotConstructed is returned by Validate on a zero value command.
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand",
	)
	// ErrStreetIsRequired rejects a blank street.
	ErrStreetIsRequired = errs.NewValueIsRequiredError("street")
	// ErrVolumeIsInvalid rejects a volume that is not positive.
	ErrVolumeIsInvalid  = errs.NewValueIsInvalidError("volume")
)

// CreateOrderCommand registers a delivery to a street address. The order id comes
// from the caller (the basket id for orders arriving from the shop) so that
// repeated deliveries of the same request create a single order.
type CreateOrderCommand struct { //nolint:recvcheck // setters are used during construction only
	orderID kernel.UUID
	street  string
	volume  int

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates every argument and reports all problems at once.
//
// Example:
//
//	cmd, err := commands.NewCreateOrderCommand(basketID, "Tverskaya", 5)
func NewCreateOrderCommand(orderID kernel.UUID, street string, volume int) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStreet(street),
		cmd.setVolume(volume),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate reports whether the command was built by NewCreateOrderCommand.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the caller supplied order identifier.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Street returns the delivery street.
func (c CreateOrderCommand) Street() string {
	return c.street
}

// Volume returns the order volume.
func (c CreateOrderCommand) Volume() int {
	return c.volume
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setStreet(street string) error {
	if strings.TrimSpace(street) == "" {
		return ErrStreetIsRequired
	}

	c.street = street
	return nil
}

func (c *CreateOrderCommand) setVolume(volume int) error {
	if volume <= 0 {
		return ErrVolumeIsInvalid
	}

	c.volume = volume
	return nil
}
