package commands

import (
	"errors"
	"fmt"
	"strings"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/guard"
)

// ErrAddStoragePlaceCommandIsNotConstructed is returned by Validate on a zero value command.
var ErrAddStoragePlaceCommandIsNotConstructed = errors.New(
	"AddStoragePlaceCommand must be created via NewAddStoragePlaceCommand",
)

// AddStoragePlaceCommand asks to give an existing courier one more storage place.
//
// Business rules:
//   - the courier id must be a valid identifier
//   - the name must not be blank
//   - the total volume must be greater than zero
type AddStoragePlaceCommand struct { //nolint:recvcheck // setters are used during construction only
	courierID   kernel.UUID
	name        string
	totalVolume int

	guard guard.ConstructorGuard
}

// NewAddStoragePlaceCommand validates every argument and reports all problems at once.
//
// Example:
//
//	cmd, err := commands.NewAddStoragePlaceCommand(courierID, "Trunk", 20)
//	if err != nil {
//		return err
//	}
//	err = handler.Handle(ctx, cmd)
func NewAddStoragePlaceCommand(courierID kernel.UUID, name string, totalVolume int) (AddStoragePlaceCommand, error) {
	cmd := AddStoragePlaceCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setName(name),
		cmd.setTotalVolume(totalVolume),
	); err != nil {
		return AddStoragePlaceCommand{}, err
	}

	return cmd, nil
}

// Validate reports whether the command was built by NewAddStoragePlaceCommand.
func (c AddStoragePlaceCommand) Validate() error {
	return c.guard.Validate(ErrAddStoragePlaceCommandIsNotConstructed)
}

// CourierID returns the courier that receives the storage place.
func (c AddStoragePlaceCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Name returns the storage place name.
func (c AddStoragePlaceCommand) Name() string {
	return c.name
}

// TotalVolume returns the storage place capacity.
func (c AddStoragePlaceCommand) TotalVolume() int {
	return c.totalVolume
}

func (c *AddStoragePlaceCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *AddStoragePlaceCommand) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("name")
	}

	c.name = name
	return nil
}

func (c *AddStoragePlaceCommand) setTotalVolume(totalVolume int) error {
	if totalVolume <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalVolume", fmt.Errorf("%d is not greater than 0", totalVolume))
	}

	c.totalVolume = totalVolume
	return nil
}
