package commands

import (
	"errors"
	"strings"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/pkg/guard"
)

// ErrCreateCourierCommandIsNotConstructed is returned by Validate on a zero value command.
var ErrCreateCourierCommandIsNotConstructed = errors.New(
	"CreateCourierCommand must be created via NewCreateCourierCommand",
)

// CreateCourierCommand asks to register a courier with a name and a speed.
// The courier starts at a random grid point with a default bag.
type CreateCourierCommand struct { //nolint:recvcheck // setters are used during construction only
	courierID kernel.UUID
	name      string
	speed     int

	guard guard.ConstructorGuard
}

// NewCreateCourierCommand assigns the new courier its identifier up front so the
// caller can return it before the courier is stored.
func NewCreateCourierCommand(name string, speed int) (CreateCourierCommand, error) {
	cmd := CreateCourierCommand{
		courierID: kernel.NewUUID(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(cmd.setName(name), cmd.setSpeed(speed)); err != nil {
		return CreateCourierCommand{}, err
	}

	return cmd, nil
}

// Validate reports whether the command was built by NewCreateCourierCommand.
func (c CreateCourierCommand) Validate() error {
	return c.guard.Validate(ErrCreateCourierCommandIsNotConstructed)
}

// CourierID returns the identifier reserved for the new courier.
func (c CreateCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Name returns the courier name.
func (c CreateCourierCommand) Name() string {
	return c.name
}

// Speed returns the number of grid steps the courier covers per tick.
func (c CreateCourierCommand) Speed() int {
	return c.speed
}

func (c *CreateCourierCommand) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return courier.ErrNameIsRequired
	}

	c.name = name
	return nil
}

func (c *CreateCourierCommand) setSpeed(speed int) error {
	if speed <= 0 {
		return courier.ErrSpeedIsRequired
	}

	c.speed = speed
	return nil
}
