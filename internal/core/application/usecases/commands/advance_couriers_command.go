package commands

import (
	"errors"

	"courier-dispatch/internal/pkg/guard"
)

// ErrAdvanceCouriersCommandIsNotConstructed is returned by Validate on a zero value command.
var ErrAdvanceCouriersCommandIsNotConstructed = errors.New(
	"AdvanceCouriersCommand must be created via NewAdvanceCouriersCommand",
)

// AdvanceCouriersCommand asks to move every busy courier one step.
type AdvanceCouriersCommand struct {
	guard guard.ConstructorGuard
}

// NewAdvanceCouriersCommand returns a valid command. It carries no arguments.
func NewAdvanceCouriersCommand() AdvanceCouriersCommand {
	return AdvanceCouriersCommand{guard: guard.NewConstructorGuard()}
}

// Validate reports whether the command was built by NewAdvanceCouriersCommand.
func (c AdvanceCouriersCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceCouriersCommandIsNotConstructed)
}
