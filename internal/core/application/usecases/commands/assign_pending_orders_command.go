package commands

import (
	"errors"
	"fmt"

	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/guard"
)

// ErrAssignPendingOrdersCommandIsNotConstructed is returned by Validate on a zero value command.
var ErrAssignPendingOrdersCommandIsNotConstructed = errors.New(
	"AssignPendingOrdersCommand must be created via NewAssignPendingOrdersCommand",
)

// AssignPendingOrdersCommand asks to dispatch waiting orders, oldest first.
// BatchSize bounds how many orders one run looks at; zero means all of them.
type AssignPendingOrdersCommand struct { //nolint:recvcheck // setters are used during construction only
	batchSize int
	guard     guard.ConstructorGuard
}

// NewAssignPendingOrdersCommand rejects a negative batch size.
//
// Example:
//
//	cmd, err := commands.NewAssignPendingOrdersCommand(50) // at most 50 orders per run
func NewAssignPendingOrdersCommand(batchSize int) (AssignPendingOrdersCommand, error) {
	cmd := AssignPendingOrdersCommand{guard: guard.NewConstructorGuard()}
	if err := cmd.setBatchSize(batchSize); err != nil {
		return AssignPendingOrdersCommand{}, err
	}
	return cmd, nil
}

// Validate reports whether the command was built by NewAssignPendingOrdersCommand.
func (c AssignPendingOrdersCommand) Validate() error {
	return c.guard.Validate(ErrAssignPendingOrdersCommandIsNotConstructed)
}

// BatchSize returns the order limit of one run, zero for no limit.
func (c AssignPendingOrdersCommand) BatchSize() int {
	return c.batchSize
}

func (c *AssignPendingOrdersCommand) setBatchSize(batchSize int) error {
	if batchSize < 0 {
		return errs.NewValueIsInvalidErrorWithCause("batchSize", fmt.Errorf("%d is negative", batchSize))
	}
	c.batchSize = batchSize
	return nil
}
