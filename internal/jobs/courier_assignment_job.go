package jobs

import (
	"context"
	"errors"
	"fmt"

	"courier-dispatch/internal/core/application/usecases/commands"
)

const AssignJobName = "assign_pending_orders"

type AssignPendingOrdersHandler interface {
	Handle(ctx context.Context, cmd commands.AssignPendingOrdersCommand) (commands.AssignPendingOrdersResult, error)
}

// NewCourierAssignmentJob dispatches up to batchSize Created orders per tick.
// Having no orders or no free couriers makes the tick idle.
func NewCourierAssignmentJob(handler AssignPendingOrdersHandler, batchSize int, schedule string, opts Options) (*Job, error) {
	cmd, err := commands.NewAssignPendingOrdersCommand(batchSize)
	if err != nil {
		return nil, fmt.Errorf("assignment job: %w", err)
	}

	var job *Job
	job = newJob(AssignJobName, schedule, func(ctx context.Context) error {
		result, err := handler.Handle(ctx, cmd)
		if errors.Is(err, commands.ErrNoPendingOrders) || errors.Is(err, commands.ErrNoFreeCouriers) {
			return errIdle
		}
		if err != nil {
			return err
		}
		if job.metrics != nil {
			job.metrics.RecordAssignment(result.Assigned, result.Skipped, result.Failed)
		}
		job.logger.InfoContext(ctx, "orders dispatched",
			"assigned", result.Assigned, "skipped", result.Skipped, "failed", result.Failed)
		return nil
	}, opts)
	return job, nil
}
