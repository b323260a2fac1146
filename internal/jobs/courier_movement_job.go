package jobs

import (
	"context"

	"courier-dispatch/internal/core/application/usecases/commands"
)

const AdvanceJobName = "advance_couriers"

type AdvanceCouriersHandler interface {
	Handle(ctx context.Context, cmd commands.AdvanceCouriersCommand) (commands.AdvanceCouriersResult, error)
}

// NewCourierMovementJob moves every busy courier one step per tick.
func NewCourierMovementJob(handler AdvanceCouriersHandler, schedule string, opts Options) *Job {
	var job *Job
	job = newJob(AdvanceJobName, schedule, func(ctx context.Context) error {
		result, err := handler.Handle(ctx, commands.NewAdvanceCouriersCommand())
		if err != nil {
			return err
		}
		if result == (commands.AdvanceCouriersResult{}) {
			return errIdle
		}
		if job.metrics != nil {
			job.metrics.RecordMovement(result.Moved, result.Completed, result.Skipped, result.Failed)
		}
		job.logger.DebugContext(ctx, "couriers advanced",
			"moved", result.Moved, "completed", result.Completed,
			"skipped", result.Skipped, "failed", result.Failed)
		return nil
	}, opts)
	return job
}
