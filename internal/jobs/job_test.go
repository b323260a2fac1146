package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier-dispatch/internal/core/application/usecases/commands"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jobRuns(m *metrics.Metrics, job, result string) float64 {
	return testutil.ToFloat64(m.JobRuns.WithLabelValues(job, result))
}

func TestAssignmentJob_RunsUnderLockAndRecordsResult(t *testing.T) {
	ctx := t.Context()
	m := metrics.New()

	released := false
	locker := new(MockLocker)
	locker.On("TryLock", mock.Anything, "courier-dispatch:job:assign_pending_orders", 2*time.Second).
		Return(func(context.Context) error { released = true; return nil }, true, nil).Once()

	handler := new(MockAssignHandler)
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.AssignPendingOrdersCommand) bool {
		return cmd.BatchSize() == 10
	})).Return(commands.AssignPendingOrdersResult{Assigned: 2, Skipped: 1}, nil).Once()

	job, err := jobs.NewCourierAssignmentJob(handler, 10, "@every 1s", jobs.Options{
		Locker: locker, Timeout: time.Second, Metrics: m, Logger: discardLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, job.RunOnce(ctx))

	assert.True(t, released)
	assert.InDelta(t, 1, jobRuns(m, jobs.AssignJobName, metrics.OutcomeOK), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Orders.WithLabelValues(metrics.OutcomeAssigned)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Orders.WithLabelValues(metrics.OutcomeSkipped)), 0)
	locker.AssertExpectations(t)
	handler.AssertExpectations(t)
}

func TestAssignmentJob_NothingToDoIsIdle(t *testing.T) {
	for name, handlerErr := range map[string]error{
		"no orders":   commands.ErrNoPendingOrders,
		"no couriers": commands.ErrNoFreeCouriers,
	} {
		t.Run(name, func(t *testing.T) {
			m := metrics.New()
			handler := new(MockAssignHandler)
			handler.On("Handle", mock.Anything, mock.Anything).
				Return(commands.AssignPendingOrdersResult{}, handlerErr).Once()

			job, err := jobs.NewCourierAssignmentJob(handler, 0, "@every 1s", jobs.Options{Metrics: m, Logger: discardLogger()})
			require.NoError(t, err)

			require.NoError(t, job.RunOnce(t.Context()))
			assert.InDelta(t, 1, jobRuns(m, jobs.AssignJobName, metrics.OutcomeIdle), 0)
		})
	}
}

func TestAssignmentJob_RejectsNegativeBatchSize(t *testing.T) {
	_, err := jobs.NewCourierAssignmentJob(new(MockAssignHandler), -1, "@every 1s", jobs.Options{Logger: discardLogger()})
	require.Error(t, err)
}

func TestJob_SkipsTickWhenLockIsHeldElsewhere(t *testing.T) {
	m := metrics.New()
	locker := new(MockLocker)
	locker.On("TryLock", mock.Anything, "courier-dispatch:job:advance_couriers", mock.Anything).
		Return(nil, false, nil).Once()
	handler := new(MockAdvanceHandler)

	job := jobs.NewCourierMovementJob(handler, "@every 2s", jobs.Options{Locker: locker, Metrics: m, Logger: discardLogger()})

	require.NoError(t, job.RunOnce(t.Context()))
	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	assert.InDelta(t, 1, jobRuns(m, jobs.AdvanceJobName, metrics.OutcomeLocked), 0)
}

func TestJob_LockErrorFailsTick(t *testing.T) {
	m := metrics.New()
	locker := new(MockLocker)
	locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, false, errors.New("redis is down")).Once()
	handler := new(MockAdvanceHandler)

	job := jobs.NewCourierMovementJob(handler, "@every 2s", jobs.Options{Locker: locker, Metrics: m, Logger: discardLogger()})

	require.Error(t, job.RunOnce(t.Context()))
	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	assert.InDelta(t, 1, jobRuns(m, jobs.AdvanceJobName, metrics.OutcomeFailed), 0)
}

func TestMovementJob_RecordsMovement(t *testing.T) {
	m := metrics.New()
	handler := new(MockAdvanceHandler)
	handler.On("Handle", mock.Anything, mock.Anything).
		Return(commands.AdvanceCouriersResult{Moved: 3, Completed: 1}, nil).Once()

	job := jobs.NewCourierMovementJob(handler, "@every 2s", jobs.Options{Metrics: m, Logger: discardLogger()})

	require.NoError(t, job.RunOnce(t.Context()))
	assert.InDelta(t, 3, testutil.ToFloat64(m.Couriers.WithLabelValues(metrics.OutcomeMoved)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Couriers.WithLabelValues(metrics.OutcomeCompleted)), 0)
	assert.InDelta(t, 1, jobRuns(m, jobs.AdvanceJobName, metrics.OutcomeOK), 0)
}

func TestMovementJob_ReleasesLockOnFailure(t *testing.T) {
	released := false
	locker := new(MockLocker)
	locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).
		Return(func(context.Context) error { released = true; return nil }, true, nil).Once()
	handler := new(MockAdvanceHandler)
	handler.On("Handle", mock.Anything, mock.Anything).
		Return(commands.AdvanceCouriersResult{}, errors.New("db is down")).Once()

	job := jobs.NewCourierMovementJob(handler, "@every 2s", jobs.Options{Locker: locker, Logger: discardLogger()})

	require.Error(t, job.RunOnce(t.Context()))
	assert.True(t, released)
}

func TestJobManager_RejectsBadSchedule(t *testing.T) {
	job := jobs.NewCourierMovementJob(new(MockAdvanceHandler), "every now and then", jobs.Options{Logger: discardLogger()})
	manager := jobs.NewJobManager(discardLogger(), job)

	require.Error(t, manager.StartAll(t.Context()))
}

func TestJobManager_RunsScheduledJobs(t *testing.T) {
	handler := new(MockAdvanceHandler)
	ran := make(chan struct{}, 8)
	handler.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { ran <- struct{}{} }).
		Return(commands.AdvanceCouriersResult{}, nil)

	job := jobs.NewCourierMovementJob(handler, "@every 1s", jobs.Options{Logger: discardLogger()})
	manager := jobs.NewJobManager(discardLogger(), job)

	require.NoError(t, manager.StartAll(t.Context()))
	defer manager.StopAll()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
