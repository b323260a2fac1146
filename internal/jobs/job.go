package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courier-dispatch/internal/metrics"
)

const lockKeyPrefix = "courier-dispatch:job:"

// errIdle tells the scheduler that a tick found nothing to do.
var errIdle = errors.New("nothing to do")

// Locker keeps a job from running on two replicas at once. ok is false when
// another replica holds the lock; otherwise unlock releases it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// NoopLocker always grants the lock. It is used when redis is not configured.
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}

type Options struct {
	Locker Locker
	// Timeout bounds one tick. The lock is held for twice as long, so it
	// outlives a tick that overruns its deadline while stopping.
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Job is one scheduled batch use case. It implements cron.Job.
type Job struct {
	name     string
	schedule string
	tick     func(ctx context.Context) error
	locker   Locker
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger

	ctx context.Context //nolint:containedctx // cron.Job.Run takes no context
}

func newJob(name, schedule string, tick func(ctx context.Context) error, opts Options) *Job {
	locker := opts.Locker
	if locker == nil {
		locker = NoopLocker{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Job{
		name:     name,
		schedule: schedule,
		tick:     tick,
		locker:   locker,
		timeout:  timeout,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", name+"_job"),
		ctx:      context.Background(),
	}
}

func (j *Job) Name() string {
	return j.name
}

func (j *Job) Schedule() string {
	return j.schedule
}

// Run is called by cron.
func (j *Job) Run() {
	_ = j.RunOnce(j.ctx)
}

// RunOnce runs a single tick under the job lock. A tick that found nothing
// to do, or whose lock is held elsewhere, is not an error.
func (j *Job) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	started := time.Now()

	unlock, ok, err := j.locker.TryLock(ctx, lockKeyPrefix+j.name, 2*j.timeout)
	if err != nil {
		j.logger.ErrorContext(ctx, "acquire job lock", "error", err)
		j.record(metrics.OutcomeFailed, started)
		return fmt.Errorf("%s: %w", j.name, err)
	}
	if !ok {
		j.logger.DebugContext(ctx, "job is running on another replica")
		j.record(metrics.OutcomeLocked, started)
		return nil
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			j.logger.WarnContext(ctx, "release job lock", "error", err)
		}
	}()

	err = j.tick(ctx)
	switch {
	case err == nil:
		j.record(metrics.OutcomeOK, started)
		return nil
	case errors.Is(err, errIdle):
		j.record(metrics.OutcomeIdle, started)
		return nil
	default:
		j.logger.ErrorContext(ctx, "job failed", "error", err)
		j.record(metrics.OutcomeFailed, started)
		return fmt.Errorf("%s: %w", j.name, err)
	}
}

func (j *Job) record(result string, started time.Time) {
	if j.metrics != nil {
		j.metrics.RecordJobRun(j.name, result, time.Since(started))
	}
}
