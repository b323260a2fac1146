package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// JobManager runs the scheduled jobs on one cron instance with second precision.
// A tick that is still running when the next one is due is skipped.
type JobManager struct {
	cron   *cron.Cron
	jobs   []*Job
	logger *slog.Logger
}

func NewJobManager(logger *slog.Logger, jobs ...*Job) *JobManager {
	logger = logger.With("component", "job_manager")
	cronLogger := slogCronLogger{logger: logger}
	return &JobManager{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		jobs:   jobs,
		logger: logger,
	}
}

// StartAll schedules every job. Ticks run with ctx, so cancelling it aborts
// running ticks; StopAll still has to be called to stop the scheduler.
func (jm *JobManager) StartAll(ctx context.Context) error {
	for _, job := range jm.jobs {
		job.ctx = ctx
		if _, err := jm.cron.AddJob(job.Schedule(), job); err != nil {
			return fmt.Errorf("schedule %s with %q: %w", job.Name(), job.Schedule(), err)
		}
		jm.logger.InfoContext(ctx, "job scheduled", "job", job.Name(), "schedule", job.Schedule())
	}
	jm.cron.Start()
	return nil
}

// StopAll stops the scheduler and waits for running ticks to return.
func (jm *JobManager) StopAll() {
	<-jm.cron.Stop().Done()
	jm.logger.Info("jobs stopped")
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
