// Package jobs runs the background work of the dispatch service.
//
// # Scheduled jobs
//
// Two batch use cases run on github.com/robfig/cron/v3 schedules with second
// precision:
//
//   - assign_pending_orders dispatches the oldest Created orders to free couriers;
//   - advance_couriers moves busy couriers one step and completes delivered orders.
//
// Each tick takes the lock "courier-dispatch:job:<name>" through a Locker, so
// only one replica runs a given job at a time. Without redis the NoopLocker
// is used. Within a process cron.SkipIfStillRunning keeps ticks from
// overlapping.
//
//	manager := jobs.NewJobManager(logger, assignJob, advanceJob)
//	if err := manager.StartAll(ctx); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// # Outbox relay
//
// OutboxRelay publishes the domain events stored by the unit of work. It wakes
// up on a poll ticker and on Postgres notifications received through
// OutboxListener.
package jobs
