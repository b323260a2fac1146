package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"courier-dispatch/internal/core/ports"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/pkg/errs"
)

// OutboxRelay moves stored domain events to the message bus.
//
// Messages go out oldest first and are marked processed one by one after a
// successful publish. A failed publish ends the batch and the message is
// tried again on the next wake-up, so delivery is at least once. A message
// the producer rejects as malformed is marked processed and logged, since
// it would otherwise block every message behind it.
type OutboxRelay struct {
	outbox   ports.OutboxRepository
	producer ports.MessageBusProducer
	batch    int
	interval time.Duration
	wakeups  <-chan struct{}
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewOutboxRelay polls every interval. wakeups may be nil.
func NewOutboxRelay(
	outbox ports.OutboxRepository,
	producer ports.MessageBusProducer,
	batch int,
	interval time.Duration,
	wakeups <-chan struct{},
	m *metrics.Metrics,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		outbox:   outbox,
		producer: producer,
		batch:    batch,
		interval: interval,
		wakeups:  wakeups,
		metrics:  m,
		logger:   logger.With("component", "outbox_relay"),
		now:      time.Now,
	}
}

// Run relays until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "outbox relay started", "interval", r.interval, "batch", r.batch)
	for {
		r.drain(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
		case <-r.wakeups:
		}
	}
}

// drain relays full batches until the outbox is empty or a batch fails.
func (r *OutboxRelay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.RelayBatch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.ErrorContext(ctx, "relay outbox batch", "error", err)
			}
			return
		}
		if n < r.batch {
			return
		}
	}
}

// RelayBatch publishes up to one batch and returns how many messages were
// marked processed.
func (r *OutboxRelay) RelayBatch(ctx context.Context) (int, error) {
	messages, err := r.outbox.GetUnprocessed(ctx, r.batch)
	if err != nil {
		return 0, fmt.Errorf("load outbox: %w", err)
	}

	processed := 0
	for _, msg := range messages {
		err := r.producer.Publish(ctx, msg)
		r.record(msg.Name, err == nil)
		if err != nil {
			if errs.KindOf(err) != errs.KindValidation {
				return processed, fmt.Errorf("publish %s: %w", msg.ID, err)
			}
			r.logger.ErrorContext(ctx, "dropping malformed outbox message",
				"event_id", msg.ID.String(), "event", msg.Name, "error", err)
		}

		if err := r.outbox.MarkProcessed(ctx, msg.ID, r.now().UTC()); err != nil {
			return processed, fmt.Errorf("mark %s processed: %w", msg.ID, err)
		}
		processed++
	}
	return processed, nil
}

func (r *OutboxRelay) record(event string, ok bool) {
	if r.metrics != nil {
		r.metrics.RecordOutboxPublish(event, ok)
	}
}
