package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// OutboxListener turns Postgres notifications on a channel into relay wake-ups.
type OutboxListener struct {
	listener *pq.Listener
	wakeups  chan struct{}
	logger   *slog.Logger
}

func NewOutboxListener(dsn, channel string, logger *slog.Logger) (*OutboxListener, error) {
	logger = logger.With("component", "outbox_listener", "channel", channel)
	listener := pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("listener event", "event", int(ev), "error", err)
		}
	})
	if err := listener.Listen(channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}
	return &OutboxListener{
		listener: listener,
		wakeups:  make(chan struct{}, 1),
		logger:   logger,
	}, nil
}

// Wakeups is coalescing: many notifications before a read count as one.
func (l *OutboxListener) Wakeups() <-chan struct{} {
	return l.wakeups
}

// Run forwards notifications until ctx is cancelled. A nil notification
// follows a reconnect, when notifications may have been missed, and is
// forwarded as well.
func (l *OutboxListener) Run(ctx context.Context) error {
	defer func() {
		if err := l.listener.Close(); err != nil {
			l.logger.Warn("close listener", "error", err)
		}
	}()

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.listener.Notify:
			select {
			case l.wakeups <- struct{}{}:
			default:
			}
		case <-ping.C:
			if err := l.listener.Ping(); err != nil {
				l.logger.Warn("listener ping", "error", err)
			}
		}
	}
}
