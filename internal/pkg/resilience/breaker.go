// Package resilience wraps calls to remote dependencies in circuit breakers.
package resilience

import (
	"errors"
	"log/slog"
	"time"

	"courier-dispatch/internal/pkg/errs"

	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = errs.NewUnavailableError("circuit.is.open", "dependency is unavailable")

type Settings struct {
	Name string
	// MaxRequests is the number of trial calls let through while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts; 0 never resets them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before trying again.
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:                name,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// StateListener observes state changes: 0 closed, 1 half-open, 2 open.
type StateListener func(name string, state int)

type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *slog.Logger
}

// NewBreaker trips after Settings.ConsecutiveFailures failed calls in a row.
// isFailure decides which errors count; nil counts every error.
func NewBreaker(settings Settings, isFailure func(error) bool, onChange StateListener, logger *slog.Logger) *Breaker {
	logger = logger.With("component", "circuit_breaker", "breaker", settings.Name)

	cbSettings := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
			if onChange != nil {
				onChange(name, int(to))
			}
		},
	}
	if isFailure != nil {
		cbSettings.IsSuccessful = func(err error) bool {
			return err == nil || !isFailure(err)
		}
	}

	return &Breaker{
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
		name:   settings.Name,
		logger: logger,
	}
}

// Execute runs fn unless the breaker is open. A rejected call fails with an
// error matching ErrCircuitOpen.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Debug("call rejected", "error", err)
		return ErrCircuitOpen.WithMessage("%s: %v", b.name, err)
	}
	return err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
