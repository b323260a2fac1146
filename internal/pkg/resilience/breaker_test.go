package resilience_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/resilience"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreaker(isFailure func(error) bool, onChange resilience.StateListener) *resilience.Breaker {
	settings := resilience.DefaultSettings("test")
	settings.ConsecutiveFailures = 2
	settings.Timeout = time.Hour
	return resilience.NewBreaker(settings, isFailure, onChange, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var states []int
	b := newBreaker(nil, func(_ string, state int) { states = append(states, state) })
	boom := errors.New("boom")

	require.ErrorIs(t, b.Execute(func() error { return boom }), boom)
	require.ErrorIs(t, b.Execute(func() error { return boom }), boom)
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, []int{int(gobreaker.StateOpen)}, states)

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
	assert.False(t, called)
}

func TestBreaker_IgnoresErrorsThatAreNotFailures(t *testing.T) {
	invalid := errs.NewValueIsInvalidError("street")
	b := newBreaker(func(err error) bool { return errs.KindOf(err) != errs.KindValidation }, nil)

	for range 5 {
		require.ErrorIs(t, b.Execute(func() error { return invalid }), errs.ErrValueIsInvalid)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_PassesSuccess(t *testing.T) {
	b := newBreaker(nil, nil)
	require.NoError(t, b.Execute(func() error { return nil }))
}
