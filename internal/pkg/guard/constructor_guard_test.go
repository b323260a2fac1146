package guard_test

import (
	"errors"
	"testing"

	"courier-dispatch/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotBuilt := errors.New("courier must be created via NewCourier")

	t.Run("constructed_guard_passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotBuilt))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_returns_given_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, errNotBuilt, g.Validate(errNotBuilt))
	})

	t.Run("zero_value_falls_back_to_default", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, guard.ErrDefaultConstructorGuard, g.Validate(nil))
	})

	t.Run("copies_keep_state", func(t *testing.T) {
		g := guard.NewConstructorGuard()
		cp := g

		require.NoError(t, cp.Validate(errNotBuilt))
	})
}

func TestConstructorGuard_EmbeddedInValue(t *testing.T) {
	type bag struct {
		volume int
		guard  guard.ConstructorGuard
	}
	errBag := errors.New("bag must be created via newBag")
	newBag := func(volume int) bag { return bag{volume: volume, guard: guard.NewConstructorGuard()} }

	assert.NoError(t, newBag(10).guard.Validate(errBag))
	assert.Equal(t, errBag, bag{}.guard.Validate(errBag))
}

func BenchmarkConstructorGuard_Validate(b *testing.B) {
	g := guard.NewConstructorGuard()
	err := errors.New("not constructed")
	for range b.N {
		_ = g.Validate(err)
	}
}
