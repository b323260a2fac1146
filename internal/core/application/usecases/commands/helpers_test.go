package commands_test

import (
	"io"
	"log/slog"
	"testing"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loc(t *testing.T, x, y kernel.Coordinate) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(x, y)
	require.NoError(t, err)
	return l
}

func newCourier(t *testing.T, name string, speed int, at kernel.Location) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name, speed, at)
	require.NoError(t, err)
	return c
}

func newOrder(t *testing.T, at kernel.Location, volume int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), at, volume)
	require.NoError(t, err)
	return o
}

// assignedPair returns a courier already carrying a freshly assigned order.
func assignedPair(t *testing.T, courierAt, orderAt kernel.Location, speed int) (*courier.Courier, *order.Order) {
	t.Helper()
	c := newCourier(t, "Pete", speed, courierAt)
	o := newOrder(t, orderAt, 5)
	require.NoError(t, o.Assign(c.ID()))
	require.NoError(t, c.TakeOrder(o))
	return c, o
}

// storedCopy returns an empty courier with the identity of c, standing at a
// location the store has since recorded for it.
func storedCopy(t *testing.T, c *courier.Courier, at kernel.Location) *courier.Courier {
	t.Helper()
	copied, err := courier.NewCourier(c.ID(), c.Name(), c.Speed(), at)
	require.NoError(t, err)
	return copied
}

// copyOrder returns a Created order with the identity and contents of o, as a
// separate read from the store would.
func copyOrder(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	copied, err := order.RestoreOrder(o.ID(), nil, o.Location(), o.Volume(), order.Created)
	require.NoError(t, err)
	return copied
}
