package commands_test

import (
	"testing"

	"courier-dispatch/internal/core/application/usecases/commands"
	"courier-dispatch/internal/core/domain/model/order"
	"courier-dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatches_DeliveryBetweenAssignmentsIsNotOverwritten(t *testing.T) {
	// Arrange
	ctx := t.Context()
	store := newMemStore()

	c := newCourier(t, "Pete", 1, loc(t, 3, 3))
	require.NoError(t, c.AddStoragePlace("Trunk", 20))
	store.putCourier(c)

	nearby := newOrder(t, loc(t, 3, 3), 5)
	distant := newOrder(t, loc(t, 9, 9), 5)
	store.putOrder(nearby)
	store.putOrder(distant)

	assign := commands.NewAssignPendingOrdersCommandHandler(store, services.NewDispatchService(), discardLogger())
	advance := commands.NewAdvanceCouriersCommandHandler(store, discardLogger())

	// A movement tick lands right after the first assignment is committed and
	// delivers that order before the batch reaches the second one.
	var midBatch commands.AdvanceCouriersResult
	store.afterCommit = func() {
		var err error
		midBatch, err = advance.Handle(ctx, commands.NewAdvanceCouriersCommand())
		require.NoError(t, err)
	}

	// Act
	assigned, err := assign.Handle(ctx, mustAssignCommand(t, 0))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, commands.AdvanceCouriersResult{Moved: 1, Completed: 1}, midBatch)
	assert.Equal(t, commands.AssignPendingOrdersResult{Assigned: 2}, assigned)

	delivered, _, err := store.order(nearby.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Completed, delivered.Status())

	stored, _, err := store.courier(c.ID())
	require.NoError(t, err)
	assert.Equal(t, loc(t, 3, 3), stored.Location())
	for _, sp := range stored.StoragePlaces() {
		if id := sp.OrderID(); id != nil {
			assert.False(t, id.IsEqual(nearby.ID()), "completed order is back in storage place %s", sp.Name())
		}
	}
	current, busy := stored.CurrentOrderID()
	require.True(t, busy)
	assert.Equal(t, distant.ID(), current)

	// The second order still gets delivered: 12 steps at speed 1.
	for range 12 {
		_, err = advance.Handle(ctx, commands.NewAdvanceCouriersCommand())
		require.NoError(t, err)
	}

	delivered, _, err = store.order(distant.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Completed, delivered.Status())

	stored, _, err = store.courier(c.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsFree())
	assert.Equal(t, loc(t, 9, 9), stored.Location())
}

func TestBatches_AssignmentBetweenMovesUsesStoredCourier(t *testing.T) {
	// Arrange
	ctx := t.Context()
	store := newMemStore()

	mover := newCourier(t, "Mover", 2, loc(t, 1, 1))
	other := newCourier(t, "Other", 1, loc(t, 10, 10))
	store.putCourier(mover)
	store.putCourier(other)

	carried := newOrder(t, loc(t, 1, 9), 5)
	require.NoError(t, carried.Assign(mover.ID()))
	require.NoError(t, mover.TakeOrder(carried))
	store.putCourier(mover)
	store.putOrder(carried)

	// other is free and listed by the assignment; a new order arrives for it
	fresh := newOrder(t, loc(t, 10, 9), 5)
	store.putOrder(fresh)

	assign := commands.NewAssignPendingOrdersCommandHandler(store, services.NewDispatchService(), discardLogger())
	advance := commands.NewAdvanceCouriersCommandHandler(store, discardLogger())

	var assignedMidTick commands.AssignPendingOrdersResult
	store.afterCommit = func() {
		var err error
		assignedMidTick, err = assign.Handle(ctx, mustAssignCommand(t, 0))
		require.NoError(t, err)
	}

	// Act
	moved, err := advance.Handle(ctx, commands.NewAdvanceCouriersCommand())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, commands.AdvanceCouriersResult{Moved: 1}, moved)
	assert.Equal(t, commands.AssignPendingOrdersResult{Assigned: 1}, assignedMidTick)

	storedMover, _, err := store.courier(mover.ID())
	require.NoError(t, err)
	assert.Equal(t, loc(t, 1, 3), storedMover.Location())
	current, busy := storedMover.CurrentOrderID()
	require.True(t, busy)
	assert.Equal(t, carried.ID(), current)

	storedOther, _, err := store.courier(other.ID())
	require.NoError(t, err)
	current, busy = storedOther.CurrentOrderID()
	require.True(t, busy)
	assert.Equal(t, fresh.ID(), current)

	assignedOrder, _, err := store.order(fresh.ID())
	require.NoError(t, err)
	require.NotNil(t, assignedOrder.CourierID())
	assert.Equal(t, other.ID(), *assignedOrder.CourierID())
}
