package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"courier-dispatch/internal/adapters/out/postgres/orderrepo"
	"courier-dispatch/internal/adapters/out/postgres/pgtest"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}

func (s *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pg, err := pgtest.Start(ctx)
	s.Require().NoError(err)
	s.pg = pg

	s.Require().NoError(pg.DB.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (s *OrderRepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.pg.DB.Exec("TRUNCATE TABLE orders").Error)

	s.tracker = new(MockAggregateTracker)
	s.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	s.repository = orderrepo.NewGormOrderRepository(s.pg.DB, s.tracker)
}

func (s *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.pg.Terminate(context.Background()))
}

func (s *OrderRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := s.T().Context()
	o := s.newOrder(3, 9, 7)

	s.Require().NoError(s.repository.Add(ctx, o))
	s.tracker.AssertCalled(s.T(), "TrackAggregate", o.ID(), o)

	stored, found, err := s.repository.Get(ctx, o.ID())
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(o.ID(), stored.ID())
	s.Equal(o.Location(), stored.Location())
	s.Equal(7, stored.Volume())
	s.Equal(order.Created, stored.Status())
	s.Nil(stored.CourierID())
	s.Empty(stored.GetDomainEvents(), "loaded orders carry no events")
}

func (s *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateIDFails() {
	ctx := s.T().Context()
	o := s.newOrder(1, 1, 1)
	s.Require().NoError(s.repository.Add(ctx, o))

	s.Require().Error(s.repository.Add(ctx, o))
}

func (s *OrderRepositoryIntegrationTestSuite) TestGet_UnknownOrderIsNotFound() {
	stored, found, err := s.repository.Get(s.T().Context(), kernel.NewUUID())

	s.Require().NoError(err)
	s.False(found)
	s.Nil(stored)
}

func (s *OrderRepositoryIntegrationTestSuite) TestUpdate_StatusTransitions() {
	ctx := s.T().Context()
	o := s.newOrder(2, 2, 1)
	s.Require().NoError(s.repository.Add(ctx, o))

	courierID := kernel.NewUUID()
	s.Require().NoError(o.Assign(courierID))
	s.Require().NoError(s.repository.Update(ctx, o))

	stored, _, err := s.repository.Get(ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Assigned, stored.Status())
	s.Require().NotNil(stored.CourierID())
	s.Equal(courierID, *stored.CourierID())

	s.Require().NoError(o.Complete())
	s.Require().NoError(s.repository.Update(ctx, o))

	stored, _, err = s.repository.Get(ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Completed, stored.Status())
	s.Equal(courierID, *stored.CourierID())
}

func (s *OrderRepositoryIntegrationTestSuite) TestUpdate_UnknownOrderFails() {
	err := s.repository.Update(s.T().Context(), s.newOrder(1, 1, 1))
	s.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *OrderRepositoryIntegrationTestSuite) TestGetForUpdate() {
	ctx := s.T().Context()
	o := s.newOrder(2, 8, 3)
	s.Require().NoError(s.repository.Add(ctx, o))

	err := s.pg.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, found, err := orderrepo.NewGormOrderRepository(tx, s.tracker).GetForUpdate(ctx, o.ID())
		s.Require().NoError(err)
		s.Require().True(found)
		s.Equal(o.ID(), locked.ID())
		s.Equal(order.Created, locked.Status())
		return nil
	})
	s.Require().NoError(err)

	missing, found, err := s.repository.GetForUpdate(ctx, kernel.NewUUID())
	s.Require().NoError(err)
	s.False(found)
	s.Nil(missing)
}

func (s *OrderRepositoryIntegrationTestSuite) TestGetOldestCreated_FIFOAndLimit() {
	ctx := s.T().Context()

	var created []*order.Order
	for range 3 {
		o := s.newOrder(4, 4, 1)
		s.Require().NoError(s.repository.Add(ctx, o))
		created = append(created, o)
		time.Sleep(5 * time.Millisecond)
	}

	assigned := s.newOrder(4, 4, 1)
	s.Require().NoError(s.repository.Add(ctx, assigned))
	s.Require().NoError(assigned.Assign(kernel.NewUUID()))
	s.Require().NoError(s.repository.Update(ctx, assigned))

	all, err := s.repository.GetOldestCreated(ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for i, o := range created {
		s.Equal(o.ID(), all[i].ID())
	}

	limited, err := s.repository.GetOldestCreated(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(limited, 2)
	s.Equal(created[0].ID(), limited[0].ID())
	s.Equal(created[1].ID(), limited[1].ID())
}

func (s *OrderRepositoryIntegrationTestSuite) TestUpdate_KeepsCreationTime() {
	ctx := s.T().Context()
	first := s.newOrder(1, 1, 1)
	second := s.newOrder(1, 1, 1)
	s.Require().NoError(s.repository.Add(ctx, first))
	time.Sleep(5 * time.Millisecond)
	s.Require().NoError(s.repository.Add(ctx, second))

	// Updating the older order must not move it behind the newer one.
	s.Require().NoError(s.repository.Update(ctx, first))

	orders, err := s.repository.GetOldestCreated(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Equal(first.ID(), orders[0].ID())
}

func (s *OrderRepositoryIntegrationTestSuite) newOrder(x, y kernel.Coordinate, volume int) *order.Order {
	l, err := kernel.NewLocation(x, y)
	s.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), l, volume)
	s.Require().NoError(err)
	return o
}
