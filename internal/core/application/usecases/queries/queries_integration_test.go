package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "courier-dispatch/internal/adapters/out/postgres"
	"courier-dispatch/internal/adapters/out/postgres/pgtest"
	"courier-dispatch/internal/core/application/usecases/queries"
	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"
	"courier-dispatch/internal/core/ports"

	"github.com/stretchr/testify/suite"
)

type QueriesIntegrationTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	factory ports.UnitOfWorkFactory
}

func TestQueriesIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(QueriesIntegrationTestSuite))
}

func (s *QueriesIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pg, err := pgtest.Start(ctx)
	s.Require().NoError(err)
	s.pg = pg

	s.Require().NoError(postgres_adapter.Migrate(ctx, pg.DB))
	s.factory = postgres_adapter.NewGormUnitOfWorkFactory(pg.DB)
}

func (s *QueriesIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.pg.Terminate(context.Background()))
}

func (s *QueriesIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.T().Context()))
}

func (s *QueriesIntegrationTestSuite) TestGetAllCouriers_Empty() {
	handler := queries.NewGetAllCouriersQueryHandler(s.pg.DB)

	result, err := handler.Handle(s.T().Context(), queries.NewGetAllCouriersQuery())

	s.Require().NoError(err)
	s.NotNil(result)
	s.Empty(result)
}

func (s *QueriesIntegrationTestSuite) TestGetAllCouriers_SortedByName() {
	ctx := s.T().Context()
	charlie := s.addCourier("Charlie", 10, 10)
	alice := s.addCourier("Alice", 3, 4)
	bob := s.addCourier("Bob", 7, 2)

	handler := queries.NewGetAllCouriersQueryHandler(s.pg.DB)
	result, err := handler.Handle(ctx, queries.NewGetAllCouriersQuery())

	s.Require().NoError(err)
	s.Equal([]queries.CourierView{
		{ID: alice.ID(), Name: "Alice", Location: queries.LocationView{X: 3, Y: 4}},
		{ID: bob.ID(), Name: "Bob", Location: queries.LocationView{X: 7, Y: 2}},
		{ID: charlie.ID(), Name: "Charlie", Location: queries.LocationView{X: 10, Y: 10}},
	}, result)
}

func (s *QueriesIntegrationTestSuite) TestGetUncompletedOrders_SkipsCompleted() {
	ctx := s.T().Context()
	c := s.addCourier("Alice", 1, 1)

	created := s.addOrder(2, 3)
	time.Sleep(5 * time.Millisecond)
	assigned := s.addOrder(4, 5)
	time.Sleep(5 * time.Millisecond)
	completed := s.addOrder(6, 7)

	s.Require().NoError(assigned.Assign(c.ID()))
	s.Require().NoError(completed.Assign(c.ID()))
	s.Require().NoError(completed.Complete())
	s.save(assigned)
	s.save(completed)

	handler := queries.NewGetUncompletedOrdersQueryHandler(s.pg.DB)
	result, err := handler.Handle(ctx, queries.NewGetUncompletedOrdersQuery())

	s.Require().NoError(err)
	s.Equal([]queries.OrderView{
		{ID: created.ID(), Location: queries.LocationView{X: 2, Y: 3}},
		{ID: assigned.ID(), Location: queries.LocationView{X: 4, Y: 5}},
	}, result)
}

func (s *QueriesIntegrationTestSuite) TestUnconstructedQueries() {
	ctx := s.T().Context()

	_, err := queries.NewGetAllCouriersQueryHandler(s.pg.DB).Handle(ctx, queries.GetAllCouriersQuery{})
	s.Require().ErrorIs(err, queries.ErrGetAllCouriersQueryIsNotConstructed)

	_, err = queries.NewGetUncompletedOrdersQueryHandler(s.pg.DB).Handle(ctx, queries.GetUncompletedOrdersQuery{})
	s.Require().ErrorIs(err, queries.ErrGetUncompletedOrdersQueryIsNotConstructed)
}

func (s *QueriesIntegrationTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.T().Context())
	cancel()

	result, err := queries.NewGetAllCouriersQueryHandler(s.pg.DB).Handle(ctx, queries.NewGetAllCouriersQuery())

	s.Require().Error(err)
	s.Nil(result)
}

func (s *QueriesIntegrationTestSuite) addCourier(name string, x, y kernel.Coordinate) *courier.Courier {
	l, err := kernel.NewLocation(x, y)
	s.Require().NoError(err)
	c, err := courier.NewCourier(kernel.NewUUID(), name, 2, l)
	s.Require().NoError(err)
	s.Require().NoError(s.factory.Create().CourierRepository().Add(s.T().Context(), c))
	return c
}

func (s *QueriesIntegrationTestSuite) addOrder(x, y kernel.Coordinate) *order.Order {
	l, err := kernel.NewLocation(x, y)
	s.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), l, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.factory.Create().OrderRepository().Add(s.T().Context(), o))
	return o
}

func (s *QueriesIntegrationTestSuite) save(o *order.Order) {
	s.Require().NoError(s.factory.Create().OrderRepository().Update(s.T().Context(), o))
}
