package http

import (
	"context"
	"net/http"

	"courier-dispatch/internal/core/application/usecases/commands"
	"courier-dispatch/internal/core/application/usecases/queries"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type CreateCourierHandler interface {
	Handle(ctx context.Context, cmd commands.CreateCourierCommand) error
}

type AddStoragePlaceHandler interface {
	Handle(ctx context.Context, cmd commands.AddStoragePlaceCommand) error
}

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
}

type GetAllCouriersHandler interface {
	Handle(ctx context.Context, query queries.GetAllCouriersQuery) ([]queries.CourierView, error)
}

type GetUncompletedOrdersHandler interface {
	Handle(ctx context.Context, query queries.GetUncompletedOrdersQuery) ([]queries.OrderView, error)
}

// Server implements servers.ServerInterface on top of the use cases.
type Server struct {
	// Command handlers
	createCourierHandler   CreateCourierHandler
	addStoragePlaceHandler AddStoragePlaceHandler
	createOrderHandler     CreateOrderHandler

	// Query handlers
	getAllCouriersHandler       GetAllCouriersHandler
	getUncompletedOrdersHandler GetUncompletedOrdersHandler
}

var _ servers.ServerInterface = (*Server)(nil)

func NewServer(
	createCourierHandler CreateCourierHandler,
	addStoragePlaceHandler AddStoragePlaceHandler,
	createOrderHandler CreateOrderHandler,
	getAllCouriersHandler GetAllCouriersHandler,
	getUncompletedOrdersHandler GetUncompletedOrdersHandler,
) *Server {
	return &Server{
		createCourierHandler:        createCourierHandler,
		addStoragePlaceHandler:      addStoragePlaceHandler,
		createOrderHandler:          createOrderHandler,
		getAllCouriersHandler:       getAllCouriersHandler,
		getUncompletedOrdersHandler: getUncompletedOrdersHandler,
	}
}

// GetCouriers handles GET /api/v1/couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	couriers, err := s.getAllCouriersHandler.Handle(ctx.Request().Context(), queries.NewGetAllCouriersQuery())
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]servers.Courier, len(couriers))
	for i, c := range couriers {
		response[i] = servers.Courier{
			Id:       c.ID.Bytes(),
			Name:     c.Name,
			Location: servers.Location{X: c.Location.X, Y: c.Location.Y},
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateCourier handles POST /api/v1/couriers. The courier starts at a random
// location.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var body servers.NewCourier
	if err := ctx.Bind(&body); err != nil {
		return respondBindError(ctx, err)
	}

	cmd, err := commands.NewCreateCourierCommand(body.Name, body.Speed)
	if err != nil {
		return respondError(ctx, err)
	}
	if err := s.createCourierHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, servers.Created{Id: cmd.CourierID().Bytes()})
}

// AddStoragePlace handles POST /api/v1/couriers/{courierId}/storage-places.
func (s *Server) AddStoragePlace(ctx echo.Context, courierId openapi_types.UUID) error {
	courierID, err := kernel.UUIDFromBytes(courierId[:])
	if err != nil {
		return respondError(ctx, err)
	}

	var body servers.NewStoragePlace
	if err := ctx.Bind(&body); err != nil {
		return respondBindError(ctx, err)
	}

	cmd, err := commands.NewAddStoragePlaceCommand(courierID, body.Name, body.TotalVolume)
	if err != nil {
		return respondError(ctx, err)
	}
	if err := s.addStoragePlaceHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusCreated)
}

// GetOrders handles GET /api/v1/orders.
func (s *Server) GetOrders(ctx echo.Context) error {
	orders, err := s.getUncompletedOrdersHandler.Handle(ctx.Request().Context(), queries.NewGetUncompletedOrdersQuery())
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]servers.Order, len(orders))
	for i, o := range orders {
		response[i] = servers.Order{
			Id:       o.ID.Bytes(),
			Location: servers.Location{X: o.Location.X, Y: o.Location.Y},
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateOrder handles POST /api/v1/orders. The order id is generated here.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body servers.NewOrder
	if err := ctx.Bind(&body); err != nil {
		return respondBindError(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), body.Street, body.Volume)
	if err != nil {
		return respondError(ctx, err)
	}
	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, servers.Created{Id: cmd.OrderID().Bytes()})
}
