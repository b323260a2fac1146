// Package servers holds the HTTP contract of the service: the OpenAPI
// document, its request and response types and the echo server interface.
package servers

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// BasePath is the prefix of every operation, as declared in servers[0].
const BasePath = "/api/v1"

//go:embed openapi.yml
var spec []byte

// Location defines model for Location.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Courier defines model for Courier.
type Courier struct {
	Id       openapi_types.UUID `json:"id"`
	Location Location           `json:"location"`
	Name     string             `json:"name"`
}

// Order defines model for Order.
type Order struct {
	Id       openapi_types.UUID `json:"id"`
	Location Location           `json:"location"`
}

// NewCourier defines model for NewCourier.
type NewCourier struct {
	Name  string `json:"name"`
	Speed int    `json:"speed"`
}

// NewStoragePlace defines model for NewStoragePlace.
type NewStoragePlace struct {
	Name        string `json:"name"`
	TotalVolume int    `json:"totalVolume"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	Street string `json:"street"`
	Volume int    `json:"volume"`
}

// Created defines model for Created.
type Created struct {
	Id openapi_types.UUID `json:"id"`
}

// Error defines model for Error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List couriers
	// (GET /couriers)
	GetCouriers(ctx echo.Context) error
	// Hire a courier
	// (POST /couriers)
	CreateCourier(ctx echo.Context) error
	// Give a courier another storage place
	// (POST /couriers/{courierId}/storage-places)
	AddStoragePlace(ctx echo.Context, courierId openapi_types.UUID) error
	// List orders that are not completed yet
	// (GET /orders)
	GetOrders(ctx echo.Context) error
	// Place an order
	// (POST /orders)
	CreateOrder(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) GetCouriers(ctx echo.Context) error {
	return w.Handler.GetCouriers(ctx)
}

func (w *ServerInterfaceWrapper) CreateCourier(ctx echo.Context) error {
	return w.Handler.CreateCourier(ctx)
}

func (w *ServerInterfaceWrapper) AddStoragePlace(ctx echo.Context) error {
	var courierId openapi_types.UUID

	err := runtime.BindStyledParameterWithOptions("simple", "courierId", ctx.Param("courierId"), &courierId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter courierId: %s", err))
	}

	return w.Handler.AddStoragePlace(ctx, courierId)
}

func (w *ServerInterfaceWrapper) GetOrders(ctx echo.Context) error {
	return w.Handler.GetOrders(ctx)
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the routes under baseURL.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/couriers", wrapper.GetCouriers)
	router.POST(baseURL+"/couriers", wrapper.CreateCourier)
	router.POST(baseURL+"/couriers/:courierId/storage-places", wrapper.AddStoragePlace)
	router.GET(baseURL+"/orders", wrapper.GetOrders)
	router.POST(baseURL+"/orders", wrapper.CreateOrder)
}

var (
	swaggerOnce sync.Once
	swaggerDoc  *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the embedded OpenAPI document. The document is parsed
// and validated once; callers must not modify it.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(spec)
		if err != nil {
			swaggerErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			swaggerErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		swaggerDoc = doc
	})
	return swaggerDoc, swaggerErr
}

// Spec returns the raw embedded document.
func Spec() []byte {
	return spec
}
