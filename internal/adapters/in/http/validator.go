package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"courier-dispatch/internal/generated/servers"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

// requestValidator checks requests under servers.BasePath against the
// document. Requests it has no route for are left to echo.
func requestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	relative := *doc
	relative.Servers = nil
	router, err := legacy.NewRouter(&relative)
	if err != nil {
		return nil, fmt.Errorf("openapi router: %w", err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			var body []byte
			if req.Body != nil {
				b, readErr := io.ReadAll(req.Body)
				if readErr != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "cannot read request body")
				}
				body = b
				req.Body = io.NopCloser(bytes.NewReader(body))
			}

			routed := req.Clone(req.Context())
			routed.URL.Path = strings.TrimPrefix(req.URL.Path, servers.BasePath)
			routed.Body = io.NopCloser(bytes.NewReader(body))

			route, pathParams, err := router.FindRoute(routed)
			if err != nil {
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					return next(c)
				}
				return fmt.Errorf("find route: %w", err)
			}

			err = openapi3filter.ValidateRequest(req.Context(), &openapi3filter.RequestValidationInput{
				Request:    routed,
				PathParams: pathParams,
				Route:      route,
				Options:    &openapi3filter.Options{MultiError: false},
			})
			if err != nil {
				return c.JSON(http.StatusBadRequest, servers.Error{
					Code:    codeRequestIsInvalid,
					Message: validationMessage(err),
				})
			}
			return next(c)
		}
	}, nil
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	return err.Error()
}
