package http

import (
	"errors"
	"fmt"
	"net/http"

	"courier-dispatch/internal/generated/servers"
	"courier-dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	codeRequestIsInvalid = "request.is.invalid"
	codeInternal         = "internal.error"
)

func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {code, message}. Infrastructure errors are
// logged and answered with a generic message.
func respondError(ctx echo.Context, err error) error {
	kind := errs.KindOf(err)
	status := statusOf(kind)
	if status == http.StatusInternalServerError {
		ctx.Logger().Errorf("%s %s: %v", ctx.Request().Method, ctx.Request().URL.Path, err)
		return ctx.JSON(status, servers.Error{Code: codeInternal, Message: "internal error"})
	}
	return ctx.JSON(status, servers.Error{Code: errs.CodeOf(err), Message: err.Error()})
}

func respondBindError(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, servers.Error{
		Code:    codeRequestIsInvalid,
		Message: fmt.Sprintf("invalid request body: %v", bindMessage(err)),
	})
}

func bindMessage(err error) any {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return err
}

// errorHandler renders errors returned by echo itself, such as unknown
// routes, in the same shape as use case errors.
func errorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		_ = respondError(ctx, err)
		return
	}

	code := codeRequestIsInvalid
	switch he.Code {
	case http.StatusNotFound:
		code = "route.is.not.found"
	case http.StatusMethodNotAllowed:
		code = "method.is.not.allowed"
	case http.StatusInternalServerError:
		code = codeInternal
	}
	_ = ctx.JSON(he.Code, servers.Error{Code: code, Message: fmt.Sprint(he.Message)})
}
