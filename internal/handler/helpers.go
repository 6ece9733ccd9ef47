package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/middleware"
	"github.com/eventbook/eventbook-api/internal/model"
)

// principal extracts the authenticated caller placed in the context by
// the JWT middleware. Handlers behind JWTAuth always find one; the
// error path covers misconfigured route wiring.
func principal(c echo.Context) (model.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return model.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return p, nil
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// pageParams reads limit/offset query parameters with sane defaults.
func pageParams(c echo.Context) (limit, offset int) {
	limit = 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// fail translates a service error into the HTTP response the domain
// error taxonomy prescribes. Anything unrecognized is a 500 with a
// generic body so internal detail never leaks to clients.
func fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	switch {
	case errors.Is(err, model.ErrEventNotFound),
		errors.Is(err, model.ErrSeatNotFound),
		errors.Is(err, model.ErrBookingNotFound),
		errors.Is(err, model.ErrPaymentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrSeatUnavailable),
		errors.Is(err, model.ErrHoldExpired),
		errors.Is(err, model.ErrDuplicatePayment),
		errors.Is(err, model.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, model.ErrSeatBatchInvalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
