package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/service"
)

// SeatHandler exposes the hold and release operations of the seat
// ledger. Holds are the contended path of the whole service, so these
// routes sit behind the rate limiter in addition to JWT auth.
type SeatHandler struct {
	Ledger *service.SeatLedger
}

// NewSeatHandler constructs a SeatHandler.
func NewSeatHandler(ledger *service.SeatLedger) *SeatHandler {
	if ledger == nil {
		panic("nil ledger passed to NewSeatHandler")
	}
	return &SeatHandler{Ledger: ledger}
}

// Hold handles POST /v1/seats/:id/hold. On success it returns the hold
// token and its expiry; the caller must present the token when
// creating the booking. Losing a race for the seat yields 409.
func (h *SeatHandler) Hold(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return fail(c, err)
	}
	seatID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	hold, err := h.Ledger.TryHold(c.Request().Context(), seatID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, hold)
}

// Release handles DELETE /v1/seats/:id/hold. Releasing a seat that is
// already free succeeds; releasing a booked seat is a conflict.
func (h *SeatHandler) Release(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return fail(c, err)
	}
	seatID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Ledger.Release(c.Request().Context(), seatID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
