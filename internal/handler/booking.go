package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/service"
)

// BookingHandler exposes booking creation, cancellation, lookups and
// the ticket QR image. Ownership checks live in the service layer;
// the handler only parses, delegates and renders.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// Create handles POST /v1/bookings. The body names the event, the seat
// and optionally a hold token obtained earlier; with no token the seat
// is claimed and booked in one step. A lost race yields 409.
func (h *BookingHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		EventID   uint64 `json:"event_id"`
		SeatID    uint64 `json:"seat_id"`
		HoldToken string `json:"hold_token"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == 0 || body.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and seat_id are required"})
	}
	booking, err := h.Bookings.Create(c.Request().Context(), p, body.EventID, body.SeatID, body.HoldToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// Cancel handles POST /v1/bookings/:id/cancel. The freed seat returns
// to the pool in the same transaction.
func (h *BookingHandler) Cancel(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	booking, err := h.Bookings.Cancel(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	booking, err := h.Bookings.GetByID(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// GetByNumber handles GET /v1/bookings/number/:number, the lookup used
// by support staff working from a confirmation email.
func (h *BookingHandler) GetByNumber(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	number := c.Param("number")
	if number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking number"})
	}
	booking, err := h.Bookings.GetByNumber(c.Request().Context(), p, number)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ListMine handles GET /v1/bookings and returns the caller's own
// bookings, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	limit, offset := pageParams(c)
	bookings, err := h.Bookings.ListByUser(c.Request().Context(), p, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// ListByEvent handles GET /v1/events/:id/bookings for organizers
// reviewing sales on their own events.
func (h *BookingHandler) ListByEvent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	limit, offset := pageParams(c)
	bookings, err := h.Bookings.ListByEvent(c.Request().Context(), p, eventID, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// TicketQR handles GET /v1/bookings/:id/qr and answers a PNG encoding
// of the booking's ticket token, suitable for gate scanners.
func (h *BookingHandler) TicketQR(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	png, err := h.Bookings.TicketQR(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
