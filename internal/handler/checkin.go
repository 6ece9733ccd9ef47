package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/model"
	"github.com/eventbook/eventbook-api/internal/service"
)

// CheckinHandler exposes ticket verification for gate scanners.
type CheckinHandler struct {
	Checkin *service.CheckinService
}

// NewCheckinHandler constructs a CheckinHandler.
func NewCheckinHandler(checkin *service.CheckinService) *CheckinHandler {
	if checkin == nil {
		panic("nil service passed to NewCheckinHandler")
	}
	return &CheckinHandler{Checkin: checkin}
}

// checkinResponse is the wire shape of a verification outcome. A bad
// ticket is still a successful scan, so every outcome answers 200 and
// the scanner branches on the outcome field.
type checkinResponse struct {
	Outcome     service.CheckinOutcome `json:"outcome"`
	Reason      string                 `json:"reason,omitempty"`
	Booking     *model.Booking         `json:"booking,omitempty"`
	CheckedInAt *time.Time             `json:"checked_in_at,omitempty"`
}

// Verify handles POST /v1/checkin. The body carries the ticket token
// read from the QR code. Organizer or admin only.
func (h *CheckinHandler) Verify(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		TicketToken string `json:"ticket_token"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TicketToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_token is required"})
	}
	res, err := h.Checkin.Verify(c.Request().Context(), p, body.TicketToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, checkinResponse{
		Outcome:     res.Outcome,
		Reason:      res.Reason,
		Booking:     res.Booking,
		CheckedInAt: res.CheckedInAt,
	})
}
