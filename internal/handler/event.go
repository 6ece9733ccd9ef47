package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/model"
	"github.com/eventbook/eventbook-api/internal/service"
)

// EventHandler exposes event and seat administration plus public
// event/seat browsing. Creation and seat batches sit behind the
// organizer role; reads are open to any authenticated caller.
type EventHandler struct {
	Events *service.EventService
	Ledger *service.SeatLedger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *service.EventService, ledger *service.SeatLedger) *EventHandler {
	if events == nil || ledger == nil {
		panic("nil service passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Ledger: ledger}
}

// Create handles POST /v1/events. Organizer or admin only; the event
// starts with an empty seat inventory.
func (h *EventHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Title    string    `json:"title"`
		Venue    string    `json:"venue"`
		StartsAt time.Time `json:"starts_at"`
		EndsAt   time.Time `json:"ends_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	event, err := h.Events.CreateEvent(c.Request().Context(), p, body.Title, body.Venue, body.StartsAt, body.EndsAt)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, event)
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	event, err := h.Events.GetEvent(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// AddSeats handles POST /v1/events/:id/seats. The body carries a batch
// of seat definitions that is applied atomically or not at all.
func (h *EventHandler) AddSeats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Seats []service.SeatInput `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	n, err := h.Events.AddSeats(c.Request().Context(), p, eventID, body.Seats)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": n})
}

// ListSeats handles GET /v1/events/:id/seats. Lapsed holds are
// reported as free and hold tokens are never included. Optional query
// parameters: tier, available (true limits the listing to free seats).
func (h *EventHandler) ListSeats(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	tier := model.SeatTier(c.QueryParam("tier"))
	if tier != "" && !model.ValidTier(tier) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown tier"})
	}
	availableOnly := c.QueryParam("available") == "true"
	seats, err := h.Ledger.ListSeats(c.Request().Context(), eventID, tier, availableOnly)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}
