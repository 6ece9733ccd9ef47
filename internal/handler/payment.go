package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/service"
)

// PaymentHandler exposes the payment lifecycle: intent creation,
// provider confirmation and failure callbacks, refunds and history.
type PaymentHandler struct {
	Payments *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	if payments == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: payments}
}

// Create handles POST /v1/payments, opening a pending payment for a
// booking. A booking carries at most one payment; a second attempt is
// a conflict.
func (h *PaymentHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		BookingID   uint64 `json:"booking_id"`
		AmountCents uint32 `json:"amount_cents"`
		Currency    string `json:"currency"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}
	payment, err := h.Payments.Create(c.Request().Context(), p, body.BookingID, body.AmountCents, body.Currency)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, payment)
}

// Confirm handles POST /v1/payments/:id/confirm. Completing the
// payment confirms the booking in the same transaction and emits a
// booking-confirmed message afterwards.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		ExternalRef string `json:"external_ref"`
		Method      string `json:"method"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	payment, err := h.Payments.Confirm(c.Request().Context(), p, id, body.ExternalRef, body.Method)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// Fail handles POST /v1/payments/:id/fail. The booking stays pending
// so the user can retry while their seat hold lasts.
func (h *PaymentHandler) Fail(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	payment, err := h.Payments.Fail(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// Refund handles POST /v1/payments/:id/refund. Admin only, and the
// underlying booking must already be cancelled.
func (h *PaymentHandler) Refund(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	payment, err := h.Payments.Refund(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// Get handles GET /v1/payments/:id.
func (h *PaymentHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	payment, err := h.Payments.GetByID(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// GetByBooking handles GET /v1/bookings/:id/payment.
func (h *PaymentHandler) GetByBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	payment, err := h.Payments.GetByBooking(c.Request().Context(), p, bookingID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// History handles GET /v1/payments and lists the caller's payments,
// newest first.
func (h *PaymentHandler) History(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	limit, offset := pageParams(c)
	payments, err := h.Payments.History(c.Request().Context(), p, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}
