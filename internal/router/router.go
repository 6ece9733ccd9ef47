// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eventbook/eventbook-api/internal/config"
	"github.com/eventbook/eventbook-api/internal/handler"
	"github.com/eventbook/eventbook-api/internal/middleware"
	"github.com/eventbook/eventbook-api/internal/model"
)

// Handlers bundles every handler the API exposes so Register can take
// one argument instead of six.
type Handlers struct {
	Event   *handler.EventHandler
	Seat    *handler.SeatHandler
	Booking *handler.BookingHandler
	Payment *handler.PaymentHandler
	Checkin *handler.CheckinHandler
}

// Register mounts all routes. Everything except the health check sits
// behind JWT auth; the contended hold and booking-creation routes
// additionally pass through the Redis rate limiter, and administrative
// routes require the organizer or admin role.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	limited := middleware.RateLimit(rlCfg, rdb)
	organizer := middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin)
	admin := middleware.RequireRole(model.RoleAdmin)

	// Events and seat inventory.
	v1.POST("/events", h.Event.Create, organizer)
	v1.GET("/events/:id", h.Event.Get)
	v1.POST("/events/:id/seats", h.Event.AddSeats, organizer)
	v1.GET("/events/:id/seats", h.Event.ListSeats)
	v1.GET("/events/:id/bookings", h.Booking.ListByEvent, organizer)

	// Seat holds. The hottest path in the service, hence rate limited.
	v1.POST("/seats/:id/hold", h.Seat.Hold, limited)
	v1.DELETE("/seats/:id/hold", h.Seat.Release, limited)

	// Bookings.
	v1.POST("/bookings", h.Booking.Create, limited)
	v1.GET("/bookings", h.Booking.ListMine)
	v1.GET("/bookings/:id", h.Booking.Get)
	v1.POST("/bookings/:id/cancel", h.Booking.Cancel)
	v1.GET("/bookings/:id/qr", h.Booking.TicketQR)
	v1.GET("/bookings/:id/payment", h.Payment.GetByBooking)
	v1.GET("/bookings/number/:number", h.Booking.GetByNumber)

	// Payments.
	v1.POST("/payments", h.Payment.Create)
	v1.GET("/payments", h.Payment.History)
	v1.GET("/payments/:id", h.Payment.Get)
	v1.POST("/payments/:id/confirm", h.Payment.Confirm)
	v1.POST("/payments/:id/fail", h.Payment.Fail)
	v1.POST("/payments/:id/refund", h.Payment.Refund, admin)

	// Gate check-in.
	v1.POST("/checkin", h.Checkin.Verify, organizer)
}
