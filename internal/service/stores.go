// Package service implements the seat-inventory and booking-lifecycle
// engine: seat ledger, hold management, booking state machine, payment
// reconciliation and check-in verification. Services depend on narrow
// store interfaces so the engine can be exercised against in-memory
// fakes in tests; the MySQL repositories satisfy them in production.
package service

import (
	"context"
	"time"

	"github.com/eventbook/eventbook-api/internal/model"
)

// TxRunner demarcates a transaction. Repository calls made inside fn
// share one atomic unit of work; nested WithTx calls join the outer
// transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventStore persists events and their seat counters.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Event, error)
	AdjustSeatCounts(ctx context.Context, id uint64, totalDelta, availableDelta int) error
	AdjustAvailable(ctx context.Context, id uint64, delta int) error
}

// SeatStore persists seats. GetForUpdate must lock the row until the
// surrounding transaction ends; that lock is what serializes competing
// claims on a seat.
type SeatStore interface {
	GetByID(ctx context.Context, id uint64) (model.Seat, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Seat, error)
	SetHeld(ctx context.Context, id uint64, token string, expiresAt time.Time) error
	SetBooked(ctx context.Context, id uint64) error
	SetFree(ctx context.Context, id uint64) error
	CreateBulk(ctx context.Context, seats []model.Seat) error
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error)
	DueExpired(ctx context.Context, now time.Time, limit int) ([]uint64, error)
}

// BookingStore persists bookings. Create surfaces unique-constraint
// violations as repository.ErrDuplicateEntry so the booking service can
// retry number generation.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Booking, error)
	GetByNumber(ctx context.Context, number string) (model.Booking, error)
	GetByTicketTokenForUpdate(ctx context.Context, token string) (model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) error
	SetCheckedIn(ctx context.Context, id uint64, at time.Time) error
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Booking, error)
	ListByEvent(ctx context.Context, eventID uint64, limit, offset int) ([]model.Booking, error)
}

// PaymentStore persists payments. Create must enforce the one-payment-
// per-booking constraint atomically and return ErrDuplicatePayment on
// violation.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uint64) (model.Payment, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Payment, error)
	GetByBooking(ctx context.Context, bookingID uint64) (model.Payment, error)
	MarkCompleted(ctx context.Context, id uint64, externalRef, method string, paidAt time.Time) error
	UpdateStatus(ctx context.Context, id uint64, status model.PaymentStatus) error
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Payment, error)
}
