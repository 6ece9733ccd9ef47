package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eventbook/eventbook-api/internal/clock"
	"github.com/eventbook/eventbook-api/internal/model"
	"github.com/eventbook/eventbook-api/internal/queue"
)

// PaymentService reconciles payments against bookings. There is at most
// one payment per booking ever, enforced by the store's uniqueness
// constraint rather than a pre-check, and a completed payment and its
// confirmed booking are written in one transaction, so the system never
// exposes a completed payment with a still-Pending booking.
//
// The gateway interaction itself is external: callers report its
// outcome through Confirm and Fail.
type PaymentService struct {
	tx       TxRunner
	payments PaymentStore
	bookings BookingStore
	events   EventStore
	booking  *BookingService
	auth     Authorizer
	clock    clock.Clock

	// publish is swappable in tests; defaults to the RabbitMQ
	// publisher.
	publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(tx TxRunner, payments PaymentStore, bookings BookingStore, events EventStore, booking *BookingService, clk clock.Clock) *PaymentService {
	return &PaymentService{
		tx:       tx,
		payments: payments,
		bookings: bookings,
		events:   events,
		booking:  booking,
		clock:    clk,
		publish:  queue.PublishBookingConfirmed,
	}
}

// Create records a pending payment for the booking. The owning user or
// an admin may pay; a zero amount is rejected and an empty currency
// defaults to usd. A concurrent duplicate loses to the uniqueness
// constraint and surfaces as ErrDuplicatePayment; exactly one create
// ever wins per booking.
func (s *PaymentService) Create(ctx context.Context, p model.Principal, bookingID uint64, amountCents uint32, currency string) (model.Payment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return model.Payment{}, err
	}
	if err := s.auth.Authorize(p, ActionPayBooking, b.UserID); err != nil {
		return model.Payment{}, err
	}
	if amountCents == 0 {
		return model.Payment{}, fmt.Errorf("payment amount must be positive: %w", model.ErrInvalidTransition)
	}
	if currency == "" {
		currency = "usd"
	}
	pay := model.Payment{
		BookingID:   bookingID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      model.PaymentPending,
	}
	if err := s.payments.Create(ctx, &pay); err != nil {
		return model.Payment{}, err
	}
	return pay, nil
}

// Confirm settles a pending payment: it records the gateway reference,
// method and payment timestamp, and confirms the booking, all in one
// transaction. On success a booking.confirmed event is published best
// effort; a publish failure is logged by the publisher and never undoes
// the settlement.
func (s *PaymentService) Confirm(ctx context.Context, p model.Principal, paymentID uint64, externalRef, method string) (model.Payment, error) {
	var (
		pay model.Payment
		ev  queue.BookingConfirmedEvent
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		got, err := s.payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		b, err := s.bookings.GetByID(ctx, got.BookingID)
		if err != nil {
			return err
		}
		if err := s.auth.Authorize(p, ActionPayBooking, b.UserID); err != nil {
			return err
		}
		if got.Status != model.PaymentPending {
			return fmt.Errorf("confirm payment %d in status %s: %w", paymentID, got.Status, model.ErrInvalidTransition)
		}
		now := s.clock.Now()
		if err := s.payments.MarkCompleted(ctx, paymentID, externalRef, method, now); err != nil {
			return err
		}
		if err := s.booking.MarkConfirmed(ctx, got.BookingID); err != nil {
			return err
		}
		pay = got
		pay.Status = model.PaymentCompleted
		pay.ExternalRef = externalRef
		pay.Method = method
		pay.PaidAt = &now

		event, err := s.events.GetByID(ctx, b.EventID)
		if err != nil {
			return err
		}
		ev = queue.BookingConfirmedEvent{
			BookingID:     b.ID,
			BookingNumber: b.BookingNumber,
			UserID:        b.UserID,
			EventID:       b.EventID,
			EventTitle:    event.Title,
			SeatID:        b.SeatID,
			AmountCents:   pay.AmountCents,
			Currency:      pay.Currency,
			ConfirmedAt:   now.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	_ = s.publish(ctx, ev) // best effort, logged inside
	return pay, nil
}

// Fail marks a pending payment FAILED. The booking stays Pending so the
// user can retry with a new confirmation or cancel to release the seat.
func (s *PaymentService) Fail(ctx context.Context, p model.Principal, paymentID uint64) (model.Payment, error) {
	var pay model.Payment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		got, err := s.payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		b, err := s.bookings.GetByID(ctx, got.BookingID)
		if err != nil {
			return err
		}
		if err := s.auth.Authorize(p, ActionPayBooking, b.UserID); err != nil {
			return err
		}
		if got.Status != model.PaymentPending {
			return fmt.Errorf("fail payment %d in status %s: %w", paymentID, got.Status, model.ErrInvalidTransition)
		}
		if err := s.payments.UpdateStatus(ctx, paymentID, model.PaymentFailed); err != nil {
			return err
		}
		pay = got
		pay.Status = model.PaymentFailed
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	return pay, nil
}

// Refund moves a completed payment to REFUNDED. Admin only, and only
// once the booking has been cancelled: refunding a live booking would
// leave a confirmed booking nobody paid for.
func (s *PaymentService) Refund(ctx context.Context, p model.Principal, paymentID uint64) (model.Payment, error) {
	if p.Role != model.RoleAdmin {
		return model.Payment{}, fmt.Errorf("refund: %w", model.ErrUnauthorized)
	}
	var pay model.Payment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		got, err := s.payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if got.Status != model.PaymentCompleted {
			return fmt.Errorf("refund payment %d in status %s: %w", paymentID, got.Status, model.ErrInvalidTransition)
		}
		b, err := s.bookings.GetByID(ctx, got.BookingID)
		if err != nil {
			return err
		}
		if b.Status != model.BookingCancelled {
			return fmt.Errorf("refund requires a cancelled booking, got %s: %w", b.Status, model.ErrInvalidTransition)
		}
		if err := s.payments.UpdateStatus(ctx, paymentID, model.PaymentRefunded); err != nil {
			return err
		}
		pay = got
		pay.Status = model.PaymentRefunded
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	return pay, nil
}

// GetByID returns a payment visible to the booking owner or an admin.
func (s *PaymentService) GetByID(ctx context.Context, p model.Principal, paymentID uint64) (model.Payment, error) {
	pay, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return model.Payment{}, err
	}
	b, err := s.bookings.GetByID(ctx, pay.BookingID)
	if err != nil {
		return model.Payment{}, err
	}
	if err := s.auth.Authorize(p, ActionViewBooking, b.UserID); err != nil {
		return model.Payment{}, err
	}
	return pay, nil
}

// GetByBooking returns the payment settling the given booking.
func (s *PaymentService) GetByBooking(ctx context.Context, p model.Principal, bookingID uint64) (model.Payment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return model.Payment{}, err
	}
	if err := s.auth.Authorize(p, ActionViewBooking, b.UserID); err != nil {
		return model.Payment{}, err
	}
	return s.payments.GetByBooking(ctx, bookingID)
}

// History returns the principal's own payment history, newest first.
func (s *PaymentService) History(ctx context.Context, p model.Principal, limit, offset int) ([]model.Payment, error) {
	return s.payments.ListByUser(ctx, p.ID, clampLimit(limit), offset)
}
