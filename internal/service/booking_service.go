package service

import (
	"context"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/eventbook/eventbook-api/internal/clock"
	"github.com/eventbook/eventbook-api/internal/model"
	"github.com/eventbook/eventbook-api/internal/repository"
)

// BookingService drives the booking state machine. It consumes seat
// holds through the seat ledger, so a booking can only ever be created
// on a seat whose hold the caller validly owns, and it is the only
// component allowed to cancel or confirm bookings.
type BookingService struct {
	tx       TxRunner
	ledger   *SeatLedger
	events   EventStore
	bookings BookingStore
	auth     Authorizer
	clock    clock.Clock
}

// NewBookingService constructs a BookingService.
func NewBookingService(tx TxRunner, ledger *SeatLedger, events EventStore, bookings BookingStore, clk clock.Clock) *BookingService {
	return &BookingService{tx: tx, ledger: ledger, events: events, bookings: bookings, clock: clk}
}

// numberRetries bounds regeneration attempts on a booking-number
// collision. With 32 random bits per day two retries are already
// astronomically more than needed.
const numberRetries = 3

// Create books seatID on eventID for the principal. When holdToken is
// set it must identify the caller's valid hold on the seat; when empty
// a hold is acquired implicitly with zero grace inside the same
// transaction, so direct booking loses any race it would have lost as
// hold-then-book. On success the booking is PENDING, owns the seat's
// BOOKED state and snapshots the seat price as its immutable total.
func (s *BookingService) Create(ctx context.Context, p model.Principal, eventID, seatID uint64, holdToken string) (model.Booking, error) {
	var booking model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.IsActive {
			return fmt.Errorf("event %d inactive: %w", eventID, model.ErrSeatUnavailable)
		}

		if holdToken == "" {
			hold, err := s.ledger.TryHold(ctx, seatID)
			if err != nil {
				return err
			}
			holdToken = hold.Token
		}
		seat, err := s.ledger.Commit(ctx, seatID, holdToken)
		if err != nil {
			return err
		}
		if seat.EventID != eventID {
			return fmt.Errorf("seat %d does not belong to event %d: %w", seatID, eventID, model.ErrSeatNotFound)
		}

		ticket, err := newTicketToken()
		if err != nil {
			return fmt.Errorf("generate ticket token: %w", err)
		}
		b := model.Booking{
			UserID:           p.ID,
			EventID:          eventID,
			SeatID:           seatID,
			TicketToken:      ticket,
			Status:           model.BookingPending,
			TotalAmountCents: seat.PriceCents,
		}
		for attempt := 0; ; attempt++ {
			b.BookingNumber, err = newBookingNumber(s.clock.Now())
			if err != nil {
				return fmt.Errorf("generate booking number: %w", err)
			}
			err = s.bookings.Create(ctx, &b)
			if err == nil {
				break
			}
			if !errors.Is(err, repository.ErrDuplicateEntry) || attempt+1 >= numberRetries {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED and releases
// its seat back to the ledger in the same transaction, restoring the
// event counter. Attended bookings cannot be cancelled and an already
// cancelled booking is rejected rather than silently accepted. Only the
// owning user or an admin may cancel.
func (s *BookingService) Cancel(ctx context.Context, p model.Principal, bookingID uint64) (model.Booking, error) {
	var cancelled model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.auth.Authorize(p, ActionCancelBooking, b.UserID); err != nil {
			return err
		}
		if !b.Status.CanTransition(model.BookingCancelled) {
			return fmt.Errorf("cancel booking %d in status %s: %w", bookingID, b.Status, model.ErrInvalidTransition)
		}
		if err := s.bookings.UpdateStatus(ctx, bookingID, model.BookingCancelled); err != nil {
			return err
		}
		if err := s.ledger.Free(ctx, b.SeatID); err != nil {
			return err
		}
		cancelled = b
		cancelled.Status = model.BookingCancelled
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return cancelled, nil
}

// MarkConfirmed transitions PENDING -> CONFIRMED. It is invoked only by
// the payment reconciler inside the payment-confirmation transaction;
// there is no other path to a confirmed booking.
func (s *BookingService) MarkConfirmed(ctx context.Context, bookingID uint64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.Status.CanTransition(model.BookingConfirmed) {
			return fmt.Errorf("confirm booking %d in status %s: %w", bookingID, b.Status, model.ErrInvalidTransition)
		}
		return s.bookings.UpdateStatus(ctx, bookingID, model.BookingConfirmed)
	})
}

// GetByID returns a booking visible to its owner or an admin.
func (s *BookingService) GetByID(ctx context.Context, p model.Principal, bookingID uint64) (model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if err := s.auth.Authorize(p, ActionViewBooking, b.UserID); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// GetByNumber returns a booking looked up by its support-facing number.
func (s *BookingService) GetByNumber(ctx context.Context, p model.Principal, number string) (model.Booking, error) {
	b, err := s.bookings.GetByNumber(ctx, number)
	if err != nil {
		return model.Booking{}, err
	}
	if err := s.auth.Authorize(p, ActionViewBooking, b.UserID); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// ListByUser returns the principal's own bookings, newest first.
func (s *BookingService) ListByUser(ctx context.Context, p model.Principal, limit, offset int) ([]model.Booking, error) {
	return s.bookings.ListByUser(ctx, p.ID, clampLimit(limit), offset)
}

// ListByEvent returns an event's bookings for its organizer or an
// admin.
func (s *BookingService) ListByEvent(ctx context.Context, p model.Principal, eventID uint64, limit, offset int) ([]model.Booking, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Authorize(p, ActionViewEventBookings, event.OrganizerID); err != nil {
		return nil, err
	}
	return s.bookings.ListByEvent(ctx, eventID, clampLimit(limit), offset)
}

// TicketQR renders the booking's ticket token as a PNG QR image for the
// check-in scanner. Only the owner or an admin may fetch it, since the
// token alone authorizes check-in.
func (s *BookingService) TicketQR(ctx context.Context, p model.Principal, bookingID uint64) ([]byte, error) {
	b, err := s.GetByID(ctx, p, bookingID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(b.TicketToken, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode ticket qr: %w", err)
	}
	return png, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
