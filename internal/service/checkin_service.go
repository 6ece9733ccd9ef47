package service

import (
	"context"
	"errors"
	"time"

	"github.com/eventbook/eventbook-api/internal/clock"
	"github.com/eventbook/eventbook-api/internal/model"
)

// CheckinOutcome classifies the result of presenting a ticket token at
// the door.
type CheckinOutcome string

const (
	CheckinInvalid          CheckinOutcome = "invalid"
	CheckinAlreadyCancelled CheckinOutcome = "already_cancelled"
	CheckinAlreadyCheckedIn CheckinOutcome = "already_checked_in"
	CheckinOK               CheckinOutcome = "checked_in"
)

// CheckinResult reports what happened. Booking is set for every outcome
// where a booking was identified; CheckedInAt is set for
// AlreadyCheckedIn and CheckinOK.
type CheckinResult struct {
	Outcome     CheckinOutcome
	Reason      string
	Booking     *model.Booking
	CheckedInAt *time.Time
}

// CheckinService verifies presented ticket tokens and performs
// at-most-once check-in.
type CheckinService struct {
	tx       TxRunner
	bookings BookingStore
	auth     Authorizer
	clock    clock.Clock
}

// NewCheckinService constructs a CheckinService.
func NewCheckinService(tx TxRunner, bookings BookingStore, clk clock.Clock) *CheckinService {
	return &CheckinService{tx: tx, bookings: bookings, clock: clk}
}

// Verify validates the presented ticket token and checks the attendee
// in. Only organizers and admins may scan. The booking row is locked
// while deciding, so two scanners racing on one ticket serialize:
// exactly one sees CheckinOK, the other AlreadyCheckedIn with the same
// timestamp.
//
// An unpaid (Pending) booking is rejected as invalid; check-in
// requires a confirmed booking. Cancelled bookings report
// AlreadyCancelled and never transition. Re-presenting an attended
// ticket is an idempotent read: it reports the original check-in time
// and mutates nothing.
func (s *CheckinService) Verify(ctx context.Context, p model.Principal, token string) (CheckinResult, error) {
	if err := s.auth.Authorize(p, ActionVerifyTicket, 0); err != nil {
		return CheckinResult{}, err
	}
	var res CheckinResult
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByTicketTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, model.ErrBookingNotFound) {
				res = CheckinResult{Outcome: CheckinInvalid, Reason: "unknown ticket"}
				return nil
			}
			return err
		}
		switch {
		case b.Status == model.BookingCancelled:
			res = CheckinResult{Outcome: CheckinAlreadyCancelled, Booking: &b}
			return nil
		case b.CheckedInAt != nil:
			res = CheckinResult{Outcome: CheckinAlreadyCheckedIn, Booking: &b, CheckedInAt: b.CheckedInAt}
			return nil
		case b.Status == model.BookingPending:
			res = CheckinResult{Outcome: CheckinInvalid, Reason: "booking not paid", Booking: &b}
			return nil
		case b.Status != model.BookingConfirmed:
			// Attended always carries a timestamp, so this branch is
			// unreachable state; report invalid rather than check in twice.
			res = CheckinResult{Outcome: CheckinInvalid, Reason: "booking not eligible", Booking: &b}
			return nil
		}
		now := s.clock.Now()
		if err := s.bookings.SetCheckedIn(ctx, b.ID, now); err != nil {
			return err
		}
		b.Status = model.BookingAttended
		b.CheckedInAt = &now
		res = CheckinResult{Outcome: CheckinOK, Booking: &b, CheckedInAt: &now}
		return nil
	})
	if err != nil {
		return CheckinResult{}, err
	}
	return res, nil
}
