package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eventbook/eventbook-api/internal/clock"
	"github.com/eventbook/eventbook-api/internal/model"
)

// SeatLedger is the only writer of seat state. Every transition runs
// under the seat's row lock and adjusts the owning event's
// available_seats counter in the same transaction, so the counter can
// never drift from the seat set.
//
// Availability accounting: the counter is decremented exactly once when
// a seat leaves FREE (hold granted) and incremented exactly once when
// it returns to FREE (release, expiry or cancellation). Taking over an
// expired hold changes the holder, not the counter: the seat was
// already counted as unavailable.
type SeatLedger struct {
	tx      TxRunner
	seats   SeatStore
	events  EventStore
	clock   clock.Clock
	holdTTL time.Duration
}

// DefaultHoldTTL bounds how long a hold protects a seat before lazily
// expiring.
const DefaultHoldTTL = 10 * time.Minute

// NewSeatLedger constructs a SeatLedger. A non-positive ttl falls back
// to DefaultHoldTTL.
func NewSeatLedger(tx TxRunner, seats SeatStore, events EventStore, clk clock.Clock, ttl time.Duration) *SeatLedger {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return &SeatLedger{tx: tx, seats: seats, events: events, clock: clk, holdTTL: ttl}
}

// HoldTTL returns the configured hold duration.
func (l *SeatLedger) HoldTTL() time.Duration { return l.holdTTL }

// TryHold attempts to claim the seat for the hold TTL. It succeeds when
// the seat is FREE or carries a lapsed hold, atomically moving it to
// HELD with a fresh token and expiry. A lapsed hold is taken over
// without touching the counter; the superseded token is invalidated by
// the overwrite. Booked or validly held seats fail fast with
// ErrSeatUnavailable; the operation never blocks waiting for a seat.
func (l *SeatLedger) TryHold(ctx context.Context, seatID uint64) (model.Hold, error) {
	var hold model.Hold
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := l.seats.GetForUpdate(ctx, seatID)
		if err != nil {
			return err
		}
		now := l.clock.Now()
		if seat.EffectiveState(now) != model.SeatFree {
			return fmt.Errorf("tryHold seat %d: %w", seatID, model.ErrSeatUnavailable)
		}
		token, err := newHoldToken()
		if err != nil {
			return fmt.Errorf("generate hold token: %w", err)
		}
		expiresAt := now.Add(l.holdTTL)
		if err := l.seats.SetHeld(ctx, seatID, token, expiresAt); err != nil {
			return err
		}
		// Only a physically FREE seat was counted as available; a seat
		// with a lapsed hold was already decremented when first held.
		if seat.State == model.SeatFree {
			if err := l.events.AdjustAvailable(ctx, seat.EventID, -1); err != nil {
				return err
			}
		}
		hold = model.Hold{SeatID: seatID, Token: token, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return model.Hold{}, err
	}
	return hold, nil
}

// Commit converts a valid hold into a hard allocation (HELD -> BOOKED)
// and returns the seat for price snapshotting. The caller must present
// the token of the currently valid hold: a lapsed or superseded token
// yields ErrHoldExpired, a seat already booked yields
// ErrSeatUnavailable. The counter is untouched; it was decremented
// when the hold was granted.
func (l *SeatLedger) Commit(ctx context.Context, seatID uint64, token string) (model.Seat, error) {
	var committed model.Seat
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := l.seats.GetForUpdate(ctx, seatID)
		if err != nil {
			return err
		}
		switch seat.State {
		case model.SeatBooked:
			return fmt.Errorf("commit seat %d: %w", seatID, model.ErrSeatUnavailable)
		case model.SeatFree:
			// The hold lapsed and the sweeper already reset the row.
			return fmt.Errorf("commit seat %d: %w", seatID, model.ErrHoldExpired)
		}
		if seat.HoldToken != token || seat.HoldExpired(l.clock.Now()) {
			return fmt.Errorf("commit seat %d: %w", seatID, model.ErrHoldExpired)
		}
		if err := l.seats.SetBooked(ctx, seatID); err != nil {
			return err
		}
		committed = seat
		committed.State = model.SeatBooked
		committed.HoldToken = ""
		committed.HoldExpiresAt = nil
		return nil
	})
	if err != nil {
		return model.Seat{}, err
	}
	return committed, nil
}

// Release gives up a hold before its TTL. Releasing a FREE seat is a
// no-op so retries stay idempotent; a booked seat is not releasable
// here (cancelling the booking frees it).
func (l *SeatLedger) Release(ctx context.Context, seatID uint64) error {
	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := l.seats.GetForUpdate(ctx, seatID)
		if err != nil {
			return err
		}
		switch seat.State {
		case model.SeatFree:
			return nil
		case model.SeatBooked:
			return fmt.Errorf("release seat %d: %w", seatID, model.ErrSeatUnavailable)
		}
		return l.free(ctx, seat)
	})
}

// Free returns a held or booked seat to FREE and restores the counter.
// Freeing an already-FREE seat is a no-op, not an error, keeping
// release idempotent under retries.
func (l *SeatLedger) Free(ctx context.Context, seatID uint64) error {
	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := l.seats.GetForUpdate(ctx, seatID)
		if err != nil {
			return err
		}
		if seat.State == model.SeatFree {
			return nil
		}
		return l.free(ctx, seat)
	})
}

// ExpireIfDue frees the seat only when it still carries a lapsed hold.
// The state is re-checked under the row lock because the seat may have
// been claimed again between the sweeper's scan and this call.
func (l *SeatLedger) ExpireIfDue(ctx context.Context, seatID uint64) (bool, error) {
	expired := false
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := l.seats.GetForUpdate(ctx, seatID)
		if err != nil {
			return err
		}
		if !seat.HoldExpired(l.clock.Now()) {
			return nil
		}
		expired = true
		return l.free(ctx, seat)
	})
	return expired, err
}

// free transitions a non-FREE seat to FREE and increments the counter.
// Caller holds the row lock.
func (l *SeatLedger) free(ctx context.Context, seat model.Seat) error {
	if err := l.seats.SetFree(ctx, seat.ID); err != nil {
		return err
	}
	return l.events.AdjustAvailable(ctx, seat.EventID, 1)
}

// ListSeats returns the seats of an event with lazy expiry applied: a
// seat whose hold lapsed is reported FREE even before the sweeper
// resets it. Optional filters narrow by tier or to claimable seats
// only. The snapshot may be slightly stale but never reports a
// held-but-expired seat as unavailable.
func (l *SeatLedger) ListSeats(ctx context.Context, eventID uint64, tier model.SeatTier, availableOnly bool) ([]model.Seat, error) {
	if _, err := l.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	seats, err := l.seats.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	now := l.clock.Now()
	out := make([]model.Seat, 0, len(seats))
	for _, s := range seats {
		if tier != "" && s.Tier != tier {
			continue
		}
		if s.HoldExpired(now) {
			s.State = model.SeatFree
			s.HoldToken = ""
			s.HoldExpiresAt = nil
		}
		if availableOnly && s.State != model.SeatFree {
			continue
		}
		s.HoldToken = "" // never leak hold tokens to readers
		out = append(out, s)
	}
	return out, nil
}
