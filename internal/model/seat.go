package model

import "time"

// SeatState enumerates the availability lifecycle of a seat.
type SeatState string

const (
	SeatFree   SeatState = "FREE"   // claimable by anyone
	SeatHeld   SeatState = "HELD"   // provisionally claimed until HoldExpiresAt
	SeatBooked SeatState = "BOOKED" // owned by a live booking
)

// SeatTier enumerates pricing tiers for seats.
type SeatTier string

const (
	TierVIP      SeatTier = "VIP"
	TierPremium  SeatTier = "Premium"
	TierStandard SeatTier = "Standard"
	TierEconomy  SeatTier = "Economy"
)

// ValidTier reports whether t is one of the known seat tiers.
func ValidTier(t SeatTier) bool {
	switch t {
	case TierVIP, TierPremium, TierStandard, TierEconomy:
		return true
	}
	return false
}

// Seat is a uniquely identified unit of inventory belonging to exactly
// one event. A seat in state HELD carries the token and expiry of the
// active hold; both are cleared when the seat returns to FREE or moves
// to BOOKED.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event to which this seat belongs.
//  RowLabel      – letter or string designating the row.
//  SeatNumber    – number of the seat within the row.
//  Tier          – pricing tier (VIP, Premium, Standard, Economy).
//  PriceCents    – price in cents for this seat.
//  State         – FREE, HELD or BOOKED.
//  HoldToken     – opaque token of the active hold, empty otherwise.
//  HoldExpiresAt – when the active hold lapses, nil otherwise.
type Seat struct {
	ID            uint64     // seats.id
	EventID       uint64     // seats.event_id
	RowLabel      string     // seats.row_label
	SeatNumber    uint32     // seats.seat_number
	Tier          SeatTier   // seats.tier
	PriceCents    uint32     // seats.price_cents
	State         SeatState  // seats.state
	HoldToken     string     // seats.hold_token (empty when not held)
	HoldExpiresAt *time.Time // seats.hold_expires_at (nullable)
	CreatedAt     time.Time  // seats.created_at
	UpdatedAt     time.Time  // seats.updated_at
}

// EffectiveState returns the state readers must act on at the given
// instant. A seat physically marked HELD whose expiry has passed is
// FREE for every reader, whether or not the sweeper has reset the row
// yet. Correctness never depends on the sweeper running.
func (s Seat) EffectiveState(now time.Time) SeatState {
	if s.HoldExpired(now) {
		return SeatFree
	}
	return s.State
}

// HoldExpired reports whether the seat carries a lapsed hold.
func (s Seat) HoldExpired(now time.Time) bool {
	return s.State == SeatHeld && s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now)
}

// Hold is granted by the seat ledger when a seat is reserved. The token
// must be presented back when converting the hold into a booking; a
// token belonging to a lapsed or superseded hold is rejected.
type Hold struct {
	SeatID    uint64    `json:"seat_id"`
	Token     string    `json:"hold_token"`
	ExpiresAt time.Time `json:"expires_at"`
}
