package model

import "time"

// BookingStatus enumerates the booking lifecycle. CANCELLED and
// ATTENDED are terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingAttended  BookingStatus = "ATTENDED"
)

// bookingTransitions is the single source of truth for legal booking
// state changes. Anything not listed is an invalid transition.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingAttended},
}

// CanTransition reports whether a booking may move from one status to
// another.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Booking records a user's claim on exactly one seat of an event. A
// booking exclusively owns its seat's BOOKED state for its lifetime;
// cancelling releases that ownership back to the seat ledger. Cancelled
// bookings are retained for audit, never deleted.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – user who made the booking.
//  EventID          – event being booked.
//  SeatID           – the single seat owned by this booking.
//  BookingNumber    – unique human-readable identifier for lookup and
//                     support; carries no check-in authority.
//  TicketToken      – unique unguessable token presented at check-in.
//  Status           – PENDING, CONFIRMED, CANCELLED or ATTENDED.
//  TotalAmountCents – seat price snapshotted at booking time, immutable.
//  CheckedInAt      – set once, on the first successful check-in.
type Booking struct {
	ID               uint64        // bookings.id
	UserID           uint64        // bookings.user_id
	EventID          uint64        // bookings.event_id
	SeatID           uint64        // bookings.seat_id
	BookingNumber    string        // bookings.booking_number
	TicketToken      string        // bookings.ticket_token
	Status           BookingStatus // bookings.status
	TotalAmountCents uint32        // bookings.total_amount_cents
	CheckedInAt      *time.Time    // bookings.checked_in_at (nullable)
	CreatedAt        time.Time     // bookings.created_at
	UpdatedAt        time.Time     // bookings.updated_at
}

// Live reports whether the booking still owns its seat. Cancelled
// bookings are the only non-live ones; attended bookings keep their
// seat since the event was consumed.
func (b Booking) Live() bool {
	return b.Status != BookingCancelled
}
