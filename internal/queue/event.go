// Package queue defines message payloads exchanged over the message
// broker and the publisher/consumer that move them.
package queue

// BookingConfirmedEvent is published when a payment completes and its
// booking is confirmed. It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	BookingNumber string `json:"booking_number"`
	UserID        uint64 `json:"user_id"`
	EventID       uint64 `json:"event_id"`
	EventTitle    string `json:"event_title"`
	SeatID        uint64 `json:"seat_id"`
	AmountCents   uint32 `json:"amount_cents"`
	Currency      string `json:"currency"`
	ConfirmedAt   string `json:"confirmed_at"`
}
