package model

import "time"

// PaymentStatus enumerates the payment lifecycle.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment settles exactly one booking. At most one payment row ever
// exists per booking, enforced by a unique constraint on booking_id
// rather than a check-then-insert. Payments are never deleted, only
// status-transitioned.
//
// Fields:
//  ID          – primary key identifier.
//  BookingID   – the booking this payment settles (unique).
//  AmountCents – amount charged in cents.
//  Currency    – ISO currency code, lower case (default "usd").
//  ExternalRef – reference id assigned by the external gateway.
//  Method      – payment method reported by the gateway.
//  Status      – PENDING, COMPLETED, FAILED or REFUNDED.
//  PaidAt      – when the payment completed, nil before that.
type Payment struct {
	ID          uint64        // payments.id
	BookingID   uint64        // payments.booking_id
	AmountCents uint32        // payments.amount_cents
	Currency    string        // payments.currency
	ExternalRef string        // payments.external_ref
	Method      string        // payments.method
	Status      PaymentStatus // payments.status
	PaidAt      *time.Time    // payments.paid_at (nullable)
	CreatedAt   time.Time     // payments.created_at
	UpdatedAt   time.Time     // payments.updated_at
}
