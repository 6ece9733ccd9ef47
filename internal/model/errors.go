// Sentinel errors shared by the engine. Services return these wrapped
// with context; handlers translate them into HTTP status codes with
// errors.Is. Concurrency losses surface as conflicts, never as silent
// retries.
package model

import "errors"

var (
	// Not-found family, mapped to 404.
	ErrEventNotFound   = errors.New("event not found")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// Conflict family, mapped to 409. ErrSeatUnavailable is returned
	// both for a seat that is booked or validly held and for a lost
	// commit race; callers may retry against a different seat but must
	// not retry blindly against the same one.
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrDuplicatePayment = errors.New("payment already exists for booking")

	// ErrHoldExpired is returned when a presented hold token belongs to
	// a lapsed or superseded hold. Mapped to 409.
	ErrHoldExpired = errors.New("hold expired")

	// ErrInvalidTransition signals an illegal state change, such as
	// cancelling an attended booking. Mapped to 409.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnauthorized signals that the actor lacks ownership or role.
	// Mapped to 403.
	ErrUnauthorized = errors.New("not authorized")

	// ErrSeatBatchInvalid rejects a bulk seat batch as a whole; no row
	// of an invalid batch is ever inserted. Mapped to 400.
	ErrSeatBatchInvalid = errors.New("invalid seat batch")
)
