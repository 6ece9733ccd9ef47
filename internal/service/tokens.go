package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// newHoldToken returns a random hexadecimal hold token. 32 bytes of
// crypto/rand keep tokens unguessable even though a hold only lives for
// minutes.
func newHoldToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// newTicketToken returns the opaque token embedded in the ticket QR
// code. 32 random bytes give well over the 128 bits of entropy check-in
// authorization requires; base64url keeps it scanner- and URL-safe.
func newTicketToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// newBookingNumber builds a human-readable booking number of the form
// BK<yyyymmdd><8 hex chars>. The random suffix makes collisions
// negligible; the unique index on booking_number catches the rare one
// and the caller retries with a fresh number.
func newBookingNumber(now time.Time) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("BK%s%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(b))), nil
}
