package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eventbook/eventbook-api/internal/model"
)

// BookingRepo provides data access to the bookings table. Bookings are
// never deleted; cancelled rows are retained for audit.
type BookingRepo struct {
	store *Store
}

// NewBookingRepo returns a BookingRepo bound to the given store.
func NewBookingRepo(store *Store) *BookingRepo { return &BookingRepo{store: store} }

const bookingColumns = `id, user_id, event_id, seat_id, booking_number, ticket_token, status, total_amount_cents, checked_in_at, created_at, updated_at`

func scanBookingRow(scan func(dest ...any) error) (model.Booking, error) {
	var (
		b         model.Booking
		checkedIn sql.NullTime
	)
	err := scan(&b.ID, &b.UserID, &b.EventID, &b.SeatID, &b.BookingNumber, &b.TicketToken,
		&b.Status, &b.TotalAmountCents, &checkedIn, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if checkedIn.Valid {
		t := checkedIn.Time
		b.CheckedInAt = &t
	}
	return b, nil
}

// Create inserts a new booking and populates the generated ID. A
// unique-constraint violation is returned as-is for the caller to
// inspect with IsDuplicateEntry: a booking-number collision is retried
// with a fresh number, anything else is a bug.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, event_id, seat_id, booking_number, ticket_token, status, total_amount_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.store.q(ctx).ExecContext(ctx, q,
		b.UserID, b.EventID, b.SeatID, b.BookingNumber, b.TicketToken, b.Status, b.TotalAmountCents)
	if err != nil {
		if IsDuplicateEntry(err) {
			return fmt.Errorf("insert booking: %w", ErrDuplicateEntry)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

func (r *BookingRepo) getWhere(ctx context.Context, where string, arg any, forUpdate bool) (model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where
	if forUpdate {
		q += ` FOR UPDATE`
	}
	row := r.store.q(ctx).QueryRowContext(ctx, q, arg)
	b, err := scanBookingRow(row.Scan)
	if err == sql.ErrNoRows {
		return model.Booking{}, model.ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// GetByID returns the booking with the given id or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return r.getWhere(ctx, `id = ?`, id, false)
}

// GetForUpdate locks the booking row for the surrounding transaction.
// Must be called inside WithTx.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id uint64) (model.Booking, error) {
	return r.getWhere(ctx, `id = ?`, id, true)
}

// GetByNumber looks a booking up by its human-readable number.
func (r *BookingRepo) GetByNumber(ctx context.Context, number string) (model.Booking, error) {
	return r.getWhere(ctx, `booking_number = ?`, number, false)
}

// GetByTicketTokenForUpdate looks a booking up by the opaque ticket
// token presented at check-in and locks it so two scanners racing on
// the same ticket serialize. Must be called inside WithTx.
func (r *BookingRepo) GetByTicketTokenForUpdate(ctx context.Context, token string) (model.Booking, error) {
	return r.getWhere(ctx, `ticket_token = ?`, token, true)
}

// UpdateStatus persists a status change. Transition legality is the
// booking service's responsibility.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	if _, err := r.store.q(ctx).ExecContext(ctx, q, status, id); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

// SetCheckedIn records the first successful check-in: status ATTENDED
// and the check-in timestamp, written together.
func (r *BookingRepo) SetCheckedIn(ctx context.Context, id uint64, at time.Time) error {
	const q = `UPDATE bookings SET status = 'ATTENDED', checked_in_at = ? WHERE id = ?`
	if _, err := r.store.q(ctx).ExecContext(ctx, q, at.UTC(), id); err != nil {
		return fmt.Errorf("set booking checked in: %w", err)
	}
	return nil
}

func (r *BookingRepo) list(ctx context.Context, where string, arg any, limit, offset int) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.store.q(ctx).QueryContext(ctx, q, arg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBookingRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Booking, error) {
	return r.list(ctx, `user_id = ?`, userID, limit, offset)
}

// ListByEvent returns an event's bookings, newest first.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64, limit, offset int) ([]model.Booking, error) {
	return r.list(ctx, `event_id = ?`, eventID, limit, offset)
}
