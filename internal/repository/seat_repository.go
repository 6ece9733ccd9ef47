package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eventbook/eventbook-api/internal/model"
)

// SeatRepo provides data access to the seats table. State-changing
// methods are plain row updates; the seat ledger service decides which
// transition applies while holding the row lock taken by GetForUpdate,
// so a seat's state and its event counter always move together.
type SeatRepo struct {
	store *Store
}

// NewSeatRepo returns a SeatRepo bound to the given store.
func NewSeatRepo(store *Store) *SeatRepo { return &SeatRepo{store: store} }

const seatColumns = `id, event_id, row_label, seat_number, tier, price_cents, state, hold_token, hold_expires_at, created_at, updated_at`

func scanSeatRow(scan func(dest ...any) error) (model.Seat, error) {
	var (
		s       model.Seat
		token   sql.NullString
		expires sql.NullTime
	)
	err := scan(&s.ID, &s.EventID, &s.RowLabel, &s.SeatNumber, &s.Tier, &s.PriceCents,
		&s.State, &token, &expires, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Seat{}, err
	}
	if token.Valid {
		s.HoldToken = token.String
	}
	if expires.Valid {
		t := expires.Time
		s.HoldExpiresAt = &t
	}
	return s, nil
}

// GetByID returns the seat with the given id or ErrSeatNotFound.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (model.Seat, error) {
	row := r.store.q(ctx).QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats WHERE id = ?`, id)
	s, err := scanSeatRow(row.Scan)
	if err == sql.ErrNoRows {
		return model.Seat{}, model.ErrSeatNotFound
	}
	if err != nil {
		return model.Seat{}, fmt.Errorf("get seat: %w", err)
	}
	return s, nil
}

// GetForUpdate locks the seat row for the duration of the surrounding
// transaction. Every seat state transition starts here, which is what
// serializes two concurrent claims on the same seat. Must be called
// inside WithTx.
func (r *SeatRepo) GetForUpdate(ctx context.Context, id uint64) (model.Seat, error) {
	row := r.store.q(ctx).QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats WHERE id = ? FOR UPDATE`, id)
	s, err := scanSeatRow(row.Scan)
	if err == sql.ErrNoRows {
		return model.Seat{}, model.ErrSeatNotFound
	}
	if err != nil {
		return model.Seat{}, fmt.Errorf("get seat for update: %w", err)
	}
	return s, nil
}

// SetHeld transitions the seat to HELD carrying a fresh token and
// expiry.
func (r *SeatRepo) SetHeld(ctx context.Context, id uint64, token string, expiresAt time.Time) error {
	const q = `UPDATE seats SET state = 'HELD', hold_token = ?, hold_expires_at = ? WHERE id = ?`
	_, err := r.store.q(ctx).ExecContext(ctx, q, token, expiresAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("set seat held: %w", err)
	}
	return nil
}

// SetBooked transitions the seat to BOOKED, clearing the hold fields.
func (r *SeatRepo) SetBooked(ctx context.Context, id uint64) error {
	const q = `UPDATE seats SET state = 'BOOKED', hold_token = NULL, hold_expires_at = NULL WHERE id = ?`
	_, err := r.store.q(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("set seat booked: %w", err)
	}
	return nil
}

// SetFree transitions the seat back to FREE, clearing the hold fields.
func (r *SeatRepo) SetFree(ctx context.Context, id uint64) error {
	const q = `UPDATE seats SET state = 'FREE', hold_token = NULL, hold_expires_at = NULL WHERE id = ?`
	_, err := r.store.q(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("set seat free: %w", err)
	}
	return nil
}

// CreateBulk inserts multiple seats in one statement. Validation of the
// batch happens in the service layer before this is called; the unique
// (event_id, row_label, seat_number) key is the backstop against
// duplicate positions.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (event_id, row_label, seat_number, tier, price_cents, state) VALUES `
	args := make([]any, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, 'FREE')"
		args = append(args, s.EventID, s.RowLabel, s.SeatNumber, s.Tier, s.PriceCents)
	}
	if _, err := r.store.q(ctx).ExecContext(ctx, query, args...); err != nil {
		if IsDuplicateEntry(err) {
			return fmt.Errorf("%w: duplicate seat position", model.ErrSeatBatchInvalid)
		}
		return fmt.Errorf("insert seats: %w", err)
	}
	return nil
}

// ListByEvent returns all seats of an event ordered by row and number.
func (r *SeatRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE event_id = ? ORDER BY row_label, seat_number`
	rows, err := r.store.q(ctx).QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		s, err := scanSeatRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// DueExpired returns ids of seats whose hold lapsed at or before now,
// bounded by limit. The sweeper frees each returned seat in its own
// short transaction so no seat lock outlives a single transition.
func (r *SeatRepo) DueExpired(ctx context.Context, now time.Time, limit int) ([]uint64, error) {
	const q = `SELECT id FROM seats WHERE state = 'HELD' AND hold_expires_at <= ? ORDER BY hold_expires_at LIMIT ?`
	rows, err := r.store.q(ctx).QueryContext(ctx, q, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due holds: %w", err)
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
