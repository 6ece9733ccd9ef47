package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eventbook/eventbook-api/internal/model"
)

// EventRepo provides data access to the events table. Seat counters on
// an event are only ever adjusted inside the same transaction as the
// seat-state change that motivates the adjustment.
type EventRepo struct {
	store *Store
}

// NewEventRepo returns an EventRepo bound to the given store.
func NewEventRepo(store *Store) *EventRepo { return &EventRepo{store: store} }

const eventColumns = `id, organizer_id, title, venue, starts_at, ends_at, total_seats, available_seats, is_active, created_at, updated_at`

func scanEvent(row *sql.Row) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Venue, &e.StartsAt, &e.EndsAt,
		&e.TotalSeats, &e.AvailableSeats, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Event{}, model.ErrEventNotFound
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

// Create inserts a new event with zero seats and populates the
// generated ID and timestamps on the passed record.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (organizer_id, title, venue, starts_at, ends_at, is_active) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.store.q(ctx).ExecContext(ctx, q, e.OrganizerID, e.Title, e.Venue, e.StartsAt.UTC(), e.EndsAt.UTC(), e.IsActive)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	got, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = got
	return nil
}

// GetByID returns the event with the given id or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	return scanEvent(r.store.q(ctx).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
}

// GetForUpdate locks the event row for the duration of the surrounding
// transaction. Must be called inside WithTx.
func (r *EventRepo) GetForUpdate(ctx context.Context, id uint64) (model.Event, error) {
	return scanEvent(r.store.q(ctx).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? FOR UPDATE`, id))
}

// AdjustSeatCounts shifts total_seats and available_seats by the given
// deltas. Callers invoke it only inside the transaction performing the
// corresponding seat mutation, which keeps the counter derived from
// seat state rather than independently drifting.
func (r *EventRepo) AdjustSeatCounts(ctx context.Context, id uint64, totalDelta, availableDelta int) error {
	const q = `UPDATE events SET total_seats = total_seats + ?, available_seats = available_seats + ? WHERE id = ?`
	res, err := r.store.q(ctx).ExecContext(ctx, q, totalDelta, availableDelta, id)
	if err != nil {
		return fmt.Errorf("adjust seat counts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

// AdjustAvailable shifts only available_seats, used when a seat changes
// availability without being created or destroyed.
func (r *EventRepo) AdjustAvailable(ctx context.Context, id uint64, delta int) error {
	return r.AdjustSeatCounts(ctx, id, 0, delta)
}
