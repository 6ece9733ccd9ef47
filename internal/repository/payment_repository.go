package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eventbook/eventbook-api/internal/model"
)

// PaymentRepo provides data access to the payments table. The unique
// key on booking_id makes the insert itself the duplicate check; there
// is deliberately no look-before-insert anywhere in this repository.
type PaymentRepo struct {
	store *Store
}

// NewPaymentRepo returns a PaymentRepo bound to the given store.
func NewPaymentRepo(store *Store) *PaymentRepo { return &PaymentRepo{store: store} }

const paymentColumns = `id, booking_id, amount_cents, currency, external_ref, method, status, paid_at, created_at, updated_at`

func scanPaymentRow(scan func(dest ...any) error) (model.Payment, error) {
	var (
		p      model.Payment
		ref    sql.NullString
		method sql.NullString
		paidAt sql.NullTime
	)
	err := scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Currency, &ref, &method,
		&p.Status, &paidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Payment{}, err
	}
	if ref.Valid {
		p.ExternalRef = ref.String
	}
	if method.Valid {
		p.Method = method.String
	}
	if paidAt.Valid {
		t := paidAt.Time
		p.PaidAt = &t
	}
	return p, nil
}

// Create inserts a new pending payment. A second payment for the same
// booking violates uq_payments_booking and is mapped to
// ErrDuplicatePayment, so concurrent duplicate attempts resolve to
// exactly one winner.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (booking_id, amount_cents, currency, status) VALUES (?, ?, ?, ?)`
	res, err := r.store.q(ctx).ExecContext(ctx, q, p.BookingID, p.AmountCents, p.Currency, p.Status)
	if err != nil {
		if IsDuplicateEntry(err) {
			return model.ErrDuplicatePayment
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *PaymentRepo) getWhere(ctx context.Context, where string, arg any, forUpdate bool) (model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + where
	if forUpdate {
		q += ` FOR UPDATE`
	}
	row := r.store.q(ctx).QueryRowContext(ctx, q, arg)
	p, err := scanPaymentRow(row.Scan)
	if err == sql.ErrNoRows {
		return model.Payment{}, model.ErrPaymentNotFound
	}
	if err != nil {
		return model.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// GetByID returns the payment with the given id or ErrPaymentNotFound.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	return r.getWhere(ctx, `id = ?`, id, false)
}

// GetForUpdate locks the payment row for the surrounding transaction.
// Must be called inside WithTx.
func (r *PaymentRepo) GetForUpdate(ctx context.Context, id uint64) (model.Payment, error) {
	return r.getWhere(ctx, `id = ?`, id, true)
}

// GetByBooking returns the payment settling the given booking.
func (r *PaymentRepo) GetByBooking(ctx context.Context, bookingID uint64) (model.Payment, error) {
	return r.getWhere(ctx, `booking_id = ?`, bookingID, false)
}

// MarkCompleted records a successful settlement: status, external
// reference, method and payment timestamp in one write.
func (r *PaymentRepo) MarkCompleted(ctx context.Context, id uint64, externalRef, method string, paidAt time.Time) error {
	const q = `UPDATE payments SET status = 'COMPLETED', external_ref = ?, method = ?, paid_at = ? WHERE id = ?`
	if _, err := r.store.q(ctx).ExecContext(ctx, q, externalRef, method, paidAt.UTC(), id); err != nil {
		return fmt.Errorf("mark payment completed: %w", err)
	}
	return nil
}

// UpdateStatus persists a bare status change (failed, refunded).
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	const q = `UPDATE payments SET status = ? WHERE id = ?`
	if _, err := r.store.q(ctx).ExecContext(ctx, q, status, id); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// ListByUser returns the payment history for all of a user's bookings,
// newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Payment, error) {
	const q = `SELECT p.id, p.booking_id, p.amount_cents, p.currency, p.external_ref, p.method, p.status, p.paid_at, p.created_at, p.updated_at
	           FROM payments p JOIN bookings b ON b.id = p.booking_id
	           WHERE b.user_id = ? ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.store.q(ctx).QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		p, err := scanPaymentRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
