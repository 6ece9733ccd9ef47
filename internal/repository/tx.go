// Package repository provides MySQL persistence for the booking engine.
// All repositories honor a transaction carried in the context: service
// code wraps multi-step mutations in Store.WithTx and every repository
// call inside the closure runs on the same *sql.Tx. Seat state and the
// event availability counter are therefore always updated as one atomic
// unit.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repositories use.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Store wraps the database handle and owns transaction demarcation.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// WithTx runs fn inside a transaction. A transaction already present in
// the context is reused so nested service calls join the outer unit of
// work. The transaction is rolled back when fn returns an error.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// q returns the transaction from the context when present, otherwise
// the plain database handle.
func (s *Store) q(ctx context.Context) dbtx {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// ErrDuplicateEntry is returned when an insert loses to a unique
// constraint. Uniqueness constraints are the backstop against insert
// races, so callers map this to a domain conflict or regenerate the
// colliding value instead of retrying blindly.
var ErrDuplicateEntry = errors.New("duplicate entry")

// IsDuplicateEntry reports whether err is a MySQL unique-constraint
// violation (error 1062) or a wrapped ErrDuplicateEntry.
func IsDuplicateEntry(err error) bool {
	if errors.Is(err, ErrDuplicateEntry) {
		return true
	}
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
