// Package database opens the MySQL pool backing the seat ledger.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection, retrying for a
// short window so the service survives starting before the database
// container is ready. parseTime maps DATETIME columns to time.Time and
// loc=UTC keeps every timestamp in UTC, matching what the ledger
// stores.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Booking transactions are short but lock-heavy; a modest pool
	// keeps row-lock queues shallow under load.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	var pingErr error
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr = db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			return db, nil
		}
		log.Printf("database: ping attempt %d failed: %v", attempt, pingErr)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	db.Close()
	return nil, fmt.Errorf("database unreachable: %w", pingErr)
}
