package service

import (
	"context"
	"log"
	"time"
)

// HoldSweeper periodically frees seats whose hold lapsed, bounding the
// staleness of physical seat state. Correctness never depends on it:
// every reader applies lazy expiry, the sweeper only keeps the
// lazy-check cost bounded. Each due seat is freed in its own short
// transaction so no seat lock is held longer than a single transition.
type HoldSweeper struct {
	ledger   *SeatLedger
	seats    SeatStore
	interval time.Duration
	batch    int
}

// NewHoldSweeper constructs a sweeper ticking at the given interval.
func NewHoldSweeper(ledger *SeatLedger, seats SeatStore, interval time.Duration) *HoldSweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HoldSweeper{ledger: ledger, seats: seats, interval: interval, batch: 100}
}

// Run blocks sweeping until ctx is cancelled. Errors are logged and the
// loop keeps running; a failed sweep only delays reclamation, lazy
// expiry keeps readers correct in the meantime.
func (s *HoldSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("hold-sweeper: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("hold-sweeper: freed %d expired holds", n)
			}
		}
	}
}

// SweepOnce frees one batch of due holds and returns how many seats
// were actually freed. A seat re-claimed between the scan and its
// transition is skipped by the recheck inside ExpireIfDue.
func (s *HoldSweeper) SweepOnce(ctx context.Context) (int, error) {
	ids, err := s.seats.DueExpired(ctx, s.ledger.clock.Now(), s.batch)
	if err != nil {
		return 0, err
	}
	freed := 0
	for _, id := range ids {
		did, err := s.ledger.ExpireIfDue(ctx, id)
		if err != nil {
			return freed, err
		}
		if did {
			freed++
		}
	}
	return freed, nil
}
