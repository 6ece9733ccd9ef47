package service

import (
	"testing"
	"time"

	"github.com/eventbook/eventbook-api/internal/clock"
	"github.com/eventbook/eventbook-api/internal/model"
)

// engine bundles a fully wired service stack over the in-memory fakes
// with a controllable clock. Tests drive the same code paths the HTTP
// layer does.
type engine struct {
	db       *fakeDB
	clock    *clock.Fixed
	ledger   *SeatLedger
	bookings *BookingService
	payments *PaymentService
	checkin  *CheckinService
	events   *EventService
	sweeper  *HoldSweeper
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	db := newFakeDB()
	clk := clock.NewFixed(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	events := fakeEvents{db}
	seats := fakeSeats{db}
	bookings := fakeBookings{db}
	payments := fakePayments{db}

	ledger := NewSeatLedger(db, seats, events, clk, DefaultHoldTTL)
	bookingSvc := NewBookingService(db, ledger, events, bookings, clk)
	paymentSvc := NewPaymentService(db, payments, bookings, events, bookingSvc, clk)
	return &engine{
		db:       db,
		clock:    clk,
		ledger:   ledger,
		bookings: bookingSvc,
		payments: paymentSvc,
		checkin:  NewCheckinService(db, bookings, clk),
		events:   NewEventService(db, events, seats),
		sweeper:  NewHoldSweeper(ledger, seats, time.Second),
	}
}

// seedEventWithSeats creates an event with n free Standard seats and
// consistent counters, returning the event and its seats.
func (e *engine) seedEventWithSeats(n int) (model.Event, []model.Seat) {
	ev := e.db.seedEvent(model.Event{
		OrganizerID:    1,
		Title:          "Go Conference",
		Venue:          "Main Hall",
		StartsAt:       e.clock.Now().Add(24 * time.Hour),
		EndsAt:         e.clock.Now().Add(32 * time.Hour),
		TotalSeats:     uint32(n),
		AvailableSeats: uint32(n),
		IsActive:       true,
	})
	seats := make([]model.Seat, 0, n)
	for i := 0; i < n; i++ {
		seats = append(seats, e.db.seedSeat(model.Seat{
			EventID:    ev.ID,
			RowLabel:   "A",
			SeatNumber: uint32(i + 1),
			Tier:       model.TierStandard,
			PriceCents: 5000,
			State:      model.SeatFree,
		}))
	}
	return ev, seats
}

func (e *engine) availableSeats(t *testing.T, eventID uint64) uint32 {
	t.Helper()
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	ev, ok := e.db.events[eventID]
	if !ok {
		t.Fatalf("event %d not found", eventID)
	}
	return ev.AvailableSeats
}

func (e *engine) seat(t *testing.T, id uint64) model.Seat {
	t.Helper()
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	s, ok := e.db.seats[id]
	if !ok {
		t.Fatalf("seat %d not found", id)
	}
	return s
}

func (e *engine) booking(t *testing.T, id uint64) model.Booking {
	t.Helper()
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	b, ok := e.db.bookings[id]
	if !ok {
		t.Fatalf("booking %d not found", id)
	}
	return b
}

var (
	alice     = model.Principal{ID: 10, Role: model.RoleUser}
	bob       = model.Principal{ID: 11, Role: model.RoleUser}
	organizer = model.Principal{ID: 1, Role: model.RoleOrganizer}
	admin     = model.Principal{ID: 99, Role: model.RoleAdmin}
)
