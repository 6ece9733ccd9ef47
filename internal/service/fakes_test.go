package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eventbook/eventbook-api/internal/model"
	"github.com/eventbook/eventbook-api/internal/repository"
)

// fakeDB is an in-memory stand-in for the MySQL store. One mutex
// serializes transactions the way row locks serialize them in
// production, and a snapshot taken at transaction start is restored
// when the transaction function fails, mimicking rollback. Nested
// WithTx calls join the outer transaction via a context marker, same
// as the real store.
type fakeDB struct {
	mu sync.Mutex

	nextID   uint64
	events   map[uint64]model.Event
	seats    map[uint64]model.Seat
	bookings map[uint64]model.Booking
	payments map[uint64]model.Payment
}

type fakeTxKey struct{}

func newFakeDB() *fakeDB {
	return &fakeDB{
		events:   map[uint64]model.Event{},
		seats:    map[uint64]model.Seat{},
		bookings: map[uint64]model.Booking{},
		payments: map[uint64]model.Payment{},
	}
}

func (db *fakeDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	snap := db.snapshot()
	err := fn(context.WithValue(ctx, fakeTxKey{}, struct{}{}))
	if err != nil {
		db.restore(snap)
	}
	return err
}

type fakeSnapshot struct {
	nextID   uint64
	events   map[uint64]model.Event
	seats    map[uint64]model.Seat
	bookings map[uint64]model.Booking
	payments map[uint64]model.Payment
}

func (db *fakeDB) snapshot() fakeSnapshot {
	return fakeSnapshot{
		nextID:   db.nextID,
		events:   copyMap(db.events),
		seats:    copyMap(db.seats),
		bookings: copyMap(db.bookings),
		payments: copyMap(db.payments),
	}
}

func (db *fakeDB) restore(s fakeSnapshot) {
	db.nextID = s.nextID
	db.events = s.events
	db.seats = s.seats
	db.bookings = s.bookings
	db.payments = s.payments
}

func copyMap[V any](m map[uint64]V) map[uint64]V {
	out := make(map[uint64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// enter acquires the store mutex for calls made outside a transaction;
// calls inside a transaction already hold it.
func (db *fakeDB) enter(ctx context.Context) func() {
	if ctx.Value(fakeTxKey{}) != nil {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *fakeDB) id() uint64 {
	db.nextID++
	return db.nextID
}

// seedEvent inserts an event directly, bypassing services.
func (db *fakeDB) seedEvent(e model.Event) model.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	e.ID = db.id()
	db.events[e.ID] = e
	return e
}

// seedSeat inserts a seat directly, bypassing services.
func (db *fakeDB) seedSeat(s model.Seat) model.Seat {
	db.mu.Lock()
	defer db.mu.Unlock()
	s.ID = db.id()
	if s.State == "" {
		s.State = model.SeatFree
	}
	db.seats[s.ID] = s
	return s
}

type fakeEvents struct{ db *fakeDB }

func (f fakeEvents) Create(ctx context.Context, e *model.Event) error {
	defer f.db.enter(ctx)()
	e.ID = f.db.id()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	f.db.events[e.ID] = *e
	return nil
}

func (f fakeEvents) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	defer f.db.enter(ctx)()
	e, ok := f.db.events[id]
	if !ok {
		return model.Event{}, model.ErrEventNotFound
	}
	return e, nil
}

func (f fakeEvents) GetForUpdate(ctx context.Context, id uint64) (model.Event, error) {
	return f.GetByID(ctx, id)
}

func (f fakeEvents) AdjustSeatCounts(ctx context.Context, id uint64, totalDelta, availableDelta int) error {
	defer f.db.enter(ctx)()
	e, ok := f.db.events[id]
	if !ok {
		return model.ErrEventNotFound
	}
	e.TotalSeats = uint32(int(e.TotalSeats) + totalDelta)
	e.AvailableSeats = uint32(int(e.AvailableSeats) + availableDelta)
	f.db.events[id] = e
	return nil
}

func (f fakeEvents) AdjustAvailable(ctx context.Context, id uint64, delta int) error {
	return f.AdjustSeatCounts(ctx, id, 0, delta)
}

type fakeSeats struct{ db *fakeDB }

func (f fakeSeats) GetByID(ctx context.Context, id uint64) (model.Seat, error) {
	defer f.db.enter(ctx)()
	s, ok := f.db.seats[id]
	if !ok {
		return model.Seat{}, model.ErrSeatNotFound
	}
	return s, nil
}

func (f fakeSeats) GetForUpdate(ctx context.Context, id uint64) (model.Seat, error) {
	return f.GetByID(ctx, id)
}

func (f fakeSeats) SetHeld(ctx context.Context, id uint64, token string, expiresAt time.Time) error {
	defer f.db.enter(ctx)()
	s, ok := f.db.seats[id]
	if !ok {
		return model.ErrSeatNotFound
	}
	s.State = model.SeatHeld
	s.HoldToken = token
	s.HoldExpiresAt = &expiresAt
	f.db.seats[id] = s
	return nil
}

func (f fakeSeats) SetBooked(ctx context.Context, id uint64) error {
	defer f.db.enter(ctx)()
	s, ok := f.db.seats[id]
	if !ok {
		return model.ErrSeatNotFound
	}
	s.State = model.SeatBooked
	s.HoldToken = ""
	s.HoldExpiresAt = nil
	f.db.seats[id] = s
	return nil
}

func (f fakeSeats) SetFree(ctx context.Context, id uint64) error {
	defer f.db.enter(ctx)()
	s, ok := f.db.seats[id]
	if !ok {
		return model.ErrSeatNotFound
	}
	s.State = model.SeatFree
	s.HoldToken = ""
	s.HoldExpiresAt = nil
	f.db.seats[id] = s
	return nil
}

func (f fakeSeats) CreateBulk(ctx context.Context, seats []model.Seat) error {
	defer f.db.enter(ctx)()
	type pos struct {
		event uint64
		row   string
		num   uint32
	}
	taken := map[pos]struct{}{}
	for _, s := range f.db.seats {
		taken[pos{s.EventID, s.RowLabel, s.SeatNumber}] = struct{}{}
	}
	for _, s := range seats {
		key := pos{s.EventID, s.RowLabel, s.SeatNumber}
		if _, dup := taken[key]; dup {
			return fmt.Errorf("seat %s-%d exists: %w", s.RowLabel, s.SeatNumber, model.ErrSeatBatchInvalid)
		}
		taken[key] = struct{}{}
	}
	for _, s := range seats {
		s.ID = f.db.id()
		f.db.seats[s.ID] = s
	}
	return nil
}

func (f fakeSeats) ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	defer f.db.enter(ctx)()
	var out []model.Seat
	for _, s := range f.db.seats {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeSeats) DueExpired(ctx context.Context, now time.Time, limit int) ([]uint64, error) {
	defer f.db.enter(ctx)()
	var due []uint64
	for _, s := range f.db.seats {
		if s.HoldExpired(now) {
			due = append(due, s.ID)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

type fakeBookings struct{ db *fakeDB }

func (f fakeBookings) Create(ctx context.Context, b *model.Booking) error {
	defer f.db.enter(ctx)()
	for _, other := range f.db.bookings {
		if other.BookingNumber == b.BookingNumber || other.TicketToken == b.TicketToken {
			return fmt.Errorf("booking exists: %w", repository.ErrDuplicateEntry)
		}
	}
	b.ID = f.db.id()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	f.db.bookings[b.ID] = *b
	return nil
}

func (f fakeBookings) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	defer f.db.enter(ctx)()
	b, ok := f.db.bookings[id]
	if !ok {
		return model.Booking{}, model.ErrBookingNotFound
	}
	return b, nil
}

func (f fakeBookings) GetForUpdate(ctx context.Context, id uint64) (model.Booking, error) {
	return f.GetByID(ctx, id)
}

func (f fakeBookings) GetByNumber(ctx context.Context, number string) (model.Booking, error) {
	defer f.db.enter(ctx)()
	for _, b := range f.db.bookings {
		if b.BookingNumber == number {
			return b, nil
		}
	}
	return model.Booking{}, model.ErrBookingNotFound
}

func (f fakeBookings) GetByTicketTokenForUpdate(ctx context.Context, token string) (model.Booking, error) {
	defer f.db.enter(ctx)()
	for _, b := range f.db.bookings {
		if b.TicketToken == token {
			return b, nil
		}
	}
	return model.Booking{}, model.ErrBookingNotFound
}

func (f fakeBookings) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	defer f.db.enter(ctx)()
	b, ok := f.db.bookings[id]
	if !ok {
		return model.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	f.db.bookings[id] = b
	return nil
}

func (f fakeBookings) SetCheckedIn(ctx context.Context, id uint64, at time.Time) error {
	defer f.db.enter(ctx)()
	b, ok := f.db.bookings[id]
	if !ok {
		return model.ErrBookingNotFound
	}
	b.Status = model.BookingAttended
	b.CheckedInAt = &at
	b.UpdatedAt = at
	f.db.bookings[id] = b
	return nil
}

func (f fakeBookings) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Booking, error) {
	defer f.db.enter(ctx)()
	var out []model.Booking
	for _, b := range f.db.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return pageBookings(out, limit, offset), nil
}

func (f fakeBookings) ListByEvent(ctx context.Context, eventID uint64, limit, offset int) ([]model.Booking, error) {
	defer f.db.enter(ctx)()
	var out []model.Booking
	for _, b := range f.db.bookings {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return pageBookings(out, limit, offset), nil
}

func pageBookings(out []model.Booking, limit, offset int) []model.Booking {
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

type fakePayments struct{ db *fakeDB }

func (f fakePayments) Create(ctx context.Context, p *model.Payment) error {
	defer f.db.enter(ctx)()
	for _, other := range f.db.payments {
		if other.BookingID == p.BookingID {
			return fmt.Errorf("booking %d: %w", p.BookingID, model.ErrDuplicatePayment)
		}
	}
	p.ID = f.db.id()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	f.db.payments[p.ID] = *p
	return nil
}

func (f fakePayments) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	defer f.db.enter(ctx)()
	p, ok := f.db.payments[id]
	if !ok {
		return model.Payment{}, model.ErrPaymentNotFound
	}
	return p, nil
}

func (f fakePayments) GetForUpdate(ctx context.Context, id uint64) (model.Payment, error) {
	return f.GetByID(ctx, id)
}

func (f fakePayments) GetByBooking(ctx context.Context, bookingID uint64) (model.Payment, error) {
	defer f.db.enter(ctx)()
	for _, p := range f.db.payments {
		if p.BookingID == bookingID {
			return p, nil
		}
	}
	return model.Payment{}, model.ErrPaymentNotFound
}

func (f fakePayments) MarkCompleted(ctx context.Context, id uint64, externalRef, method string, paidAt time.Time) error {
	defer f.db.enter(ctx)()
	p, ok := f.db.payments[id]
	if !ok {
		return model.ErrPaymentNotFound
	}
	p.Status = model.PaymentCompleted
	p.ExternalRef = externalRef
	p.Method = method
	p.PaidAt = &paidAt
	p.UpdatedAt = paidAt
	f.db.payments[id] = p
	return nil
}

func (f fakePayments) UpdateStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	defer f.db.enter(ctx)()
	p, ok := f.db.payments[id]
	if !ok {
		return model.ErrPaymentNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	f.db.payments[id] = p
	return nil
}

func (f fakePayments) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Payment, error) {
	defer f.db.enter(ctx)()
	var out []model.Payment
	for _, p := range f.db.payments {
		if b, ok := f.db.bookings[p.BookingID]; ok && b.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
