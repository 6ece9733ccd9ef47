package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eventbook/eventbook-api/internal/model"
)

// SeatInput is one row of a bulk seat batch. The whole batch is
// validated before any insertion and rejected as a unit on any invalid
// entry; a batch is never partially applied.
type SeatInput struct {
	RowLabel   string         `json:"row_label"`
	SeatNumber uint32         `json:"seat_number"`
	Tier       model.SeatTier `json:"tier"`
	PriceCents uint32         `json:"price_cents"`
}

// EventService covers the administrative edge of the engine: creating
// events and populating their seat inventory. Event metadata beyond
// what the ledger needs (categories, descriptions, reviews) lives
// outside this service.
type EventService struct {
	tx     TxRunner
	events EventStore
	seats  SeatStore
	auth   Authorizer
}

// NewEventService constructs an EventService.
func NewEventService(tx TxRunner, events EventStore, seats SeatStore) *EventService {
	return &EventService{tx: tx, events: events, seats: seats}
}

// CreateEvent creates an event owned by the principal with an empty
// seat inventory. Organizers and admins only.
func (s *EventService) CreateEvent(ctx context.Context, p model.Principal, title, venue string, startsAt, endsAt time.Time) (model.Event, error) {
	if p.Role != model.RoleOrganizer && p.Role != model.RoleAdmin {
		return model.Event{}, fmt.Errorf("create event: %w", model.ErrUnauthorized)
	}
	if title == "" || venue == "" || !endsAt.After(startsAt) {
		return model.Event{}, fmt.Errorf("%w: event needs a title, venue and a positive time window", model.ErrSeatBatchInvalid)
	}
	e := model.Event{
		OrganizerID: p.ID,
		Title:       title,
		Venue:       venue,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		IsActive:    true,
	}
	if err := s.events.Create(ctx, &e); err != nil {
		return model.Event{}, err
	}
	return e, nil
}

// GetEvent returns the event with the given id.
func (s *EventService) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// AddSeats appends a validated batch of seats to the event, bumping
// total_seats and available_seats inside the same transaction as the
// inserts. The event row is locked first so concurrent batches
// serialize against each other and against the ledger's counter
// updates.
func (s *EventService) AddSeats(ctx context.Context, p model.Principal, eventID uint64, batch []SeatInput) (int, error) {
	if err := validateSeatBatch(batch); err != nil {
		return 0, err
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.events.GetForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if err := s.auth.Authorize(p, ActionManageEvent, event.OrganizerID); err != nil {
			return err
		}
		seats := make([]model.Seat, len(batch))
		for i, in := range batch {
			seats[i] = model.Seat{
				EventID:    eventID,
				RowLabel:   in.RowLabel,
				SeatNumber: in.SeatNumber,
				Tier:       in.Tier,
				PriceCents: in.PriceCents,
				State:      model.SeatFree,
			}
		}
		if err := s.seats.CreateBulk(ctx, seats); err != nil {
			return err
		}
		return s.events.AdjustSeatCounts(ctx, eventID, len(batch), len(batch))
	})
	if err != nil {
		return 0, err
	}
	return len(batch), nil
}

// validateSeatBatch checks every entry of the batch before anything is
// inserted: known tier, non-empty row, positive seat number and price,
// and no duplicate position within the batch itself.
func validateSeatBatch(batch []SeatInput) error {
	if len(batch) == 0 {
		return fmt.Errorf("%w: empty batch", model.ErrSeatBatchInvalid)
	}
	type pos struct {
		row string
		num uint32
	}
	seen := make(map[pos]struct{}, len(batch))
	for i, in := range batch {
		if in.RowLabel == "" {
			return fmt.Errorf("%w: entry %d has empty row label", model.ErrSeatBatchInvalid, i)
		}
		if in.SeatNumber == 0 {
			return fmt.Errorf("%w: entry %d has seat number 0", model.ErrSeatBatchInvalid, i)
		}
		if !model.ValidTier(in.Tier) {
			return fmt.Errorf("%w: entry %d has unknown tier %q", model.ErrSeatBatchInvalid, i, in.Tier)
		}
		if in.PriceCents == 0 {
			return fmt.Errorf("%w: entry %d has zero price", model.ErrSeatBatchInvalid, i)
		}
		key := pos{in.RowLabel, in.SeatNumber}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: entry %d duplicates seat %s-%d", model.ErrSeatBatchInvalid, i, in.RowLabel, in.SeatNumber)
		}
		seen[key] = struct{}{}
	}
	return nil
}
