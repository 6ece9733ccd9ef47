package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventbook/eventbook-api/internal/model"
)

func TestCreateEventRequiresOrganizer(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	starts := e.clock.Now().Add(24 * time.Hour)
	ends := starts.Add(3 * time.Hour)

	_, err := e.events.CreateEvent(ctx, alice, "Concert", "Arena", starts, ends)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	ev, err := e.events.CreateEvent(ctx, organizer, "Concert", "Arena", starts, ends)
	require.NoError(t, err)
	assert.Equal(t, organizer.ID, ev.OrganizerID)
	assert.True(t, ev.IsActive)
	assert.Zero(t, ev.TotalSeats)

	_, err = e.events.CreateEvent(ctx, organizer, "", "Arena", starts, ends)
	assert.Error(t, err, "title required")
	_, err = e.events.CreateEvent(ctx, organizer, "Concert", "Arena", ends, starts)
	assert.Error(t, err, "window must be positive")
}

func TestAddSeatsAppliesWholeBatch(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	ev, err := e.events.CreateEvent(ctx, organizer, "Concert", "Arena",
		e.clock.Now().Add(24*time.Hour), e.clock.Now().Add(27*time.Hour))
	require.NoError(t, err)

	batch := []SeatInput{
		{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 15000},
		{RowLabel: "A", SeatNumber: 2, Tier: model.TierVIP, PriceCents: 15000},
		{RowLabel: "B", SeatNumber: 1, Tier: model.TierStandard, PriceCents: 5000},
	}
	n, err := e.events.AddSeats(ctx, organizer, ev.ID, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := e.events.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), got.TotalSeats)
	assert.Equal(t, uint32(3), got.AvailableSeats)

	seats, err := e.ledger.ListSeats(ctx, ev.ID, "", false)
	require.NoError(t, err)
	assert.Len(t, seats, 3)
	for _, s := range seats {
		assert.Equal(t, model.SeatFree, s.State)
	}
}

func TestAddSeatsRejectsInvalidBatchEntirely(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	ev, err := e.events.CreateEvent(ctx, organizer, "Concert", "Arena",
		e.clock.Now().Add(24*time.Hour), e.clock.Now().Add(27*time.Hour))
	require.NoError(t, err)

	cases := map[string][]SeatInput{
		"empty batch": {},
		"empty row": {
			{RowLabel: "", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100},
		},
		"zero seat number": {
			{RowLabel: "A", SeatNumber: 0, Tier: model.TierVIP, PriceCents: 100},
		},
		"unknown tier": {
			{RowLabel: "A", SeatNumber: 1, Tier: "Gold", PriceCents: 100},
		},
		"zero price": {
			{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 0},
		},
		"one bad entry poisons the batch": {
			{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100},
			{RowLabel: "A", SeatNumber: 2, Tier: "Gold", PriceCents: 100},
		},
		"duplicate within batch": {
			{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100},
			{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100},
		},
	}
	for name, batch := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.events.AddSeats(ctx, organizer, ev.ID, batch)
			assert.ErrorIs(t, err, model.ErrSeatBatchInvalid)
		})
	}

	got, err := e.events.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalSeats, "no invalid batch may leave seats behind")
	seats, err := e.ledger.ListSeats(ctx, ev.ID, "", false)
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func TestAddSeatsDuplicateAgainstExistingRollsBack(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	ev, err := e.events.CreateEvent(ctx, organizer, "Concert", "Arena",
		e.clock.Now().Add(24*time.Hour), e.clock.Now().Add(27*time.Hour))
	require.NoError(t, err)

	_, err = e.events.AddSeats(ctx, organizer, ev.ID, []SeatInput{
		{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100},
	})
	require.NoError(t, err)

	_, err = e.events.AddSeats(ctx, organizer, ev.ID, []SeatInput{
		{RowLabel: "B", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100},
		{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100},
	})
	assert.ErrorIs(t, err, model.ErrSeatBatchInvalid)

	got, err := e.events.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got.TotalSeats, "failed batch must roll back entirely")
	seats, err := e.ledger.ListSeats(ctx, ev.ID, "", false)
	require.NoError(t, err)
	assert.Len(t, seats, 1)
}

func TestAddSeatsOwnershipEnforced(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	ev, err := e.events.CreateEvent(ctx, organizer, "Concert", "Arena",
		e.clock.Now().Add(24*time.Hour), e.clock.Now().Add(27*time.Hour))
	require.NoError(t, err)

	rival := model.Principal{ID: 2, Role: model.RoleOrganizer}
	batch := []SeatInput{{RowLabel: "A", SeatNumber: 1, Tier: model.TierVIP, PriceCents: 100}}

	_, err = e.events.AddSeats(ctx, rival, ev.ID, batch)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = e.events.AddSeats(ctx, admin, ev.ID, batch)
	assert.NoError(t, err, "admins may manage any event")
}
