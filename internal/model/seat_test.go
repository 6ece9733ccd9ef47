package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveState(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	assert.Equal(t, SeatFree, Seat{State: SeatFree}.EffectiveState(now))
	assert.Equal(t, SeatBooked, Seat{State: SeatBooked}.EffectiveState(now))

	held := Seat{State: SeatHeld, HoldExpiresAt: &future}
	assert.Equal(t, SeatHeld, held.EffectiveState(now))

	lapsed := Seat{State: SeatHeld, HoldExpiresAt: &past}
	assert.Equal(t, SeatFree, lapsed.EffectiveState(now), "a lapsed hold reads as free before any sweep")

	// Expiry boundary: a hold expiring exactly now is already free.
	atBoundary := Seat{State: SeatHeld, HoldExpiresAt: &now}
	assert.Equal(t, SeatFree, atBoundary.EffectiveState(now))
}

func TestHoldExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)

	assert.False(t, Seat{State: SeatFree}.HoldExpired(now))
	assert.False(t, Seat{State: SeatBooked, HoldExpiresAt: &past}.HoldExpired(now))
	assert.False(t, Seat{State: SeatHeld}.HoldExpired(now), "held seat without expiry never lapses")
	assert.True(t, Seat{State: SeatHeld, HoldExpiresAt: &past}.HoldExpired(now))
}

func TestValidTier(t *testing.T) {
	for _, tier := range []SeatTier{TierVIP, TierPremium, TierStandard, TierEconomy} {
		assert.True(t, ValidTier(tier))
	}
	assert.False(t, ValidTier("Gold"))
	assert.False(t, ValidTier(""))
}
