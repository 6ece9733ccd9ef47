package model

import "time"

// Event describes a bookable event with a finite seat inventory.
// AvailableSeats is maintained transactionally: every seat state
// transition that changes availability adjusts the counter inside the
// same transaction as the seat row update, so the counter always equals
// the number of seats in state FREE.
//
// Fields:
//  ID             – primary key identifier.
//  OrganizerID    – user who organizes the event.
//  Title          – display title of the event.
//  Venue          – venue name.
//  StartsAt       – when the event begins.
//  EndsAt         – when the event ends.
//  TotalSeats     – total number of seats created for the event.
//  AvailableSeats – seats currently in state FREE.
//  IsActive       – whether the event accepts bookings.
type Event struct {
	ID             uint64    // events.id
	OrganizerID    uint64    // events.organizer_id
	Title          string    // events.title
	Venue          string    // events.venue
	StartsAt       time.Time // events.starts_at
	EndsAt         time.Time // events.ends_at
	TotalSeats     uint32    // events.total_seats
	AvailableSeats uint32    // events.available_seats
	IsActive       bool      // events.is_active
	CreatedAt      time.Time // events.created_at
	UpdatedAt      time.Time // events.updated_at
}
