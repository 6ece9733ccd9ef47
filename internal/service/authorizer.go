package service

import (
	"fmt"

	"github.com/eventbook/eventbook-api/internal/model"
)

// Action names a capability checked before a state-mutating or
// sensitive operation. All role and ownership rules live here instead
// of being scattered across handlers.
type Action string

const (
	ActionViewBooking       Action = "booking.view"
	ActionCancelBooking     Action = "booking.cancel"
	ActionPayBooking        Action = "booking.pay"
	ActionVerifyTicket      Action = "ticket.verify"
	ActionManageEvent       Action = "event.manage"
	ActionViewEventBookings Action = "event.bookings"
)

// Authorizer is the single capability check used by every service.
// Admins may do anything. Owner-scoped actions compare the principal
// id against the owning user; event-scoped actions require the
// organizer role and ownership of the event.
type Authorizer struct{}

// Authorize returns nil when the principal may perform the action on a
// resource owned by ownerID, and ErrUnauthorized otherwise. Actions
// that are purely role-gated ignore ownerID.
func (Authorizer) Authorize(p model.Principal, action Action, ownerID uint64) error {
	if p.Role == model.RoleAdmin {
		return nil
	}
	switch action {
	case ActionViewBooking, ActionCancelBooking, ActionPayBooking:
		if p.ID == ownerID {
			return nil
		}
	case ActionVerifyTicket:
		if p.Role == model.RoleOrganizer {
			return nil
		}
	case ActionManageEvent, ActionViewEventBookings:
		if p.Role == model.RoleOrganizer && p.ID == ownerID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrUnauthorized, action)
}
