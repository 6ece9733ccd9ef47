package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventbook/eventbook-api/internal/model"
)

func TestAuthorize(t *testing.T) {
	var auth Authorizer
	owner := model.Principal{ID: 7, Role: model.RoleUser}
	stranger := model.Principal{ID: 8, Role: model.RoleUser}
	org := model.Principal{ID: 7, Role: model.RoleOrganizer}
	otherOrg := model.Principal{ID: 9, Role: model.RoleOrganizer}
	root := model.Principal{ID: 1, Role: model.RoleAdmin}

	cases := []struct {
		name    string
		p       model.Principal
		action  Action
		ownerID uint64
		allowed bool
	}{
		{"owner views own booking", owner, ActionViewBooking, 7, true},
		{"stranger views others booking", stranger, ActionViewBooking, 7, false},
		{"owner cancels own booking", owner, ActionCancelBooking, 7, true},
		{"stranger cancels others booking", stranger, ActionCancelBooking, 7, false},
		{"owner pays own booking", owner, ActionPayBooking, 7, true},
		{"organizer verifies tickets", org, ActionVerifyTicket, 0, true},
		{"user cannot verify tickets", owner, ActionVerifyTicket, 0, false},
		{"organizer manages own event", org, ActionManageEvent, 7, true},
		{"organizer cannot manage others event", otherOrg, ActionManageEvent, 7, false},
		{"user cannot manage events", owner, ActionManageEvent, 7, false},
		{"organizer lists own event bookings", org, ActionViewEventBookings, 7, true},
		{"admin may do anything", root, ActionManageEvent, 7, true},
		{"admin views any booking", root, ActionViewBooking, 7, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := auth.Authorize(tc.p, tc.action, tc.ownerID)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrUnauthorized)
			}
		})
	}
}
