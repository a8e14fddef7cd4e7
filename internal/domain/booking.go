package domain

import (
	"time"
)

// UserEventStatus represents a booking's workflow state
type UserEventStatus string

const (
	UserEventStatusInit           UserEventStatus = "init"
	UserEventStatusAccepted       UserEventStatus = "accepted"
	UserEventStatusRejected       UserEventStatus = "rejected"
	UserEventStatusDone           UserEventStatus = "done"
	UserEventStatusUserRemoved    UserEventStatus = "user_removed"
	UserEventStatusCompanyRemoved UserEventStatus = "company_removed"
)

// IsValid reports whether the status is one of the known values
func (s UserEventStatus) IsValid() bool {
	switch s {
	case UserEventStatusInit, UserEventStatusAccepted, UserEventStatusRejected,
		UserEventStatusDone, UserEventStatusUserRemoved, UserEventStatusCompanyRemoved:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status
func (s UserEventStatus) IsTerminal() bool {
	switch s {
	case UserEventStatusRejected, UserEventStatusDone,
		UserEventStatusUserRemoved, UserEventStatusCompanyRemoved:
		return true
	}
	return false
}

// userEventTransitions maps each status to the statuses reachable from it
var userEventTransitions = map[UserEventStatus][]UserEventStatus{
	UserEventStatusInit: {
		UserEventStatusAccepted,
		UserEventStatusRejected,
		UserEventStatusUserRemoved,
	},
	UserEventStatusAccepted: {
		UserEventStatusDone,
		UserEventStatusUserRemoved,
		UserEventStatusCompanyRemoved,
	},
}

// CanTransition reports whether the booking may move from its current status
// to the target status
func (ue *UserEvent) CanTransition(target UserEventStatus) bool {
	for _, s := range userEventTransitions[ue.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// UserEvent links a user to an event (a booking).
// Commission is the amount withheld for this booking, in the smallest
// currency unit; the refund policy reads it on user withdrawal.
type UserEvent struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	EventID      string          `json:"event_id"`
	Status       UserEventStatus `json:"status"`
	SelectedDate time.Time       `json:"selected_date"`
	Commission   int             `json:"commission"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
