package domain

import (
	"encoding/json"
	"time"
)

// EventStatus represents the lifecycle status of an event
type EventStatus int

const (
	EventStatusCanceled EventStatus = 0
	EventStatusActive   EventStatus = 1
	EventStatusClosed   EventStatus = 2
)

// String returns a human-readable status name
func (s EventStatus) String() string {
	switch s {
	case EventStatusCanceled:
		return "canceled"
	case EventStatusActive:
		return "active"
	case EventStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// IsValid reports whether the status is one of the known values
func (s EventStatus) IsValid() bool {
	return s == EventStatusCanceled || s == EventStatusActive || s == EventStatusClosed
}

// Event represents a bookable service slot published by a company
type Event struct {
	ID          string      `json:"id"`
	CompanyID   string      `json:"company_id"`
	CategoryID  string      `json:"category_id"`
	Description string      `json:"description"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Status      EventStatus `json:"status"`

	// Location
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Street     string  `json:"street"`
	Locality   string  `json:"locality"`
	Voivodship string  `json:"voivodship"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone"`

	// Deposit settings; DepositAmount is meaningful only when Deposit is set
	Deposit       bool `json:"deposit"`
	DepositAmount int  `json:"deposit_amount"`

	// UserLimit caps how many bookings the event accepts
	UserLimit bool `json:"user_limit"`

	// CalendarDetail is an opaque, client-defined scheduling blob
	CalendarDetail json.RawMessage `json:"calendar_detail,omitempty"`

	// Rating aggregate
	RatingScore   float64 `json:"rating_score"`
	RatingTotal   int     `json:"rating_total"`
	RatingCounter int     `json:"rating_counter"`

	CancelComment string    `json:"cancel_comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Details []EventDetail `json:"details,omitempty"`
	Files   []EventFile   `json:"files,omitempty"`

	// UserCount is the booking count, populated by list/search queries
	UserCount int `json:"user_count"`
}

// EventDetail is a price tier owned by exactly one event.
// Price is in the smallest currency unit.
type EventDetail struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Price   int    `json:"price"`
}

// EventFile is a reference to a file attached to an event
type EventFile struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
}

// IsActive reports whether the event is active
func (e *Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// IsCanceled reports whether the event has been canceled
func (e *Event) IsCanceled() bool {
	return e.Status == EventStatusCanceled
}

// IsClosed reports whether the event has been closed
func (e *Event) IsClosed() bool {
	return e.Status == EventStatusClosed
}

// Close sets the status to Closed. Closing an already-closed event is a no-op,
// which keeps the auto-close sweep idempotent.
func (e *Event) Close() {
	e.Status = EventStatusClosed
}

// PriceRange returns the min and max of the event's detail prices, or (0, 0)
// when the event has no details.
func (e *Event) PriceRange() (from, to int) {
	if len(e.Details) == 0 {
		return 0, 0
	}
	from = e.Details[0].Price
	to = e.Details[0].Price
	for _, d := range e.Details[1:] {
		if d.Price < from {
			from = d.Price
		}
		if d.Price > to {
			to = d.Price
		}
	}
	return from, to
}

// AddFile attaches a file reference to the event
func (e *Event) AddFile(f EventFile) {
	e.Files = append(e.Files, f)
}

// RemoveFile detaches a file reference by id and reports whether it was present
func (e *Event) RemoveFile(fileID string) bool {
	for i, f := range e.Files {
		if f.ID == fileID {
			e.Files = append(e.Files[:i], e.Files[i+1:]...)
			return true
		}
	}
	return false
}
