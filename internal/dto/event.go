package dto

import (
	"encoding/json"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
)

// EventDetailInput is a single price tier in a create/update request
type EventDetailInput struct {
	Title string `json:"title" binding:"required"`
	Price int    `json:"price" binding:"required,min=0"`
}

// CreateEventRequest represents a request to publish a new event
type CreateEventRequest struct {
	CategoryID  string    `json:"category_id" binding:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`

	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Street     string  `json:"street"`
	Locality   string  `json:"locality"`
	Voivodship string  `json:"voivodship"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone"`

	Deposit       bool `json:"deposit"`
	DepositAmount int  `json:"deposit_amount"`
	UserLimit     bool `json:"user_limit"`

	CalendarDetail json.RawMessage    `json:"calendar_detail,omitempty"`
	Details        []EventDetailInput `json:"details" binding:"required,min=1,dive"`
}

// UpdateEventRequest represents a request to modify an event.
// Dates, details and the calendar blob are applied only when the event has
// no bookings yet; the remaining fields are always applied.
type UpdateEventRequest struct {
	Description   string `json:"description"`
	UserLimit     bool   `json:"user_limit"`
	Phone         string `json:"phone"`
	Deposit       bool   `json:"deposit"`
	DepositAmount int    `json:"deposit_amount"`

	StartDate      *time.Time         `json:"start_date,omitempty"`
	EndDate        *time.Time         `json:"end_date,omitempty"`
	CalendarDetail json.RawMessage    `json:"calendar_detail,omitempty"`
	Details        []EventDetailInput `json:"details,omitempty"`
}

// CancelEventRequest represents a request to cancel an event
type CancelEventRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	CategoryID  string `json:"category_id"`
	Description string `json:"description"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`

	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Street     string  `json:"street"`
	Locality   string  `json:"locality"`
	Voivodship string  `json:"voivodship"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone"`

	Deposit       bool `json:"deposit"`
	DepositAmount int  `json:"deposit_amount"`
	UserLimit     bool `json:"user_limit"`

	PriceFrom int     `json:"price_from"`
	PriceTo   int     `json:"price_to"`
	Rating    float64 `json:"rating"`
	UserCount int     `json:"user_count"`

	CancelComment string    `json:"cancel_comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	Details []EventDetailResponse `json:"details,omitempty"`
	Files   []EventFileResponse   `json:"files,omitempty"`
}

// EventDetailResponse represents a price tier in API responses
type EventDetailResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
}

// EventFileResponse represents an attached file in API responses
type EventFileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// EventFromDomain converts a domain Event to an EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	priceFrom, priceTo := e.PriceRange()

	resp := &EventResponse{
		ID:            e.ID,
		CompanyID:     e.CompanyID,
		CategoryID:    e.CategoryID,
		Description:   e.Description,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		Status:        e.Status.String(),
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		Street:        e.Street,
		Locality:      e.Locality,
		Voivodship:    e.Voivodship,
		Country:       e.Country,
		Phone:         e.Phone,
		Deposit:       e.Deposit,
		DepositAmount: e.DepositAmount,
		UserLimit:     e.UserLimit,
		PriceFrom:     priceFrom,
		PriceTo:       priceTo,
		Rating:        e.RatingScore,
		UserCount:     e.UserCount,
		CancelComment: e.CancelComment,
		CreatedAt:     e.CreatedAt,
	}

	for _, d := range e.Details {
		resp.Details = append(resp.Details, EventDetailResponse{
			ID:    d.ID,
			Title: d.Title,
			Price: d.Price,
		})
	}

	for _, f := range e.Files {
		resp.Files = append(resp.Files, EventFileResponse{
			ID:   f.ID,
			Name: f.Name,
			Path: f.Path,
		})
	}

	return resp
}

// EventsFromDomain converts a slice of domain Events
func EventsFromDomain(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventFromDomain(e))
	}
	return out
}
