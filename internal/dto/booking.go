package dto

import (
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
)

// CreateBookingRequest represents a request to book an event slot
type CreateBookingRequest struct {
	EventID      string    `json:"event_id" binding:"required"`
	SelectedDate time.Time `json:"selected_date" binding:"required"`
	Commission   int       `json:"commission" binding:"min=0"`
}

// TransitionBookingRequest represents a booking status change request
type TransitionBookingRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	Status       string    `json:"status"`
	SelectedDate time.Time `json:"selected_date"`
	Commission   int       `json:"commission"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookingFromDomain converts a domain UserEvent to a BookingResponse
func BookingFromDomain(ue *domain.UserEvent) *BookingResponse {
	return &BookingResponse{
		ID:           ue.ID,
		UserID:       ue.UserID,
		EventID:      ue.EventID,
		Status:       string(ue.Status),
		SelectedDate: ue.SelectedDate,
		Commission:   ue.Commission,
		CreatedAt:    ue.CreatedAt,
	}
}

// CategoryResponse represents a category tree node in API responses
type CategoryResponse struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Children []*CategoryResponse `json:"children,omitempty"`
}

// CategoryFromDomain converts a domain EventCategory and its subtree
func CategoryFromDomain(c *domain.EventCategory) *CategoryResponse {
	resp := &CategoryResponse{
		ID:    c.ID,
		Title: c.Title,
	}
	for _, child := range c.Children {
		resp.Children = append(resp.Children, CategoryFromDomain(child))
	}
	return resp
}
