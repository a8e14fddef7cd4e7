package domain

import (
	"time"
)

// User is an end user who books events and rates companies
type User struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Gender    string     `json:"gender,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`

	// DeviceToken targets push notifications; empty when the user has no
	// registered device
	DeviceToken string `json:"device_token,omitempty"`

	RatingScore float64   `json:"rating_score"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
