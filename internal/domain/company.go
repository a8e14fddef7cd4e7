package domain

import (
	"time"
)

// Company owns events and accumulates refund credits on its balance.
// Balance is in the smallest currency unit and must only be mutated through
// atomic increments at the persistence layer.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NIP       string    `json:"nip"`
	Phone     string    `json:"phone"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Employee is a user working for a company. ActiveEvents counts the events
// the employee is currently assigned to and is incremented on event creation.
type Employee struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	UserID       string    `json:"user_id"`
	ActiveEvents int       `json:"active_events"`
	CreatedAt    time.Time `json:"created_at"`
}
