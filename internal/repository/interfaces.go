package repository

import (
	"context"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
)

// EventRepository defines persistence operations for events
type EventRepository interface {
	// Create persists a new event with its price details and increments the
	// active-event counter of every employee of the owning company, all in
	// one transaction.
	Create(ctx context.Context, event *domain.Event) error

	// GetByID retrieves an event with its details and files.
	// Returns (nil, nil) when not found.
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// Update persists the always-updatable fields. When the event has no
	// bookings it additionally overwrites dates and the calendar blob and
	// replaces the whole detail collection. The booking-count check and the
	// writes run in one transaction; the return value reports whether the
	// structural fields were applied.
	Update(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error)

	// MarkCanceled sets status to Canceled with the comment and truncated end
	// date, guarded on the event still being Active. Returns
	// domain.ErrStatusConflict when the guard fails.
	MarkCanceled(ctx context.Context, id, comment string, endDate time.Time) error

	// MarkClosed sets status to Closed. Closing an already-closed event is a
	// no-op.
	MarkClosed(ctx context.Context, id string) error

	// FindToClose returns active events whose end date has passed
	FindToClose(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error)

	// Search executes the multi-criteria filter query and returns the page of
	// matching events plus the total match count.
	Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error)

	// ListByCompany returns a company's events, newest first
	ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error)

	// CountBookings returns the number of bookings against an event
	CountBookings(ctx context.Context, eventID string) (int, error)

	// AddFile attaches a file reference to an event
	AddFile(ctx context.Context, file *domain.EventFile) error

	// RemoveFile detaches a file reference from an event
	RemoveFile(ctx context.Context, eventID, fileID string) error
}

// RefundCredit describes a company balance increment applied atomically with
// a booking transition
type RefundCredit struct {
	CompanyID string
	Amount    int
}

// BookingRepository defines persistence operations for bookings (user events)
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.UserEvent) error

	// GetByID retrieves a booking. Returns (nil, nil) when not found.
	GetByID(ctx context.Context, id string) (*domain.UserEvent, error)

	// Transition updates the booking status and, when credit is non-nil,
	// increments the company balance in the same transaction.
	Transition(ctx context.Context, bookingID string, from, to domain.UserEventStatus, credit *RefundCredit) error

	// ListByEvent returns bookings against an event
	ListByEvent(ctx context.Context, eventID string) ([]*domain.UserEvent, error)

	// ListByUser returns a user's bookings, newest first
	ListByUser(ctx context.Context, userID string, limit, page int) ([]*domain.UserEvent, int64, error)
}

// CompanyRepository defines persistence operations for companies
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error

	// GetByID retrieves a company. Returns (nil, nil) when not found.
	GetByID(ctx context.Context, id string) (*domain.Company, error)

	// CreditBalance atomically increments the company balance
	CreditBalance(ctx context.Context, companyID string, amount int) error

	// ListEmployees returns a company's employees
	ListEmployees(ctx context.Context, companyID string) ([]*domain.Employee, error)
}

// CategoryRepository defines persistence operations for the category tree
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.EventCategory) error

	// GetByID retrieves a single node. Returns (nil, nil) when not found.
	GetByID(ctx context.Context, id string) (*domain.EventCategory, error)

	// Roots returns the root nodes without children
	Roots(ctx context.Context) ([]*domain.EventCategory, error)

	// Children returns the direct children of a node
	Children(ctx context.Context, parentID string) ([]*domain.EventCategory, error)

	// Tree returns the full category forest with children populated
	Tree(ctx context.Context) ([]*domain.EventCategory, error)
}

// UserRepository defines persistence operations for users
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user. Returns (nil, nil) when not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// Search executes the user filter query with blacklist exclusion
	Search(ctx context.Context, query *dto.UserSearchQuery) ([]*domain.User, int64, error)

	// Blacklist returns the user ids blacklisted by a company
	Blacklist(ctx context.Context, companyID string) ([]string, error)
}
