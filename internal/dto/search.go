package dto

import (
	"time"
)

const (
	DefaultSearchLimit = 10
	DefaultSearchPage  = 1
)

// EventSearchQuery is the filter set for the event search engine.
// All filters are optional and combine with logical AND. Pointer fields
// distinguish "absent" from zero values.
type EventSearchQuery struct {
	CategoryID string `form:"category_id"`

	// Price band, matched against the event's derived min/max detail prices
	PriceFrom *int `form:"price_from"`
	PriceTo   *int `form:"price_to"`

	// Geo distance band in kilometers. All four inputs must be present
	// together, otherwise the geo filter is skipped entirely.
	Latitude  *float64 `form:"latitude"`
	Longitude *float64 `form:"longitude"`
	DistFrom  *float64 `form:"dist_from"`
	DistTo    *float64 `form:"dist_to"`

	// Bounds on the event start date
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`

	// Minimum aggregate rating
	Rating *float64 `form:"rating"`

	Status          *int    `form:"status"`
	StatusUserEvent *string `form:"status_user_event"`

	UserLimitReached *bool `form:"user_limit_reached"`

	// Blacklisted ids to exclude from results
	Blacklist []string `form:"-"`

	Limit int `form:"limit"`
	Page  int `form:"page"`
}

// SetDefaults applies default pagination values
func (q *EventSearchQuery) SetDefaults() {
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Page <= 0 {
		q.Page = DefaultSearchPage
	}
}

// Offset returns the query offset derived from page and limit
func (q *EventSearchQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// HasGeoFilter reports whether all four geo inputs are present
func (q *EventSearchQuery) HasGeoFilter() bool {
	return q.Latitude != nil && q.Longitude != nil && q.DistFrom != nil && q.DistTo != nil
}

// UserSearchQuery is the symmetric filter set reused for favourites and
// blacklist user queries.
type UserSearchQuery struct {
	Name    string   `form:"name"`
	Phone   string   `form:"phone"`
	Gender  string   `form:"gender"`
	AgeFrom *int     `form:"age_from"`
	AgeTo   *int     `form:"age_to"`
	Rating  *float64 `form:"rate"`
	IDs     []string `form:"ids"`

	Latitude  *float64 `form:"latitude"`
	Longitude *float64 `form:"longitude"`
	DistFrom  *float64 `form:"dist_from"`
	DistTo    *float64 `form:"dist_to"`

	Blacklist []string `form:"-"`

	Limit int `form:"limit"`
	Page  int `form:"page"`
}

// HasGeoFilter reports whether all four geo inputs are present; a partial
// set skips the distance predicate entirely.
func (q *UserSearchQuery) HasGeoFilter() bool {
	return q.Latitude != nil && q.Longitude != nil && q.DistFrom != nil && q.DistTo != nil
}

// SetDefaults applies default pagination values
func (q *UserSearchQuery) SetDefaults() {
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Page <= 0 {
		q.Page = DefaultSearchPage
	}
}

// Offset returns the query offset derived from page and limit
func (q *UserSearchQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
