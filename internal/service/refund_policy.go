package service

import (
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
)

// RefundConfig holds the refund policy tunables, sourced from process
// configuration at startup
type RefundConfig struct {
	// NoticeHours is the minimum whole-hour distance from the event start
	// required for a refund
	NoticeHours int
	// CommissionPercent of the booking commission credited back (1-100)
	CommissionPercent int
}

// RefundPolicy computes the company credit owed when a user withdraws from
// an event. The elapsed time is measured in whole hours between now and the
// event start date.
type RefundPolicy struct {
	config RefundConfig
}

// NewRefundPolicy creates a new RefundPolicy
func NewRefundPolicy(config RefundConfig) *RefundPolicy {
	return &RefundPolicy{config: config}
}

// Amount returns the credit owed for the withdrawal, or 0 when the notice
// window was not respected. Integer arithmetic truncates toward zero.
func (p *RefundPolicy) Amount(now time.Time, event *domain.Event, booking *domain.UserEvent) int {
	if wholeHours(now, event.StartDate) < p.config.NoticeHours {
		return 0
	}
	return booking.Commission * p.config.CommissionPercent / 100
}
