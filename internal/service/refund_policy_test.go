package service

import (
	"testing"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
)

func TestRefundPolicyAmount(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	policy := NewRefundPolicy(RefundConfig{NoticeHours: 48, CommissionPercent: 10})

	tests := []struct {
		name       string
		start      time.Time
		commission int
		want       int
	}{
		{
			name:       "window respected",
			start:      now.Add(48 * time.Hour),
			commission: 1000,
			want:       100,
		},
		{
			name:       "far in the future",
			start:      now.AddDate(0, 1, 0),
			commission: 1000,
			want:       100,
		},
		{
			// 47h59m is 47 whole hours, below the threshold
			name:       "just inside the window",
			start:      now.Add(47*time.Hour + 59*time.Minute),
			commission: 1000,
			want:       0,
		},
		{
			name:       "last minute withdrawal",
			start:      now.Add(time.Hour),
			commission: 1000,
			want:       0,
		},
		{
			// integer division truncates
			name:       "fractional result floors",
			start:      now.Add(72 * time.Hour),
			commission: 999,
			want:       99,
		},
		{
			name:       "zero commission",
			start:      now.Add(72 * time.Hour),
			commission: 0,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &domain.Event{StartDate: tt.start}
			booking := &domain.UserEvent{Commission: tt.commission}

			if got := policy.Amount(now, event, booking); got != tt.want {
				t.Errorf("Amount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRefundPolicyFullCommission(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	policy := NewRefundPolicy(RefundConfig{NoticeHours: 24, CommissionPercent: 100})

	event := &domain.Event{StartDate: now.Add(25 * time.Hour)}
	booking := &domain.UserEvent{Commission: 750}

	if got := policy.Amount(now, event, booking); got != 750 {
		t.Errorf("Amount() = %d, want full commission 750", got)
	}
}
