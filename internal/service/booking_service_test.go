package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/repository"
)

func newTestBookingService(
	bookings *mockBookingRepository,
	events *mockEventRepository,
	pub *capturePublisher,
) BookingService {
	return NewBookingServiceWithClock(
		bookings,
		events,
		NewRefundPolicy(RefundConfig{NoticeHours: 48, CommissionPercent: 10}),
		pub,
		fixedClock(testNow),
	)
}

func TestBookingServiceCreate(t *testing.T) {
	tests := []struct {
		name    string
		event   *domain.Event
		wantErr error
	}{
		{
			name:  "active event",
			event: activeEvent(testNow.AddDate(0, 1, 0)),
		},
		{
			name:    "unknown event",
			event:   nil,
			wantErr: domain.ErrEventNotFound,
		},
		{
			name: "canceled event",
			event: func() *domain.Event {
				e := activeEvent(testNow.AddDate(0, 1, 0))
				e.Status = domain.EventStatusCanceled
				return e
			}(),
			wantErr: domain.ErrInvalidEventStatus,
		},
		{
			name: "closed event",
			event: func() *domain.Event {
				e := activeEvent(testNow.AddDate(0, 1, 0))
				e.Status = domain.EventStatusClosed
				return e
			}(),
			wantErr: domain.ErrInvalidEventStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &mockEventRepository{
				getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
					return tt.event, nil
				},
			}
			var created *domain.UserEvent
			bookings := &mockBookingRepository{
				createFn: func(ctx context.Context, booking *domain.UserEvent) error {
					created = booking
					return nil
				},
			}
			svc := newTestBookingService(bookings, events, &capturePublisher{})

			req := &dto.CreateBookingRequest{
				EventID:      "event-1",
				SelectedDate: testNow.AddDate(0, 1, 0),
				Commission:   500,
			}
			booking, err := svc.Create(context.Background(), "user-1", req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if created != nil {
					t.Error("booking persisted despite failure")
				}
				return
			}
			if booking.Status != domain.UserEventStatusInit {
				t.Errorf("new booking status = %v, want init", booking.Status)
			}
			if booking.UserID != "user-1" || booking.Commission != 500 {
				t.Errorf("booking fields = %+v", booking)
			}
		})
	}
}

func TestBookingServiceTransitionRefund(t *testing.T) {
	tests := []struct {
		name       string
		eventStart time.Time
		commission int
		wantCredit *repository.RefundCredit
	}{
		{
			name:       "withdrawal with notice credits the company",
			eventStart: testNow.Add(72 * time.Hour),
			commission: 1000,
			wantCredit: &repository.RefundCredit{CompanyID: "company-1", Amount: 100},
		},
		{
			name:       "late withdrawal credits nothing",
			eventStart: testNow.Add(12 * time.Hour),
			commission: 1000,
			wantCredit: nil,
		},
		{
			name:       "zero commission credits nothing",
			eventStart: testNow.Add(72 * time.Hour),
			commission: 0,
			wantCredit: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &mockEventRepository{
				getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
					return activeEvent(tt.eventStart), nil
				},
			}
			var gotCredit *repository.RefundCredit
			var gotFrom, gotTo domain.UserEventStatus
			bookings := &mockBookingRepository{
				getByIDFn: func(ctx context.Context, id string) (*domain.UserEvent, error) {
					return &domain.UserEvent{
						ID:         id,
						UserID:     "user-1",
						EventID:    "event-1",
						Status:     domain.UserEventStatusAccepted,
						Commission: tt.commission,
					}, nil
				},
				transitionFn: func(ctx context.Context, bookingID string, from, to domain.UserEventStatus, credit *repository.RefundCredit) error {
					gotFrom, gotTo, gotCredit = from, to, credit
					return nil
				},
			}
			pub := &capturePublisher{}
			svc := newTestBookingService(bookings, events, pub)

			booking, err := svc.Transition(context.Background(), "booking-1", domain.UserEventStatusUserRemoved)
			if err != nil {
				t.Fatalf("Transition() error = %v", err)
			}
			if booking.Status != domain.UserEventStatusUserRemoved {
				t.Errorf("status = %v, want user_removed", booking.Status)
			}
			if gotFrom != domain.UserEventStatusAccepted || gotTo != domain.UserEventStatusUserRemoved {
				t.Errorf("transition %v -> %v passed to repository", gotFrom, gotTo)
			}

			if tt.wantCredit == nil {
				if gotCredit != nil {
					t.Errorf("credit = %+v, want none", gotCredit)
				}
				if len(pub.refundAmounts) != 0 {
					t.Error("refund notification published without a credit")
				}
			} else {
				if gotCredit == nil || *gotCredit != *tt.wantCredit {
					t.Errorf("credit = %+v, want %+v", gotCredit, tt.wantCredit)
				}
				if len(pub.refundAmounts) != 1 || pub.refundAmounts[0] != tt.wantCredit.Amount {
					t.Errorf("refund notifications = %v", pub.refundAmounts)
				}
			}
			if len(pub.statusChanges) != 1 || pub.statusChanges[0] != string(domain.UserEventStatusUserRemoved) {
				t.Errorf("status change notifications = %v", pub.statusChanges)
			}
		})
	}
}

func TestBookingServiceTransitionRules(t *testing.T) {
	tests := []struct {
		name    string
		current domain.UserEventStatus
		target  domain.UserEventStatus
		wantErr error
	}{
		{
			name:    "init to accepted",
			current: domain.UserEventStatusInit,
			target:  domain.UserEventStatusAccepted,
		},
		{
			name:    "init to rejected",
			current: domain.UserEventStatusInit,
			target:  domain.UserEventStatusRejected,
		},
		{
			name:    "accepted to done",
			current: domain.UserEventStatusAccepted,
			target:  domain.UserEventStatusDone,
		},
		{
			name:    "init straight to done",
			current: domain.UserEventStatusInit,
			target:  domain.UserEventStatusDone,
			wantErr: domain.ErrInvalidStatusTransition,
		},
		{
			name:    "done is terminal",
			current: domain.UserEventStatusDone,
			target:  domain.UserEventStatusAccepted,
			wantErr: domain.ErrInvalidStatusTransition,
		},
		{
			name:    "rejected is terminal",
			current: domain.UserEventStatusRejected,
			target:  domain.UserEventStatusAccepted,
			wantErr: domain.ErrInvalidStatusTransition,
		},
		{
			name:    "unknown target",
			current: domain.UserEventStatusInit,
			target:  domain.UserEventStatus("archived"),
			wantErr: domain.ErrInvalidBookingStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &mockEventRepository{
				getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
					return activeEvent(testNow.AddDate(0, 1, 0)), nil
				},
			}
			bookings := &mockBookingRepository{
				getByIDFn: func(ctx context.Context, id string) (*domain.UserEvent, error) {
					return &domain.UserEvent{ID: id, EventID: "event-1", Status: tt.current}, nil
				},
			}
			svc := newTestBookingService(bookings, events, &capturePublisher{})

			_, err := svc.Transition(context.Background(), "booking-1", tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Transition() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookingServiceTransitionUnknownBooking(t *testing.T) {
	bookings := &mockBookingRepository{
		getByIDFn: func(ctx context.Context, id string) (*domain.UserEvent, error) {
			return nil, nil
		},
	}
	svc := newTestBookingService(bookings, &mockEventRepository{}, &capturePublisher{})

	_, err := svc.Transition(context.Background(), "missing", domain.UserEventStatusAccepted)
	if !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("Transition() error = %v, want ErrBookingNotFound", err)
	}
}
