package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestEventService(events *mockEventRepository, pub *capturePublisher) EventService {
	return NewEventServiceWithClock(
		events,
		&mockCompanyRepository{},
		&mockCategoryRepository{},
		pub,
		fixedClock(testNow),
	)
}

func validCreateRequest() *dto.CreateEventRequest {
	return &dto.CreateEventRequest{
		CategoryID:  "cat-1",
		Description: "haircut promo",
		StartDate:   testNow.AddDate(0, 1, 0),
		EndDate:     testNow.AddDate(0, 2, 0),
		Details: []dto.EventDetailInput{
			{Title: "standard", Price: 5000},
		},
	}
}

func TestEventServiceCreate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *dto.CreateEventRequest)
		wantErr error
	}{
		{
			name:   "valid request",
			mutate: func(req *dto.CreateEventRequest) {},
		},
		{
			name:    "missing category",
			mutate:  func(req *dto.CreateEventRequest) { req.CategoryID = "" },
			wantErr: domain.ErrCategoryMissing,
		},
		{
			name: "start after end",
			mutate: func(req *dto.CreateEventRequest) {
				req.StartDate = testNow.AddDate(0, 2, 0)
				req.EndDate = testNow.AddDate(0, 1, 0)
			},
			wantErr: domain.ErrInvalidDateRange,
		},
		{
			name: "start equals end",
			mutate: func(req *dto.CreateEventRequest) {
				req.EndDate = req.StartDate
			},
			wantErr: domain.ErrInvalidDateRange,
		},
		{
			name:    "no price details",
			mutate:  func(req *dto.CreateEventRequest) { req.Details = nil },
			wantErr: domain.ErrNoPriceDetails,
		},
		{
			name: "deposit without amount",
			mutate: func(req *dto.CreateEventRequest) {
				req.Deposit = true
				req.DepositAmount = 0
			},
			wantErr: domain.ErrInvalidDepositAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *domain.Event
			events := &mockEventRepository{
				createFn: func(ctx context.Context, event *domain.Event) error {
					created = event
					return nil
				},
			}
			svc := newTestEventService(events, &capturePublisher{})

			req := validCreateRequest()
			tt.mutate(req)

			event, err := svc.Create(context.Background(), "company-1", req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if created != nil {
					t.Error("Create() persisted an event despite validation failure")
				}
				return
			}
			if event.Status != domain.EventStatusActive {
				t.Errorf("new event status = %v, want Active", event.Status)
			}
			if event.ID == "" {
				t.Error("new event has empty id")
			}
			if len(event.Details) != 1 || event.Details[0].Price != 5000 {
				t.Errorf("details not carried over: %+v", event.Details)
			}
			if created == nil {
				t.Error("event was not persisted")
			}
		})
	}
}

func TestEventServiceCreateUnknownCategory(t *testing.T) {
	svc := NewEventServiceWithClock(
		&mockEventRepository{},
		&mockCompanyRepository{},
		&mockCategoryRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.EventCategory, error) {
				return nil, nil
			},
		},
		&capturePublisher{},
		fixedClock(testNow),
	)

	_, err := svc.Create(context.Background(), "company-1", validCreateRequest())
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("Create() error = %v, want ErrCategoryNotFound", err)
	}
}

func activeEvent(start time.Time) *domain.Event {
	return &domain.Event{
		ID:         "event-1",
		CompanyID:  "company-1",
		CategoryID: "cat-1",
		StartDate:  start,
		EndDate:    start.AddDate(0, 1, 0),
		Status:     domain.EventStatusActive,
	}
}

func TestEventServiceCancelWindow(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		wantErr error
	}{
		{
			name:  "three whole days ahead succeeds",
			start: testNow.Add(72 * time.Hour),
		},
		{
			name:  "well in the future succeeds",
			start: testNow.AddDate(0, 1, 0),
		},
		{
			name:    "two whole days ahead fails",
			start:   testNow.Add(48 * time.Hour),
			wantErr: domain.ErrCancellationWindowExpired,
		},
		{
			// 71h is still only 2 whole days; the check is day-coarse.
			name:    "just under three days fails",
			start:   testNow.Add(71 * time.Hour),
			wantErr: domain.ErrCancellationWindowExpired,
		},
		{
			name:    "tomorrow fails",
			start:   testNow.Add(24 * time.Hour),
			wantErr: domain.ErrCancellationWindowExpired,
		},
		{
			name:    "already started fails",
			start:   testNow.Add(-time.Hour),
			wantErr: domain.ErrCancellationWindowExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &mockEventRepository{
				getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
					return activeEvent(tt.start), nil
				},
			}
			pub := &capturePublisher{}
			svc := newTestEventService(events, pub)

			event, err := svc.Cancel(context.Background(), "event-1", "moved premises")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Cancel() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(pub.canceledEvents) != 0 {
					t.Error("notification published for a failed cancel")
				}
				return
			}
			if event.Status != domain.EventStatusCanceled {
				t.Errorf("status = %v, want Canceled", event.Status)
			}
			if event.CancelComment != "moved premises" {
				t.Errorf("cancel comment = %q", event.CancelComment)
			}
			if !event.EndDate.Equal(testNow) {
				t.Errorf("end date = %v, want %v", event.EndDate, testNow)
			}
			if len(pub.canceledEvents) != 1 || pub.canceledEvents[0] != "event-1" {
				t.Errorf("canceled notifications = %v", pub.canceledEvents)
			}
		})
	}
}

func TestEventServiceCancelGuards(t *testing.T) {
	tests := []struct {
		name    string
		event   *domain.Event
		wantErr error
	}{
		{
			name:    "not found",
			event:   nil,
			wantErr: domain.ErrEventNotFound,
		},
		{
			name: "closed event",
			event: func() *domain.Event {
				e := activeEvent(testNow.AddDate(0, 1, 0))
				e.Status = domain.EventStatusClosed
				return e
			}(),
			wantErr: domain.ErrEventClosed,
		},
		{
			name: "already canceled",
			event: func() *domain.Event {
				e := activeEvent(testNow.AddDate(0, 1, 0))
				e.Status = domain.EventStatusCanceled
				return e
			}(),
			wantErr: domain.ErrAlreadyCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &mockEventRepository{
				getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
					return tt.event, nil
				},
			}
			svc := newTestEventService(events, &capturePublisher{})

			_, err := svc.Cancel(context.Background(), "event-1", "comment")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Cancel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// A canceled event in the past reports the window error, not the canceled
// error; the window check runs first.
func TestEventServiceCancelWindowCheckedBeforeCanceledState(t *testing.T) {
	e := activeEvent(testNow.Add(-time.Hour))
	e.Status = domain.EventStatusCanceled

	events := &mockEventRepository{
		getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
			return e, nil
		},
	}
	svc := newTestEventService(events, &capturePublisher{})

	_, err := svc.Cancel(context.Background(), "event-1", "comment")
	if !errors.Is(err, domain.ErrCancellationWindowExpired) {
		t.Fatalf("Cancel() error = %v, want ErrCancellationWindowExpired", err)
	}
}

func TestEventServiceUpdateStructuralApplied(t *testing.T) {
	newStart := testNow.AddDate(0, 3, 0)
	newEnd := testNow.AddDate(0, 4, 0)

	var gotDetails []domain.EventDetail
	events := &mockEventRepository{
		getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
			return activeEvent(testNow.AddDate(0, 1, 0)), nil
		},
		updateFn: func(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error) {
			gotDetails = details
			return true, nil
		},
	}
	svc := newTestEventService(events, &capturePublisher{})

	req := &dto.UpdateEventRequest{
		Description:    "new description",
		StartDate:      &newStart,
		EndDate:        &newEnd,
		CalendarDetail: json.RawMessage(`{"slots":[]}`),
		Details: []dto.EventDetailInput{
			{Title: "premium", Price: 9000},
		},
	}

	event, err := svc.Update(context.Background(), "event-1", req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !event.StartDate.Equal(newStart) || !event.EndDate.Equal(newEnd) {
		t.Errorf("dates not applied: start %v end %v", event.StartDate, event.EndDate)
	}
	if len(gotDetails) != 1 || gotDetails[0].Title != "premium" {
		t.Errorf("details passed to repository = %+v", gotDetails)
	}
	if len(event.Details) != 1 || event.Details[0].Price != 9000 {
		t.Errorf("details on returned event = %+v", event.Details)
	}
}

// A booked event silently keeps its structural fields; the call still
// succeeds and returns the stored state.
func TestEventServiceUpdateBookedEventKeepsStructure(t *testing.T) {
	originalStart := testNow.AddDate(0, 1, 0)
	newStart := testNow.AddDate(0, 3, 0)
	newEnd := testNow.AddDate(0, 4, 0)

	events := &mockEventRepository{
		getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
			return activeEvent(originalStart), nil
		},
		updateFn: func(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error) {
			return false, nil
		},
	}
	svc := newTestEventService(events, &capturePublisher{})

	req := &dto.UpdateEventRequest{
		Description: "new description",
		StartDate:   &newStart,
		EndDate:     &newEnd,
	}

	event, err := svc.Update(context.Background(), "event-1", req)
	if err != nil {
		t.Fatalf("Update() error = %v, want silent success", err)
	}
	if !event.StartDate.Equal(originalStart) {
		t.Errorf("start date = %v, want original %v", event.StartDate, originalStart)
	}
}

func TestEventServiceUpdateInvalidRange(t *testing.T) {
	badStart := testNow.AddDate(0, 5, 0)

	events := &mockEventRepository{
		getByIDFn: func(ctx context.Context, id string) (*domain.Event, error) {
			return activeEvent(testNow.AddDate(0, 1, 0)), nil
		},
	}
	svc := newTestEventService(events, &capturePublisher{})

	_, err := svc.Update(context.Background(), "event-1", &dto.UpdateEventRequest{StartDate: &badStart})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("Update() error = %v, want ErrInvalidDateRange", err)
	}
}

func TestEventServiceClose(t *testing.T) {
	var closedID string
	events := &mockEventRepository{
		markClosedFn: func(ctx context.Context, id string) error {
			closedID = id
			return nil
		},
	}
	svc := newTestEventService(events, &capturePublisher{})

	if err := svc.Close(context.Background(), "event-1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if closedID != "event-1" {
		t.Errorf("closed id = %q", closedID)
	}
}

func TestEventServiceSearchAppliesDefaults(t *testing.T) {
	var got *dto.EventSearchQuery
	events := &mockEventRepository{
		searchFn: func(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error) {
			got = query
			return nil, 0, nil
		},
	}
	svc := newTestEventService(events, &capturePublisher{})

	_, _, err := svc.Search(context.Background(), &dto.EventSearchQuery{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Limit != dto.DefaultSearchLimit || got.Page != dto.DefaultSearchPage {
		t.Errorf("defaults not applied: limit %d page %d", got.Limit, got.Page)
	}
}

func TestWholeDays(t *testing.T) {
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same instant", base, base, 0},
		{"23 hours", base, base.Add(23 * time.Hour), 0},
		{"exactly 24 hours", base, base.Add(24 * time.Hour), 1},
		{"71 hours", base, base.Add(71 * time.Hour), 2},
		{"72 hours", base, base.Add(72 * time.Hour), 3},
		{"negative interval", base.Add(48 * time.Hour), base, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wholeDays(tt.a, tt.b); got != tt.want {
				t.Errorf("wholeDays = %d, want %d", got, tt.want)
			}
		})
	}
}
