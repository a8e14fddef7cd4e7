package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/metrics"
	"github.com/vavepl/marketplace-backend/internal/notification"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/pkg/logger"
	"github.com/vavepl/marketplace-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// cancelNoticeDays is the day-granularity cancellation window: cancel fails
// when the start date is in the past or fewer than this many whole days away.
// The check is deliberately day-coarse, not a true 48-hour comparison.
const cancelNoticeDays = 2

// EventService defines event lifecycle and search operations
type EventService interface {
	// Create publishes a new event owned by the company
	Create(ctx context.Context, companyID string, req *dto.CreateEventRequest) (*domain.Event, error)

	// Get retrieves an event by id
	Get(ctx context.Context, id string) (*domain.Event, error)

	// Update modifies an event. Dates, price details and the calendar blob
	// are applied only when the event has no bookings; otherwise those parts
	// of the request are silently discarded and only the non-structural
	// fields change.
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error)

	// Cancel cancels an event inside the allowed notice window
	Cancel(ctx context.Context, id, comment string) (*domain.Event, error)

	// Close closes an event. Idempotent.
	Close(ctx context.Context, id string) error

	// Search runs the multi-criteria filter query
	Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error)

	// ListByCompany returns a company's events, newest first
	ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error)

	// AddFile attaches a file reference to an event
	AddFile(ctx context.Context, eventID, name, path string) (*domain.EventFile, error)

	// RemoveFile detaches a file reference from an event
	RemoveFile(ctx context.Context, eventID, fileID string) error
}

type eventService struct {
	events     repository.EventRepository
	companies  repository.CompanyRepository
	categories repository.CategoryRepository
	notifier   notification.Publisher
	now        func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(
	events repository.EventRepository,
	companies repository.CompanyRepository,
	categories repository.CategoryRepository,
	notifier notification.Publisher,
) EventService {
	return &eventService{
		events:     events,
		companies:  companies,
		categories: categories,
		notifier:   notifier,
		now:        time.Now,
	}
}

// NewEventServiceWithClock creates an EventService with an injectable time
// source for deterministic tests
func NewEventServiceWithClock(
	events repository.EventRepository,
	companies repository.CompanyRepository,
	categories repository.CategoryRepository,
	notifier notification.Publisher,
	now func() time.Time,
) EventService {
	return &eventService{
		events:     events,
		companies:  companies,
		categories: categories,
		notifier:   notifier,
		now:        now,
	}
}

func (s *eventService) Create(ctx context.Context, companyID string, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	span.SetAttributes(attribute.String("company_id", companyID))

	if req.CategoryID == "" {
		return nil, domain.ErrCategoryMissing
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if len(req.Details) == 0 {
		return nil, domain.ErrNoPriceDetails
	}
	if req.Deposit && req.DepositAmount <= 0 {
		return nil, domain.ErrInvalidDepositAmount
	}

	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}

	now := s.now()
	event := &domain.Event{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		CategoryID:     req.CategoryID,
		Description:    req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         domain.EventStatusActive,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Street:         req.Street,
		Locality:       req.Locality,
		Voivodship:     req.Voivodship,
		Country:        req.Country,
		Phone:          req.Phone,
		Deposit:        req.Deposit,
		DepositAmount:  req.DepositAmount,
		UserLimit:      req.UserLimit,
		CalendarDetail: req.CalendarDetail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, d := range req.Details {
		event.Details = append(event.Details, domain.EventDetail{
			ID:      uuid.New().String(),
			EventID: event.ID,
			Title:   d.Title,
			Price:   d.Price,
		})
	}

	if err := s.events.Create(ctx, event); err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.RecordEventCreated(ctx, event.CategoryID)
	logger.Get().Info("event created",
		zap.String("event_id", event.ID),
		zap.String("company_id", companyID),
	)

	return event, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	if req.Deposit && req.DepositAmount <= 0 {
		return nil, domain.ErrInvalidDepositAmount
	}

	event.Description = req.Description
	event.UserLimit = req.UserLimit
	event.Phone = req.Phone
	event.Deposit = req.Deposit
	event.DepositAmount = req.DepositAmount
	event.UpdatedAt = s.now()

	// Desired structural changes; the repository applies them only when the
	// booking count is still zero.
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	if !event.StartDate.Before(event.EndDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if len(req.CalendarDetail) > 0 {
		event.CalendarDetail = req.CalendarDetail
	}

	var details []domain.EventDetail
	for _, d := range req.Details {
		details = append(details, domain.EventDetail{
			ID:      uuid.New().String(),
			EventID: event.ID,
			Title:   d.Title,
			Price:   d.Price,
		})
	}
	if details == nil {
		details = event.Details
	}

	structuralApplied, err := s.events.Update(ctx, event, details)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// A booked event keeps its dates and prices; the request still succeeds.
	if !structuralApplied {
		logger.Get().Debug("structural update skipped, event has bookings",
			zap.String("event_id", id),
		)
		return s.Get(ctx, id)
	}

	event.Details = details
	return event, nil
}

func (s *eventService) Cancel(ctx context.Context, id, comment string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	if event.IsClosed() {
		return nil, domain.ErrEventClosed
	}

	now := s.now()
	if event.StartDate.Before(now) || wholeDays(now, event.StartDate) <= cancelNoticeDays {
		return nil, domain.ErrCancellationWindowExpired
	}
	if event.IsCanceled() {
		return nil, domain.ErrAlreadyCanceled
	}

	if err := s.events.MarkCanceled(ctx, id, comment, now); err != nil {
		span.RecordError(err)
		return nil, err
	}

	event.Status = domain.EventStatusCanceled
	event.CancelComment = comment
	event.EndDate = now

	metrics.RecordEventCanceled(ctx, event.CategoryID)
	logger.Get().Info("event canceled",
		zap.String("event_id", id),
		zap.String("company_id", event.CompanyID),
	)

	s.notifier.EventCanceled(ctx, event)

	return event, nil
}

func (s *eventService) Close(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.close")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if err := s.events.MarkClosed(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	metrics.RecordEventClosed(ctx)
	return nil
}

func (s *eventService) Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.search")
	defer span.End()

	query.SetDefaults()

	events, total, err := s.events.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int64("total", total))
	return events, total, nil
}

func (s *eventService) ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_by_company")
	defer span.End()

	return s.events.ListByCompany(ctx, companyID, limit, page)
}

func (s *eventService) AddFile(ctx context.Context, eventID, name, path string) (*domain.EventFile, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.add_file")
	defer span.End()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	file := &domain.EventFile{
		ID:      uuid.New().String(),
		EventID: eventID,
		Name:    name,
		Path:    path,
	}
	if err := s.events.AddFile(ctx, file); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return file, nil
}

func (s *eventService) RemoveFile(ctx context.Context, eventID, fileID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.remove_file")
	defer span.End()

	return s.events.RemoveFile(ctx, eventID, fileID)
}

// wholeDays returns the whole-day count of the absolute interval between two
// instants, mirroring calendar-interval day arithmetic.
func wholeDays(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

// wholeHours returns the whole-hour count of the absolute interval between
// two instants (days times 24 plus remainder hours).
func wholeHours(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours())
}
