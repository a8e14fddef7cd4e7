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

// BookingService defines booking workflow operations
type BookingService interface {
	// Create books an event slot for a user
	Create(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*domain.UserEvent, error)

	// Get retrieves a booking by id
	Get(ctx context.Context, id string) (*domain.UserEvent, error)

	// Transition moves a booking to the target status. The transition into
	// user_removed triggers the refund policy: when the notice window was
	// respected, the owning company's balance is credited atomically with
	// the status change.
	Transition(ctx context.Context, bookingID string, target domain.UserEventStatus) (*domain.UserEvent, error)

	// ListByUser returns a user's bookings, newest first
	ListByUser(ctx context.Context, userID string, limit, page int) ([]*domain.UserEvent, int64, error)
}

type bookingService struct {
	bookings repository.BookingRepository
	events   repository.EventRepository
	refund   *RefundPolicy
	notifier notification.Publisher
	now      func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	refund *RefundPolicy,
	notifier notification.Publisher,
) BookingService {
	return &bookingService{
		bookings: bookings,
		events:   events,
		refund:   refund,
		notifier: notifier,
		now:      time.Now,
	}
}

// NewBookingServiceWithClock creates a BookingService with an injectable time
// source for deterministic tests
func NewBookingServiceWithClock(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	refund *RefundPolicy,
	notifier notification.Publisher,
	now func() time.Time,
) BookingService {
	return &bookingService{
		bookings: bookings,
		events:   events,
		refund:   refund,
		notifier: notifier,
		now:      now,
	}
}

func (s *bookingService) Create(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*domain.UserEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
	)

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	if !event.IsActive() {
		return nil, domain.ErrInvalidEventStatus
	}

	now := s.now()
	booking := &domain.UserEvent{
		ID:           uuid.New().String(),
		UserID:       userID,
		EventID:      req.EventID,
		Status:       domain.UserEventStatusInit,
		SelectedDate: req.SelectedDate,
		Commission:   req.Commission,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, id string) (*domain.UserEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

func (s *bookingService) Transition(ctx context.Context, bookingID string, target domain.UserEventStatus) (*domain.UserEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.transition")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("target", string(target)),
	)

	if !target.IsValid() {
		return nil, domain.ErrInvalidBookingStatus
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	if !booking.CanTransition(target) {
		return nil, domain.ErrInvalidStatusTransition
	}

	var credit *repository.RefundCredit
	var event *domain.Event

	if target == domain.UserEventStatusUserRemoved {
		event, err = s.events.GetByID(ctx, booking.EventID)
		if err != nil {
			return nil, err
		}
		if event == nil {
			return nil, domain.ErrEventNotFound
		}

		amount := s.refund.Amount(s.now(), event, booking)
		if amount > 0 {
			credit = &repository.RefundCredit{
				CompanyID: event.CompanyID,
				Amount:    amount,
			}
		} else {
			metrics.RecordRefundSkipped(ctx)
		}
	}

	if err := s.bookings.Transition(ctx, bookingID, booking.Status, target, credit); err != nil {
		span.RecordError(err)
		return nil, err
	}

	booking.Status = target
	booking.UpdatedAt = s.now()

	if credit != nil {
		metrics.RecordRefund(ctx, credit.Amount)
		logger.Get().Info("refund credited",
			zap.String("booking_id", bookingID),
			zap.String("company_id", credit.CompanyID),
			zap.Int("amount", credit.Amount),
		)
		s.notifier.RefundIssued(ctx, credit.CompanyID, credit.Amount)
	}

	s.notifier.BookingStatusChanged(ctx, booking)

	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit, page int) ([]*domain.UserEvent, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_by_user")
	defer span.End()

	return s.bookings.ListByUser(ctx, userID, limit, page)
}
