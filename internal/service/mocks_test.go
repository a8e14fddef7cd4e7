package service

import (
	"context"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/repository"
)

// mockEventRepository implements repository.EventRepository with overridable
// function fields. Unset fields behave as empty successful operations.
type mockEventRepository struct {
	createFn       func(ctx context.Context, event *domain.Event) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Event, error)
	updateFn       func(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error)
	markCanceledFn func(ctx context.Context, id, comment string, endDate time.Time) error
	markClosedFn   func(ctx context.Context, id string) error
	findToCloseFn  func(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error)
	searchFn       func(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error)
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEventRepository) Update(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, event, details)
	}
	return true, nil
}

func (m *mockEventRepository) MarkCanceled(ctx context.Context, id, comment string, endDate time.Time) error {
	if m.markCanceledFn != nil {
		return m.markCanceledFn(ctx, id, comment, endDate)
	}
	return nil
}

func (m *mockEventRepository) MarkClosed(ctx context.Context, id string) error {
	if m.markClosedFn != nil {
		return m.markClosedFn(ctx, id)
	}
	return nil
}

func (m *mockEventRepository) FindToClose(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	if m.findToCloseFn != nil {
		return m.findToCloseFn(ctx, now, limit)
	}
	return nil, nil
}

func (m *mockEventRepository) Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, 0, nil
}

func (m *mockEventRepository) ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error) {
	return nil, 0, nil
}

func (m *mockEventRepository) CountBookings(ctx context.Context, eventID string) (int, error) {
	return 0, nil
}

func (m *mockEventRepository) AddFile(ctx context.Context, file *domain.EventFile) error {
	return nil
}

func (m *mockEventRepository) RemoveFile(ctx context.Context, eventID, fileID string) error {
	return nil
}

// mockBookingRepository implements repository.BookingRepository
type mockBookingRepository struct {
	createFn     func(ctx context.Context, booking *domain.UserEvent) error
	getByIDFn    func(ctx context.Context, id string) (*domain.UserEvent, error)
	transitionFn func(ctx context.Context, bookingID string, from, to domain.UserEventStatus, credit *repository.RefundCredit) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *domain.UserEvent) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) GetByID(ctx context.Context, id string) (*domain.UserEvent, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepository) Transition(ctx context.Context, bookingID string, from, to domain.UserEventStatus, credit *repository.RefundCredit) error {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, bookingID, from, to, credit)
	}
	return nil
}

func (m *mockBookingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.UserEvent, error) {
	return nil, nil
}

func (m *mockBookingRepository) ListByUser(ctx context.Context, userID string, limit, page int) ([]*domain.UserEvent, int64, error) {
	return nil, 0, nil
}

// mockCompanyRepository implements repository.CompanyRepository
type mockCompanyRepository struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Company, error)
}

func (m *mockCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return nil
}

func (m *mockCompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Company{ID: id}, nil
}

func (m *mockCompanyRepository) CreditBalance(ctx context.Context, companyID string, amount int) error {
	return nil
}

func (m *mockCompanyRepository) ListEmployees(ctx context.Context, companyID string) ([]*domain.Employee, error) {
	return nil, nil
}

// mockCategoryRepository implements repository.CategoryRepository
type mockCategoryRepository struct {
	getByIDFn func(ctx context.Context, id string) (*domain.EventCategory, error)
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.EventCategory) error {
	return nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.EventCategory, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.EventCategory{ID: id, Title: "category"}, nil
}

func (m *mockCategoryRepository) Roots(ctx context.Context) ([]*domain.EventCategory, error) {
	return nil, nil
}

func (m *mockCategoryRepository) Children(ctx context.Context, parentID string) ([]*domain.EventCategory, error) {
	return nil, nil
}

func (m *mockCategoryRepository) Tree(ctx context.Context) ([]*domain.EventCategory, error) {
	return nil, nil
}

// capturePublisher records notification calls for assertions
type capturePublisher struct {
	canceledEvents  []string
	closedEvents    []string
	statusChanges   []string
	refundCompanies []string
	refundAmounts   []int
}

func (p *capturePublisher) EventCanceled(ctx context.Context, event *domain.Event) {
	p.canceledEvents = append(p.canceledEvents, event.ID)
}

func (p *capturePublisher) EventClosed(ctx context.Context, event *domain.Event) {
	p.closedEvents = append(p.closedEvents, event.ID)
}

func (p *capturePublisher) BookingStatusChanged(ctx context.Context, booking *domain.UserEvent) {
	p.statusChanges = append(p.statusChanges, string(booking.Status))
}

func (p *capturePublisher) RefundIssued(ctx context.Context, companyID string, amount int) {
	p.refundCompanies = append(p.refundCompanies, companyID)
	p.refundAmounts = append(p.refundAmounts, amount)
}

func (p *capturePublisher) Close() error { return nil }

// fixedClock returns a time source pinned to t
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
