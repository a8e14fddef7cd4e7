package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/pkg/telemetry"
	"github.com/vavepl/marketplace-backend/pkg/validator"
)

// CompanyService defines provider account operations
type CompanyService interface {
	Create(ctx context.Context, company *domain.Company) (*domain.Company, error)

	Get(ctx context.Context, id string) (*domain.Company, error)

	ListEmployees(ctx context.Context, companyID string) ([]*domain.Employee, error)
}

type companyService struct {
	companies repository.CompanyRepository
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companies repository.CompanyRepository) CompanyService {
	return &companyService{companies: companies}
}

func (s *companyService) Create(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.company.create")
	defer span.End()

	if !validator.IsValidNIP(company.NIP) {
		return nil, domain.ErrInvalidNIP
	}
	if company.Phone != "" && !validator.IsValidPhone(company.Phone) {
		return nil, domain.ErrInvalidPhone
	}

	company.ID = uuid.New().String()
	company.Balance = 0
	company.CreatedAt = time.Now()
	if err := s.companies.Create(ctx, company); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return company, nil
}

func (s *companyService) Get(ctx context.Context, id string) (*domain.Company, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.company.get")
	defer span.End()

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}
	return company, nil
}

func (s *companyService) ListEmployees(ctx context.Context, companyID string) ([]*domain.Employee, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.company.list_employees")
	defer span.End()

	return s.companies.ListEmployees(ctx, companyID)
}
