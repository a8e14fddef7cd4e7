package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresCompanyRepository implements CompanyRepository using PostgreSQL with pgxpool
type PostgresCompanyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCompanyRepository creates a new PostgresCompanyRepository
func NewPostgresCompanyRepository(pool *pgxpool.Pool) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{pool: pool}
}

// Create creates a new company record
func (r *PostgresCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO companies (id, name, nip, phone, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		company.ID,
		company.Name,
		company.NIP,
		company.Phone,
		company.Balance,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// GetByID retrieves a company by its ID
func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.company.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("company_id", id))

	company := &domain.Company{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, nip, phone, balance, created_at, updated_at
		FROM companies
		WHERE id = $1
	`, id).Scan(
		&company.ID,
		&company.Name,
		&company.NIP,
		&company.Phone,
		&company.Balance,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return company, nil
}

// CreditBalance atomically increments the company balance. The increment runs
// as a single UPDATE so concurrent refunds cannot lose updates.
func (r *PostgresCompanyRepository) CreditBalance(ctx context.Context, companyID string, amount int) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.company.credit_balance")
	defer span.End()

	span.SetAttributes(
		attribute.String("company_id", companyID),
		attribute.Int("amount", amount),
	)

	tag, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
	`, companyID, amount)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

// ListEmployees returns a company's employees
func (r *PostgresCompanyRepository) ListEmployees(ctx context.Context, companyID string) ([]*domain.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, user_id, active_events, created_at
		FROM employees
		WHERE company_id = $1
		ORDER BY created_at ASC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		e := &domain.Employee{}
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.UserID, &e.ActiveEvents, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employees: %w", err)
	}
	return employees, nil
}
