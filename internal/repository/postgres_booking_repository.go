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
	"go.opentelemetry.io/otel/codes"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `id, user_id, event_id, status, selected_date, commission, created_at, updated_at`

// Create creates a new booking record
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.UserEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("user_id", booking.UserID),
		attribute.String("event_id", booking.EventID),
	)

	query := `
		INSERT INTO user_events (
			id, user_id, event_id, status, selected_date, commission, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.EventID,
		string(booking.Status),
		booking.SelectedDate,
		booking.Commission,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.UserEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := fmt.Sprintf(`SELECT %s FROM user_events WHERE id = $1`, bookingColumns)

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// Transition moves a booking between statuses, guarded on the current status.
// When credit is non-nil the company balance is incremented in the same
// transaction so a refund is never applied without its transition.
func (r *PostgresBookingRepository) Transition(ctx context.Context, bookingID string, from, to domain.UserEventStatus, credit *RefundCredit) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.transition")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE user_events
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, bookingID, string(to), string(from))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to transition booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM user_events WHERE id = $1)`, bookingID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if !exists {
			return domain.ErrBookingNotFound
		}
		return domain.ErrInvalidStatusTransition
	}

	if credit != nil && credit.Amount > 0 {
		tag, err = tx.Exec(ctx, `
			UPDATE companies
			SET balance = balance + $2, updated_at = NOW()
			WHERE id = $1
		`, credit.CompanyID, credit.Amount)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to credit company balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrCompanyNotFound
		}
		span.SetAttributes(attribute.Int("refund_amount", credit.Amount))
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit booking transition: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByEvent returns bookings against an event
func (r *PostgresBookingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.UserEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_events
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
	`, bookingColumns)

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByUser returns a user's bookings, newest first
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string, limit, page int) ([]*domain.UserEvent, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_events WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM user_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, bookingColumns)

	rows, err := r.pool.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query user bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func collectBookings(rows pgx.Rows) ([]*domain.UserEvent, error) {
	var bookings []*domain.UserEvent
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (*domain.UserEvent, error) {
	ue := &domain.UserEvent{}
	var status string

	err := row.Scan(
		&ue.ID, &ue.UserID, &ue.EventID, &status,
		&ue.SelectedDate, &ue.Commission, &ue.CreatedAt, &ue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ue.Status = domain.UserEventStatus(status)
	return ue, nil
}
