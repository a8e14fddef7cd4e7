package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `
	e.id, e.company_id, e.category_id, e.description, e.start_date, e.end_date, e.status,
	e.latitude, e.longitude, e.street, e.locality, e.voivodship, e.country, e.phone,
	e.deposit, e.deposit_amount, e.user_limit, e.calendar_detail,
	e.rating_score, e.rating_total, e.rating_counter, e.cancel_comment,
	e.created_at, e.updated_at`

// Create creates the event with its price details and bumps each employee's
// active-event counter, all in one transaction
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("company_id", event.CompanyID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO events (
			id, company_id, category_id, description, start_date, end_date, status,
			latitude, longitude, street, locality, voivodship, country, phone,
			deposit, deposit_amount, user_limit, calendar_detail,
			rating_score, rating_total, rating_counter,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21,
			$22, $23
		)
	`

	_, err = tx.Exec(ctx, query,
		event.ID,
		event.CompanyID,
		event.CategoryID,
		event.Description,
		event.StartDate,
		event.EndDate,
		int(event.Status),
		event.Latitude,
		event.Longitude,
		event.Street,
		event.Locality,
		event.Voivodship,
		event.Country,
		event.Phone,
		event.Deposit,
		event.DepositAmount,
		event.UserLimit,
		[]byte(event.CalendarDetail),
		event.RatingScore,
		event.RatingTotal,
		event.RatingCounter,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	for _, d := range event.Details {
		_, err = tx.Exec(ctx,
			`INSERT INTO event_details (id, event_id, title, price) VALUES ($1, $2, $3, $4)`,
			d.ID, event.ID, d.Title, d.Price,
		)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create event detail: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE employees SET active_events = active_events + 1 WHERE company_id = $1`,
		event.CompanyID,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to increment employee counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit event create: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event with its details and files
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := fmt.Sprintf(`SELECT %s FROM events e WHERE e.id = $1`, eventColumns)

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := r.loadDetails(ctx, []*domain.Event{event}); err != nil {
		return nil, err
	}
	if err := r.loadFiles(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// Update applies the always-updatable fields, and the structural fields only
// when the event has no bookings. The count check and writes share one
// transaction; the event row is locked first so a concurrent booking cannot
// slip in between check and write.
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status int
	err = tx.QueryRow(ctx, `SELECT status FROM events WHERE id = $1 FOR UPDATE`, event.ID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrEventNotFound
		}
		span.RecordError(err)
		return false, fmt.Errorf("failed to lock event: %w", err)
	}

	var bookingCount int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_events WHERE event_id = $1`, event.ID).Scan(&bookingCount)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to count bookings: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE events
		SET description = $2, user_limit = $3, phone = $4,
		    deposit = $5, deposit_amount = $6, updated_at = $7
		WHERE id = $1
	`,
		event.ID,
		event.Description,
		event.UserLimit,
		event.Phone,
		event.Deposit,
		event.DepositAmount,
		event.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to update event: %w", err)
	}

	structuralApplied := false
	if bookingCount == 0 {
		_, err = tx.Exec(ctx, `
			UPDATE events
			SET start_date = $2, end_date = $3, calendar_detail = $4
			WHERE id = $1
		`,
			event.ID,
			event.StartDate,
			event.EndDate,
			[]byte(event.CalendarDetail),
		)
		if err != nil {
			span.RecordError(err)
			return false, fmt.Errorf("failed to update event dates: %w", err)
		}

		if _, err = tx.Exec(ctx, `DELETE FROM event_details WHERE event_id = $1`, event.ID); err != nil {
			span.RecordError(err)
			return false, fmt.Errorf("failed to remove event details: %w", err)
		}

		for _, d := range details {
			_, err = tx.Exec(ctx,
				`INSERT INTO event_details (id, event_id, title, price) VALUES ($1, $2, $3, $4)`,
				d.ID, event.ID, d.Title, d.Price,
			)
			if err != nil {
				span.RecordError(err)
				return false, fmt.Errorf("failed to insert event detail: %w", err)
			}
		}

		structuralApplied = true
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to commit event update: %w", err)
	}

	span.SetAttributes(attribute.Bool("structural_applied", structuralApplied))
	span.SetStatus(codes.Ok, "")
	return structuralApplied, nil
}

// MarkCanceled cancels an event guarded on it still being Active
func (r *PostgresEventRepository) MarkCanceled(ctx context.Context, id, comment string, endDate time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.mark_canceled")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET status = $2, cancel_comment = $3, end_date = $4, updated_at = $4
		WHERE id = $1 AND status = $5
	`, id, int(domain.EventStatusCanceled), comment, endDate, int(domain.EventStatusActive))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to cancel event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check event existence: %w", err)
		}
		if !exists {
			return domain.ErrEventNotFound
		}
		return domain.ErrStatusConflict
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkClosed closes an event. Closing an already-closed event is a no-op.
func (r *PostgresEventRepository) MarkClosed(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.mark_closed")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status <> $2
	`, id, int(domain.EventStatusClosed))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to close event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check event existence: %w", err)
		}
		if !exists {
			return domain.ErrEventNotFound
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// FindToClose returns active events whose end date has passed
func (r *PostgresEventRepository) FindToClose(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.find_to_close")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT %s FROM events e
		WHERE e.status = $1 AND e.end_date < $2
		ORDER BY e.end_date ASC
		LIMIT $3
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query, int(domain.EventStatusActive), now, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query events to close: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Search executes the multi-criteria filter query
func (r *PostgresEventRepository) Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.search")
	defer span.End()

	sq := buildSearchQuery(query)

	var total int64
	if err := r.pool.QueryRow(ctx, sq.countQuery, sq.countArgs...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	if total == 0 {
		return []*domain.Event{}, 0, nil
	}

	rows, err := r.pool.Query(ctx, sq.pageQuery, sq.pageArgs...)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to query search results: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0, query.Limit)
	for rows.Next() {
		event, err := scanEventWithCount(rows)
		if err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("failed to scan search result: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read search results: %w", err)
	}

	if err := r.loadDetails(ctx, events); err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int64("total", total), attribute.Int("returned", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, total, nil
}

// ListByCompany returns a company's events, newest first
func (r *PostgresEventRepository) ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_by_company")
	defer span.End()

	span.SetAttributes(attribute.String("company_id", companyID))

	if limit <= 0 {
		limit = dto.DefaultSearchLimit
	}
	if page <= 0 {
		page = dto.DefaultSearchPage
	}

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE company_id = $1`, companyID).Scan(&total)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count company events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM events e
		WHERE e.company_id = $1
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query, companyID, limit, (page-1)*limit)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to query company events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.loadDetails(ctx, events); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// CountBookings returns the number of bookings against an event
func (r *PostgresEventRepository) CountBookings(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_events WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// AddFile attaches a file reference to an event
func (r *PostgresEventRepository) AddFile(ctx context.Context, file *domain.EventFile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_files (id, event_id, name, path) VALUES ($1, $2, $3, $4)`,
		file.ID, file.EventID, file.Name, file.Path,
	)
	if err != nil {
		return fmt.Errorf("failed to add event file: %w", err)
	}
	return nil
}

// RemoveFile detaches a file reference from an event
func (r *PostgresEventRepository) RemoveFile(ctx context.Context, eventID, fileID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM event_files WHERE id = $1 AND event_id = $2`,
		fileID, eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove event file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// loadDetails fetches price details for a batch of events
func (r *PostgresEventRepository) loadDetails(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, 0, len(events))
	byID := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
		byID[e.ID] = e
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, title, price FROM event_details WHERE event_id = ANY($1) ORDER BY price ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to query event details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.EventDetail
		if err := rows.Scan(&d.ID, &d.EventID, &d.Title, &d.Price); err != nil {
			return fmt.Errorf("failed to scan event detail: %w", err)
		}
		if e, ok := byID[d.EventID]; ok {
			e.Details = append(e.Details, d)
		}
	}
	return rows.Err()
}

// loadFiles fetches file references for a single event
func (r *PostgresEventRepository) loadFiles(ctx context.Context, event *domain.Event) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, name, path FROM event_files WHERE event_id = $1`,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query event files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f domain.EventFile
		if err := rows.Scan(&f.ID, &f.EventID, &f.Name, &f.Path); err != nil {
			return fmt.Errorf("failed to scan event file: %w", err)
		}
		event.Files = append(event.Files, f)
	}
	return rows.Err()
}

func collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		status         int
		calendarDetail []byte
		cancelComment  *string
	)

	err := row.Scan(
		&e.ID, &e.CompanyID, &e.CategoryID, &e.Description, &e.StartDate, &e.EndDate, &status,
		&e.Latitude, &e.Longitude, &e.Street, &e.Locality, &e.Voivodship, &e.Country, &e.Phone,
		&e.Deposit, &e.DepositAmount, &e.UserLimit, &calendarDetail,
		&e.RatingScore, &e.RatingTotal, &e.RatingCounter, &cancelComment,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Status = domain.EventStatus(status)
	e.CalendarDetail = calendarDetail
	if cancelComment != nil {
		e.CancelComment = *cancelComment
	}
	return e, nil
}

func scanEventWithCount(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		status         int
		calendarDetail []byte
		cancelComment  *string
	)

	err := row.Scan(
		&e.ID, &e.CompanyID, &e.CategoryID, &e.Description, &e.StartDate, &e.EndDate, &status,
		&e.Latitude, &e.Longitude, &e.Street, &e.Locality, &e.Voivodship, &e.Country, &e.Phone,
		&e.Deposit, &e.DepositAmount, &e.UserLimit, &calendarDetail,
		&e.RatingScore, &e.RatingTotal, &e.RatingCounter, &cancelComment,
		&e.CreatedAt, &e.UpdatedAt,
		&e.UserCount,
	)
	if err != nil {
		return nil, err
	}

	e.Status = domain.EventStatus(status)
	e.CalendarDetail = calendarDetail
	if cancelComment != nil {
		e.CancelComment = *cancelComment
	}
	return e, nil
}

// searchSQL holds the generated count and page queries with their arguments
type searchSQL struct {
	countQuery string
	countArgs  []interface{}
	pageQuery  string
	pageArgs   []interface{}
}

// haversineExpr computes the great-circle distance in kilometers between the
// query point and the event location. Placeholder order: lat, lon, lat.
const haversineExpr = `(6371 * acos(
	cos(radians($%d)) * cos(radians(e.latitude)) *
	cos(radians(e.longitude) - radians($%d)) +
	sin(radians($%d)) * sin(radians(e.latitude))
))`

// buildSearchQuery translates the filter set into a count query and a page
// query. Filters combine with AND; the price band applies to the derived
// min/max of the event's detail prices, so it lives in HAVING. The geo band
// requires all four inputs and is skipped entirely otherwise.
func buildSearchQuery(q *dto.EventSearchQuery) searchSQL {
	var (
		conditions []string
		having     []string
		args       []interface{}
	)
	argIndex := 1

	if q.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("e.category_id = $%d", argIndex))
		args = append(args, q.CategoryID)
		argIndex++
	}

	if q.HasGeoFilter() {
		expr := fmt.Sprintf(haversineExpr, argIndex, argIndex+1, argIndex+2)
		conditions = append(conditions, fmt.Sprintf("%s BETWEEN $%d AND $%d", expr, argIndex+3, argIndex+4))
		args = append(args, *q.Latitude, *q.Longitude, *q.Latitude, *q.DistFrom, *q.DistTo)
		argIndex += 5
	}

	if q.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("e.start_date >= $%d", argIndex))
		args = append(args, *q.DateFrom)
		argIndex++
	}
	if q.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("e.start_date <= $%d", argIndex))
		args = append(args, *q.DateTo)
		argIndex++
	}

	if q.Rating != nil {
		conditions = append(conditions, fmt.Sprintf("e.rating_score >= $%d", argIndex))
		args = append(args, *q.Rating)
		argIndex++
	}

	if q.Status != nil {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIndex))
		args = append(args, *q.Status)
		argIndex++
	}

	if q.StatusUserEvent != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM user_events ue WHERE ue.event_id = e.id AND ue.status = $%d)", argIndex))
		args = append(args, *q.StatusUserEvent)
		argIndex++
	}

	if q.UserLimitReached != nil {
		conditions = append(conditions, fmt.Sprintf("e.user_limit = $%d", argIndex))
		args = append(args, *q.UserLimitReached)
		argIndex++
	}

	if len(q.Blacklist) > 0 {
		conditions = append(conditions, fmt.Sprintf("NOT (e.company_id = ANY($%d))", argIndex))
		args = append(args, q.Blacklist)
		argIndex++
	}

	// Price band intersects the event's [min, max] detail price range as a
	// closed interval: min <= price_to AND max >= price_from
	if q.PriceTo != nil {
		having = append(having, fmt.Sprintf("COALESCE(MIN(d.price), 0) <= $%d", argIndex))
		args = append(args, *q.PriceTo)
		argIndex++
	}
	if q.PriceFrom != nil {
		having = append(having, fmt.Sprintf("COALESCE(MAX(d.price), 0) >= $%d", argIndex))
		args = append(args, *q.PriceFrom)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}
	havingClause := ""
	if len(having) > 0 {
		havingClause = "HAVING " + strings.Join(having, " AND ")
	}

	base := fmt.Sprintf(`
		FROM events e
		LEFT JOIN event_details d ON d.event_id = e.id
		%s
		GROUP BY e.id
		%s`, whereClause, havingClause)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM (SELECT e.id %s) matched`, base)
	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)

	pageQuery := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM user_events ue WHERE ue.event_id = e.id) AS user_count
		%s
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $%d OFFSET $%d`, eventColumns, base, argIndex, argIndex+1)
	pageArgs := append(args, q.Limit, q.Offset())

	return searchSQL{
		countQuery: countQuery,
		countArgs:  countArgs,
		pageQuery:  pageQuery,
		pageArgs:   pageArgs,
	}
}
