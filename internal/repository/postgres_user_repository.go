package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
)

// PostgresUserRepository implements UserRepository using PostgreSQL with pgxpool
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, email, phone, COALESCE(gender, ''), birth_date,
	COALESCE(device_token, ''), COALESCE(rating_score, 0), latitude, longitude, created_at`

// Create creates a new user record
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone, gender, birth_date,
			device_token, rating_score, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.Gender,
		user.BirthDate,
		user.DeviceToken,
		user.RatingScore,
		user.Latitude,
		user.Longitude,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by its ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Search executes the user filter query with blacklist exclusion, the same
// shape as the event search: count first, then the page.
func (r *PostgresUserRepository) Search(ctx context.Context, query *dto.UserSearchQuery) ([]*domain.User, int64, error) {
	var (
		conditions []string
		args       []interface{}
	)
	argIndex := 1

	if query.Name != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+query.Name+"%")
		argIndex++
	}
	if query.Phone != "" {
		conditions = append(conditions, fmt.Sprintf("phone = $%d", argIndex))
		args = append(args, query.Phone)
		argIndex++
	}
	if query.Gender != "" {
		conditions = append(conditions, fmt.Sprintf("gender = $%d", argIndex))
		args = append(args, query.Gender)
		argIndex++
	}
	// Age bounds translate to a birth-date window: someone at least N years
	// old was born on or before today minus N years.
	if query.AgeFrom != nil {
		conditions = append(conditions, fmt.Sprintf("birth_date <= CURRENT_DATE - make_interval(years => $%d)", argIndex))
		args = append(args, *query.AgeFrom)
		argIndex++
	}
	if query.AgeTo != nil {
		conditions = append(conditions, fmt.Sprintf("birth_date > CURRENT_DATE - make_interval(years => $%d)", argIndex))
		args = append(args, *query.AgeTo+1)
		argIndex++
	}
	if query.Rating != nil {
		conditions = append(conditions, fmt.Sprintf("rating_score >= $%d", argIndex))
		args = append(args, *query.Rating)
		argIndex++
	}
	if query.HasGeoFilter() {
		expr := fmt.Sprintf(userHaversineExpr, argIndex, argIndex+1, argIndex+2)
		conditions = append(conditions, fmt.Sprintf("%s BETWEEN $%d AND $%d", expr, argIndex+3, argIndex+4))
		args = append(args, *query.Latitude, *query.Longitude, *query.Latitude, *query.DistFrom, *query.DistTo)
		argIndex += 5
	}
	if len(query.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", argIndex))
		args = append(args, query.IDs)
		argIndex++
	}
	if len(query.Blacklist) > 0 {
		conditions = append(conditions, fmt.Sprintf("NOT (id = ANY($%d))", argIndex))
		args = append(args, query.Blacklist)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if total == 0 {
		return []*domain.User{}, 0, nil
	}

	pageQuery := fmt.Sprintf(`
		SELECT %s FROM users
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, whereClause, argIndex, argIndex+1)
	args = append(args, query.Limit, query.Offset())

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read users: %w", err)
	}

	return users, total, nil
}

// Blacklist returns the user ids blacklisted by a company
func (r *PostgresUserRepository) Blacklist(ctx context.Context, companyID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM blacklists WHERE company_id = $1
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blacklist: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist entry: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blacklist: %w", err)
	}
	return ids, nil
}

// userHaversineExpr mirrors the event distance expression over the user's
// stored location. Placeholder order: lat, lon, lat.
const userHaversineExpr = `(6371 * acos(
	cos(radians($%d)) * cos(radians(latitude)) *
	cos(radians(longitude) - radians($%d)) +
	sin(radians($%d)) * sin(radians(latitude))
))`

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Gender, &u.BirthDate,
		&u.DeviceToken, &u.RatingScore, &u.Latitude, &u.Longitude, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}
