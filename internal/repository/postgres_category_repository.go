package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vavepl/marketplace-backend/internal/domain"
)

// PostgresCategoryRepository implements CategoryRepository using PostgreSQL with pgxpool
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCategoryRepository creates a new PostgresCategoryRepository
func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

// Create creates a new category node
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *domain.EventCategory) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_categories (id, title, parent_id)
		VALUES ($1, $2, $3)
	`, category.ID, category.Title, category.ParentID)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a single category node
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.EventCategory, error) {
	c := &domain.EventCategory{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, parent_id FROM event_categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Title, &c.ParentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// Roots returns the root nodes without children
func (r *PostgresCategoryRepository) Roots(ctx context.Context) ([]*domain.EventCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, parent_id FROM event_categories
		WHERE parent_id IS NULL
		ORDER BY title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query root categories: %w", err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

// Children returns the direct children of a node
func (r *PostgresCategoryRepository) Children(ctx context.Context, parentID string) ([]*domain.EventCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, parent_id FROM event_categories
		WHERE parent_id = $1
		ORDER BY title ASC
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child categories: %w", err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

// Tree returns the full category forest with children populated. The tree is
// assembled in memory from one flat query; category sets are small.
func (r *PostgresCategoryRepository) Tree(ctx context.Context) ([]*domain.EventCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, parent_id FROM event_categories
		ORDER BY title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	all, err := collectCategories(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.EventCategory, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	var roots []*domain.EventCategory
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Children = append(parent.Children, c)
		}
	}
	return roots, nil
}

func collectCategories(rows pgx.Rows) ([]*domain.EventCategory, error) {
	var categories []*domain.EventCategory
	for rows.Next() {
		c := &domain.EventCategory{}
		if err := rows.Scan(&c.ID, &c.Title, &c.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}
