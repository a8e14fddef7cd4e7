package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/pkg/telemetry"
)

// CategoryService defines category tree operations
type CategoryService interface {
	// Create adds a node to the tree. ParentID nil creates a root.
	Create(ctx context.Context, title string, parentID *string) (*domain.EventCategory, error)

	// Get retrieves a single node
	Get(ctx context.Context, id string) (*domain.EventCategory, error)

	// Tree returns the full category forest
	Tree(ctx context.Context) ([]*domain.EventCategory, error)

	// Children returns the direct children of a node
	Children(ctx context.Context, parentID string) ([]*domain.EventCategory, error)
}

type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) Create(ctx context.Context, title string, parentID *string) (*domain.EventCategory, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.create")
	defer span.End()

	if parentID != nil {
		parent, err := s.categories.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	category := &domain.EventCategory{
		ID:       uuid.New().String(),
		Title:    title,
		ParentID: parentID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*domain.EventCategory, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.get")
	defer span.End()

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) Tree(ctx context.Context) ([]*domain.EventCategory, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.tree")
	defer span.End()

	return s.categories.Tree(ctx)
}

func (s *categoryService) Children(ctx context.Context, parentID string) ([]*domain.EventCategory, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.children")
	defer span.End()

	return s.categories.Children(ctx, parentID)
}
