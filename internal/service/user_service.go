package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/pkg/telemetry"
	"github.com/vavepl/marketplace-backend/pkg/validator"
)

// UserService defines customer account operations
type UserService interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	Get(ctx context.Context, id string) (*domain.User, error)

	// Search finds users by name or phone. When companyID is set the
	// company's blacklist is excluded from the results.
	Search(ctx context.Context, query *dto.UserSearchQuery, companyID string) ([]*domain.User, int64, error)
}

type userService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.create")
	defer span.End()

	if user.Phone != "" && !validator.IsValidPhone(user.Phone) {
		return nil, domain.ErrInvalidPhone
	}

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.get")
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) Search(ctx context.Context, query *dto.UserSearchQuery, companyID string) ([]*domain.User, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.search")
	defer span.End()

	query.SetDefaults()

	if companyID != "" {
		blacklist, err := s.users.Blacklist(ctx, companyID)
		if err != nil {
			return nil, 0, err
		}
		query.Blacklist = blacklist
	}

	return s.users.Search(ctx, query)
}
