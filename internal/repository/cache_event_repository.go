package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/pkg/redis"
)

const (
	eventDetailKeyPrefix   = "event:detail:"
	companyEventsKeyPrefix = "event:company:"

	eventCacheTTL = 5 * time.Minute
)

// CachedEventRepository wraps EventRepository with Redis caching.
// Search queries bypass the cache: the filter space is too wide for useful
// hit rates and stale geo/price pages are worse than the extra query.
type CachedEventRepository struct {
	repo  EventRepository
	cache *redis.Client
}

// NewCachedEventRepository creates a new CachedEventRepository
func NewCachedEventRepository(repo EventRepository, cache *redis.Client) *CachedEventRepository {
	return &CachedEventRepository{
		repo:  repo,
		cache: cache,
	}
}

// Create creates a new event and invalidates the company list cache
func (r *CachedEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Create(ctx, event); err != nil {
		return err
	}
	r.invalidateCompanyCaches(ctx, event.CompanyID)
	return nil
}

// GetByID retrieves an event by ID with caching
func (r *CachedEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	cacheKey := eventDetailKeyPrefix + id
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var event domain.Event
		if err := json.Unmarshal([]byte(cached), &event); err == nil {
			return &event, nil
		}
	}

	event, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	r.cacheEvent(ctx, cacheKey, event)
	return event, nil
}

// Update updates an event and invalidates its caches
func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event, details []domain.EventDetail) (bool, error) {
	structuralApplied, err := r.repo.Update(ctx, event, details)
	if err != nil {
		return false, err
	}
	r.invalidateEventCaches(ctx, event.ID, event.CompanyID)
	return structuralApplied, nil
}

// MarkCanceled cancels an event and invalidates its caches
func (r *CachedEventRepository) MarkCanceled(ctx context.Context, id, comment string, endDate time.Time) error {
	if err := r.repo.MarkCanceled(ctx, id, comment, endDate); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, id, "")
	return nil
}

// MarkClosed closes an event and invalidates its caches
func (r *CachedEventRepository) MarkClosed(ctx context.Context, id string) error {
	if err := r.repo.MarkClosed(ctx, id); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, id, "")
	return nil
}

// FindToClose bypasses the cache, the sweep needs current state
func (r *CachedEventRepository) FindToClose(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	return r.repo.FindToClose(ctx, now, limit)
}

// Search bypasses the cache
func (r *CachedEventRepository) Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error) {
	return r.repo.Search(ctx, query)
}

// ListByCompany lists a company's events with caching
func (r *CachedEventRepository) ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error) {
	cacheKey := fmt.Sprintf("%s%s:%d:%d", companyEventsKeyPrefix, companyID, limit, page)
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var result cachedEventList
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result.Events, result.Total, nil
		}
	}

	events, total, err := r.repo.ListByCompany(ctx, companyID, limit, page)
	if err != nil {
		return nil, 0, err
	}

	r.cacheEventList(ctx, cacheKey, events, total)
	return events, total, nil
}

// CountBookings bypasses the cache, the update gate needs current state
func (r *CachedEventRepository) CountBookings(ctx context.Context, eventID string) (int, error) {
	return r.repo.CountBookings(ctx, eventID)
}

// AddFile attaches a file and invalidates the event cache
func (r *CachedEventRepository) AddFile(ctx context.Context, file *domain.EventFile) error {
	if err := r.repo.AddFile(ctx, file); err != nil {
		return err
	}
	r.cache.Del(ctx, eventDetailKeyPrefix+file.EventID)
	return nil
}

// RemoveFile detaches a file and invalidates the event cache
func (r *CachedEventRepository) RemoveFile(ctx context.Context, eventID, fileID string) error {
	if err := r.repo.RemoveFile(ctx, eventID, fileID); err != nil {
		return err
	}
	r.cache.Del(ctx, eventDetailKeyPrefix+eventID)
	return nil
}

// --- Helper functions ---

type cachedEventList struct {
	Events []*domain.Event `json:"events"`
	Total  int64           `json:"total"`
}

func (r *CachedEventRepository) cacheEvent(ctx context.Context, key string, event *domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), eventCacheTTL)
}

func (r *CachedEventRepository) cacheEventList(ctx context.Context, key string, events []*domain.Event, total int64) {
	data, err := json.Marshal(cachedEventList{Events: events, Total: total})
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), eventCacheTTL)
}

func (r *CachedEventRepository) invalidateEventCaches(ctx context.Context, id, companyID string) {
	r.cache.Del(ctx, eventDetailKeyPrefix+id)
	r.invalidateCompanyCaches(ctx, companyID)
}

func (r *CachedEventRepository) invalidateCompanyCaches(ctx context.Context, companyID string) {
	pattern := companyEventsKeyPrefix + "*"
	if companyID != "" {
		pattern = companyEventsKeyPrefix + companyID + ":*"
	}

	iter := r.cache.Client().Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		r.cache.Del(ctx, iter.Val())
	}
}
