package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/pkg/middleware"
)

// MockEventService is a map-backed in-memory EventService
type MockEventService struct {
	events map[string]*domain.Event
}

func NewMockEventService() *MockEventService {
	return &MockEventService{
		events: make(map[string]*domain.Event),
	}
}

func (m *MockEventService) Create(ctx context.Context, companyID string, req *dto.CreateEventRequest) (*domain.Event, error) {
	if req.CategoryID == "" {
		return nil, domain.ErrCategoryMissing
	}
	event := &domain.Event{
		ID:          "event-123",
		CompanyID:   companyID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      domain.EventStatusActive,
	}
	m.events[event.ID] = event
	return event, nil
}

func (m *MockEventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (m *MockEventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	event.Description = req.Description
	return event, nil
}

func (m *MockEventService) Cancel(ctx context.Context, id, comment string) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if event.IsCanceled() {
		return nil, domain.ErrAlreadyCanceled
	}
	if event.StartDate.Before(time.Now().Add(72 * time.Hour)) {
		return nil, domain.ErrCancellationWindowExpired
	}
	event.Status = domain.EventStatusCanceled
	event.CancelComment = comment
	return event, nil
}

func (m *MockEventService) Close(ctx context.Context, id string) error {
	if event, ok := m.events[id]; ok {
		event.Status = domain.EventStatusClosed
	}
	return nil
}

func (m *MockEventService) Search(ctx context.Context, query *dto.EventSearchQuery) ([]*domain.Event, int64, error) {
	query.SetDefaults()
	var out []*domain.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *MockEventService) ListByCompany(ctx context.Context, companyID string, limit, page int) ([]*domain.Event, int64, error) {
	var out []*domain.Event
	for _, e := range m.events {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *MockEventService) AddFile(ctx context.Context, eventID, name, path string) (*domain.EventFile, error) {
	if _, ok := m.events[eventID]; !ok {
		return nil, domain.ErrEventNotFound
	}
	return &domain.EventFile{ID: "file-1", EventID: eventID, Name: name, Path: path}, nil
}

func (m *MockEventService) RemoveFile(ctx context.Context, eventID, fileID string) error {
	if _, ok := m.events[eventID]; !ok {
		return domain.ErrEventNotFound
	}
	return nil
}

func (m *MockEventService) AddEvent(event *domain.Event) {
	m.events[event.ID] = event
}

func setupEventRouter(h *EventHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestIdentity())

	events := router.Group("/events")
	{
		events.GET("", h.Search)
		events.GET("/:id", h.Get)
		events.POST("", h.Create)
		events.PUT("/:id", h.Update)
		events.POST("/:id/cancel", h.Cancel)
	}
	router.GET("/companies/:id/events", h.ListByCompany)

	return router
}

func futureEvent(id string) *domain.Event {
	return &domain.Event{
		ID:         id,
		CompanyID:  "company-1",
		CategoryID: "cat-1",
		StartDate:  time.Now().AddDate(0, 6, 0),
		EndDate:    time.Now().AddDate(0, 7, 0),
		Status:     domain.EventStatusActive,
	}
}

func TestEventHandler_Create(t *testing.T) {
	mockSvc := NewMockEventService()
	router := setupEventRouter(NewEventHandler(mockSvc))

	body := map[string]interface{}{
		"category_id": "cat-1",
		"start_date":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
		"end_date":    time.Now().AddDate(0, 2, 0).Format(time.RFC3339),
		"details":     []map[string]interface{}{{"title": "standard", "price": 100}},
	}

	tests := []struct {
		name       string
		companyID  string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "valid request",
			companyID:  "company-1",
			body:       body,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing company identity",
			companyID:  "",
			body:       body,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			companyID:  "company-1",
			body:       map[string]interface{}{"category_id": "cat-1"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(tt.body)
			req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			if tt.companyID != "" {
				req.Header.Set(middleware.CompanyIDHeader, tt.companyID)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
		})
	}
}

func TestEventHandler_Get(t *testing.T) {
	mockSvc := NewMockEventService()
	router := setupEventRouter(NewEventHandler(mockSvc))
	mockSvc.AddEvent(futureEvent("event-1"))

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"existing event", "event-1", http.StatusOK},
		{"missing event", "ghost", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/events/"+tt.id, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}

func TestEventHandler_Cancel(t *testing.T) {
	mockSvc := NewMockEventService()
	router := setupEventRouter(NewEventHandler(mockSvc))

	mockSvc.AddEvent(futureEvent("cancelable"))

	imminent := futureEvent("imminent")
	imminent.StartDate = time.Now().Add(24 * time.Hour)
	mockSvc.AddEvent(imminent)

	canceled := futureEvent("canceled")
	canceled.Status = domain.EventStatusCanceled
	mockSvc.AddEvent(canceled)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{
			name:       "cancel inside window",
			id:         "cancelable",
			body:       `{"comment":"venue unavailable"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "window expired",
			id:         "imminent",
			body:       `{"comment":"too late"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "already canceled",
			id:         "canceled",
			body:       `{"comment":"again"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "missing comment",
			id:         "cancelable",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown event",
			id:         "ghost",
			body:       `{"comment":"whatever"}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "/events/"+tt.id+"/cancel", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
		})
	}
}

func TestEventHandler_Search(t *testing.T) {
	mockSvc := NewMockEventService()
	router := setupEventRouter(NewEventHandler(mockSvc))
	mockSvc.AddEvent(futureEvent("event-1"))

	req, _ := http.NewRequest(http.MethodGet, "/events?category_id=cat-1&price_from=50&price_to=200", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out struct {
		Success bool `json:"success"`
		Meta    struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, int64(1), out.Meta.Total)
	assert.Equal(t, dto.DefaultSearchPage, out.Meta.Page)
	assert.Equal(t, dto.DefaultSearchLimit, out.Meta.Limit)
}

func TestEventHandler_SearchBadDate(t *testing.T) {
	mockSvc := NewMockEventService()
	router := setupEventRouter(NewEventHandler(mockSvc))

	req, _ := http.NewRequest(http.MethodGet, "/events?date_from=notadate", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
