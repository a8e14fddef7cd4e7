package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/metrics"
	"github.com/vavepl/marketplace-backend/internal/service"
	"github.com/vavepl/marketplace-backend/pkg/middleware"
	"github.com/vavepl/marketplace-backend/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// Create handles POST /events - publishes a new event for the caller's company
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	companyID, ok := middleware.GetCompanyID(c)
	if !ok || companyID == "" {
		response.Unauthorized(c, "Company identity required")
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), companyID, &req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Created(c, dto.EventFromDomain(event))
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, dto.EventFromDomain(event))
}

// Update handles PUT /events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, dto.EventFromDomain(event))
}

// Cancel handles POST /events/:id/cancel
func (h *EventHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	var req dto.CancelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cancellation comment is required")
		return
	}

	event, err := h.eventService.Cancel(c.Request.Context(), id, req.Comment)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, dto.EventFromDomain(event))
}

// Search handles GET /events - the multi-criteria search endpoint
func (h *EventHandler) Search(c *gin.Context) {
	var query dto.EventSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	start := time.Now()
	events, total, err := h.eventService.Search(c.Request.Context(), &query)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	metrics.RecordSearchDuration(c.Request.Context(), time.Since(start).Seconds())

	response.Paginated(c, dto.EventsFromDomain(events), query.Page, query.Limit, total)
}

// ListByCompany handles GET /companies/:id/events
func (h *EventHandler) ListByCompany(c *gin.Context) {
	companyID := c.Param("id")
	if companyID == "" {
		response.BadRequest(c, "Company ID is required")
		return
	}

	var page pageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	page.setDefaults()

	events, total, err := h.eventService.ListByCompany(c.Request.Context(), companyID, page.Limit, page.Page)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Paginated(c, dto.EventsFromDomain(events), page.Page, page.Limit, total)
}

// AddFile handles POST /events/:id/files
func (h *EventHandler) AddFile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	file, err := h.eventService.AddFile(c.Request.Context(), id, req.Name, req.Path)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Created(c, dto.EventFileResponse{ID: file.ID, Name: file.Name, Path: file.Path})
}

// RemoveFile handles DELETE /events/:id/files/:fileId
func (h *EventHandler) RemoveFile(c *gin.Context) {
	id := c.Param("id")
	fileID := c.Param("fileId")
	if id == "" || fileID == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	if err := h.eventService.RemoveFile(c.Request.Context(), id, fileID); err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, map[string]string{"message": "File removed"})
}

// pageQuery is the shared limit/page query binding
type pageQuery struct {
	Limit int `form:"limit"`
	Page  int `form:"page"`
}

func (p *pageQuery) setDefaults() {
	if p.Limit <= 0 {
		p.Limit = dto.DefaultSearchLimit
	}
	if p.Page <= 0 {
		p.Page = dto.DefaultSearchPage
	}
}

// respondDomainError maps domain errors onto HTTP statuses
func respondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrCancellationWindowExpired):
		response.UnprocessableEntity(c, "CANCELLATION_WINDOW_EXPIRED", err.Error())
	case errors.Is(err, domain.ErrAlreadyCanceled), errors.Is(err, domain.ErrEventClosed):
		response.Conflict(c, "INVALID_EVENT_STATE", err.Error())
	case errors.Is(err, domain.ErrStatusConflict), errors.Is(err, domain.ErrInvalidStatusTransition):
		response.Conflict(c, "STATUS_CONFLICT", err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
