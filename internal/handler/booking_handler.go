package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/service"
	"github.com/vavepl/marketplace-backend/pkg/middleware"
	"github.com/vavepl/marketplace-backend/pkg/response"
)

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// Create handles POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		response.Unauthorized(c, "User identity required")
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Created(c, dto.BookingFromDomain(booking))
}

// Get handles GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, dto.BookingFromDomain(booking))
}

// Transition handles POST /bookings/:id/status
func (h *BookingHandler) Transition(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	var req dto.TransitionBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Status is required")
		return
	}

	booking, err := h.bookingService.Transition(c.Request.Context(), id, domain.UserEventStatus(req.Status))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, dto.BookingFromDomain(booking))
}

// ListMine handles GET /bookings - the caller's bookings, newest first
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		response.Unauthorized(c, "User identity required")
		return
	}

	var page pageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	page.setDefaults()

	bookings, total, err := h.bookingService.ListByUser(c.Request.Context(), userID, page.Limit, page.Page)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.BookingFromDomain(b))
	}
	response.Paginated(c, out, page.Page, page.Limit, total)
}
