package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/service"
	"github.com/vavepl/marketplace-backend/pkg/middleware"
	"github.com/vavepl/marketplace-backend/pkg/response"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUserRequest represents a user registration request
type CreateUserRequest struct {
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Phone       string     `json:"phone"`
	Gender      string     `json:"gender"`
	BirthDate   *time.Time `json:"birth_date"`
	DeviceToken string     `json:"device_token"`
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &domain.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Gender:      req.Gender,
		BirthDate:   req.BirthDate,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Created(c, user)
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, user)
}

// Search handles GET /users. When the caller is a company, its blacklisted
// users are excluded from the results.
func (h *UserHandler) Search(c *gin.Context) {
	var query dto.UserSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	companyID, _ := middleware.GetCompanyID(c)

	users, total, err := h.userService.Search(c.Request.Context(), &query, companyID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Paginated(c, users, query.Page, query.Limit, total)
}
