package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/vavepl/marketplace-backend/internal/dto"
	"github.com/vavepl/marketplace-backend/internal/service"
	"github.com/vavepl/marketplace-backend/pkg/response"
)

// CategoryHandler handles category tree HTTP requests
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// Tree handles GET /categories - returns the full category forest
func (h *CategoryHandler) Tree(c *gin.Context) {
	roots, err := h.categoryService.Tree(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]*dto.CategoryResponse, 0, len(roots))
	for _, root := range roots {
		out = append(out, dto.CategoryFromDomain(root))
	}
	response.Success(c, out)
}

// Children handles GET /categories/:id/children
func (h *CategoryHandler) Children(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	children, err := h.categoryService.Children(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	out := make([]*dto.CategoryResponse, 0, len(children))
	for _, child := range children {
		out = append(out, dto.CategoryFromDomain(child))
	}
	response.Success(c, out)
}

// Create handles POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Title    string  `json:"title" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Title is required")
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req.Title, req.ParentID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Created(c, dto.CategoryFromDomain(category))
}
