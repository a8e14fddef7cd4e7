package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/service"
	"github.com/vavepl/marketplace-backend/pkg/response"
)

// CompanyHandler handles company-related HTTP requests
type CompanyHandler struct {
	companyService service.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// CreateCompanyRequest represents a company registration request
type CreateCompanyRequest struct {
	Name  string `json:"name" binding:"required"`
	NIP   string `json:"nip" binding:"required"`
	Phone string `json:"phone"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	NIP     string `json:"nip"`
	Phone   string `json:"phone,omitempty"`
	Balance int    `json:"balance"`
}

// Create handles POST /companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), &domain.Company{
		Name:  req.Name,
		NIP:   req.NIP,
		Phone: req.Phone,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Created(c, toCompanyResponse(company))
}

// Get handles GET /companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.Success(c, toCompanyResponse(company))
}

// ListEmployees handles GET /companies/:id/employees
func (h *CompanyHandler) ListEmployees(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "ID is required")
		return
	}

	employees, err := h.companyService.ListEmployees(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Success(c, employees)
}

func toCompanyResponse(company *domain.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:      company.ID,
		Name:    company.Name,
		NIP:     company.NIP,
		Phone:   company.Phone,
		Balance: company.Balance,
	}
}
