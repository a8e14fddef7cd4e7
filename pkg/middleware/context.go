package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the authenticated user ID set by the API gateway
	UserIDHeader = "X-User-ID"
	// CompanyIDHeader carries the acting company ID set by the API gateway
	CompanyIDHeader = "X-Company-ID"

	ContextKeyUserID    = "user_id"
	ContextKeyCompanyID = "company_id"
)

// RequestIdentity copies gateway identity headers into the gin context.
// Authentication itself happens upstream; this service only consumes the result.
func RequestIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(UserIDHeader); userID != "" {
			c.Set(ContextKeyUserID, userID)
		}
		if companyID := c.GetHeader(CompanyIDHeader); companyID != "" {
			c.Set(ContextKeyCompanyID, companyID)
		}
		c.Next()
	}
}

// GetUserID extracts the user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// GetCompanyID extracts the company ID from gin context
func GetCompanyID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyCompanyID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
