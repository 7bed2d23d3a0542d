package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHeader carries the acting tenant's ID. Authentication itself is
// handled upstream (API gateway); this layer only trusts and parses the header.
const TenantHeader = "X-Tenant-ID"

const tenantContextKey = "httpkit.tenant_id"

// TenantMiddleware extracts the tenant ID header and stores it on the
// request context. Requests without a valid tenant ID are rejected.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			Error(c, http.StatusBadRequest, "missing tenant ID header", nil)
			c.Abort()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid tenant ID header", nil)
			c.Abort()
			return
		}

		c.Set(tenantContextKey, tenantID)
		c.Next()
	}
}

// MustGetTenantID returns the tenant ID stored by TenantMiddleware.
// Writes a 400 response and returns false when the value is absent.
func MustGetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(tenantContextKey)
	if !ok {
		Error(c, http.StatusBadRequest, "tenant ID is required", nil)
		return uuid.UUID{}, false
	}

	tenantID, ok := value.(uuid.UUID)
	if !ok {
		Error(c, http.StatusBadRequest, "tenant ID is required", nil)
		return uuid.UUID{}, false
	}

	return tenantID, true
}
