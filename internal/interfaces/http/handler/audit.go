package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/ledgercore/backend/internal/application/ledger"
	"github.com/ledgercore/backend/internal/interfaces/http/middleware"
)

// AuditHandler handles audit trail API endpoints
type AuditHandler struct {
	BaseHandler
	audit *ledgerapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit *ledgerapp.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// RegisterRoutes registers the audit trail routes
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/audit-records")
	group.GET("", h.List)
}

// List returns audit records matching the query filters, newest first
func (h *AuditHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	var filter ledgerapp.AuditListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	records, total, err := h.audit.ListRecords(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}
