package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/ledgercore/backend/internal/application/ledger"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/interfaces/http/middleware"
)

// AccountHandler handles chart-of-accounts API endpoints
type AccountHandler struct {
	BaseHandler
	accounts *ledgerapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *ledgerapp.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes registers the chart-of-accounts routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/accounts")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:ref", h.Get)
	group.GET("/:ref/children", h.Children)
	group.PUT("/:ref/name", h.Rename)
	group.POST("/:ref/deactivate", h.Deactivate)
	group.POST("/:ref/activate", h.Activate)
}

// accountRef resolves a path segment into an account reference: a UUID
// refers to an account by id, anything else is treated as a business code.
func accountRef(raw string) ledger.AccountRef {
	if id, err := uuid.Parse(raw); err == nil {
		return ledger.ByID(id)
	}
	return ledger.ByCode(raw)
}

// CreateAccountRequest represents a request to create a chart-of-accounts node
type CreateAccountRequest struct {
	Tier       string     `json:"tier" binding:"required,oneof=CLASS GROUP SYNTHETIC ANALYTIC"`
	Code       string     `json:"code" binding:"required,account_code"`
	Name       string     `json:"name" binding:"required,min=1,max=200"`
	ParentID   *uuid.UUID `json:"parent_id"`
	ParentCode string     `json:"parent_code" binding:"omitempty,account_code"`
}

// Create creates a chart-of-accounts node
func (h *AccountHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := ledgerapp.CreateAccountRequest{
		Tier: req.Tier,
		Code: req.Code,
		Name: req.Name,
	}
	if req.ParentID != nil {
		ref := ledger.ByID(*req.ParentID)
		appReq.Parent = &ref
	} else if req.ParentCode != "" {
		ref := ledger.ByCode(req.ParentCode)
		appReq.Parent = &ref
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), companyID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, account)
}

// Get returns a single account by id or code
func (h *AccountHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	account, err := h.accounts.GetAccount(c.Request.Context(), companyID, accountRef(c.Param("ref")))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// List returns accounts matching the query filters
func (h *AccountHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	var filter ledgerapp.AccountListFilter
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

	accounts, total, err := h.accounts.ListAccounts(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// Children returns the direct children of an account
func (h *AccountHandler) Children(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	children, err := h.accounts.ListChildren(c.Request.Context(), companyID, accountRef(c.Param("ref")))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, children)
}

// RenameAccountRequest represents a request to rename an account
type RenameAccountRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// Rename changes an account's display name
func (h *AccountHandler) Rename(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	var req RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	account, err := h.accounts.RenameAccount(c.Request.Context(), companyID, accountRef(c.Param("ref")), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// Deactivate blocks an account from accepting new lines. History referencing
// the account stays untouched.
func (h *AccountHandler) Deactivate(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	account, err := h.accounts.DeactivateAccount(c.Request.Context(), companyID, accountRef(c.Param("ref")))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// Activate re-enables a deactivated account
func (h *AccountHandler) Activate(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	account, err := h.accounts.ActivateAccount(c.Request.Context(), companyID, accountRef(c.Param("ref")))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}
