package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/ledgercore/backend/internal/application/ledger"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/interfaces/http/middleware"
)

// EntryHandler handles ledger entry API endpoints
type EntryHandler struct {
	BaseHandler
	entries *ledgerapp.EntryService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entries *ledgerapp.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// RegisterRoutes registers the ledger entry routes
func (h *EntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/entries")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/by-reference/:reference", h.GetByReference)
	group.PUT("/:id", h.Update)
	group.POST("/:id/post", h.Post)
	group.POST("/:id/unpost", middleware.RequireRole(middleware.RoleAdmin), h.Unpost)
	group.POST("/:id/reverse", h.Reverse)
}

// EntryLineRequest represents one line of an entry request. Exactly one of
// account_id and account_code identifies the account, and exactly one of
// debit and credit carries the amount.
type EntryLineRequest struct {
	AccountID   *uuid.UUID      `json:"account_id"`
	AccountCode string          `json:"account_code" binding:"omitempty,account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description" binding:"max=500"`
	CostCenter  string          `json:"cost_center" binding:"max=50"`
	ProjectCode string          `json:"project_code" binding:"max=50"`
}

func (r EntryLineRequest) toApp() (ledgerapp.EntryLineRequest, bool) {
	line := ledgerapp.EntryLineRequest{
		Debit:       r.Debit,
		Credit:      r.Credit,
		Description: r.Description,
		CostCenter:  r.CostCenter,
		ProjectCode: r.ProjectCode,
	}
	switch {
	case r.AccountID != nil:
		line.Account = ledger.ByID(*r.AccountID)
	case r.AccountCode != "":
		line.Account = ledger.ByCode(r.AccountCode)
	default:
		return line, false
	}
	return line, true
}

func toAppLines(lines []EntryLineRequest) ([]ledgerapp.EntryLineRequest, bool) {
	appLines := make([]ledgerapp.EntryLineRequest, 0, len(lines))
	for _, l := range lines {
		line, ok := l.toApp()
		if !ok {
			return nil, false
		}
		appLines = append(appLines, line)
	}
	return appLines, true
}

// CreateEntryRequest represents a request to create a ledger entry
type CreateEntryRequest struct {
	Type          string             `json:"type" binding:"required,oneof=MANUAL SALES PURCHASE BANK CASH ADJUSTMENT"`
	Description   string             `json:"description" binding:"max=500"`
	EffectiveDate time.Time          `json:"effective_date" binding:"required"`
	Lines         []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
	FranchiseID   *uuid.UUID         `json:"franchise_id"`
}

// Create creates a new ledger entry
func (h *EntryHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lines, ok := toAppLines(req.Lines)
	if !ok {
		h.BadRequest(c, "Every line needs an account_id or account_code")
		return
	}

	entry, err := h.entries.CreateEntry(c.Request.Context(), companyID, ledgerapp.CreateEntryRequest{
		Type:          req.Type,
		Description:   req.Description,
		EffectiveDate: req.EffectiveDate,
		Lines:         lines,
		FranchiseID:   req.FranchiseID,
		ActorID:       actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entry)
}

// Get returns a single entry with its lines
func (h *EntryHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.entries.GetEntry(c.Request.Context(), companyID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// GetByReference returns a single entry by its reference number
func (h *EntryHandler) GetByReference(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	entry, err := h.entries.GetEntryByReference(c.Request.Context(), companyID, c.Param("reference"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// List returns entry headers matching the query filters
func (h *EntryHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	var filter ledgerapp.EntryListFilter
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

	entries, total, err := h.entries.ListEntries(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// UpdateEntryRequest represents a request to edit a draft entry
type UpdateEntryRequest struct {
	Description   string             `json:"description" binding:"max=500"`
	EffectiveDate time.Time          `json:"effective_date" binding:"required"`
	Lines         []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
	Version       int                `json:"version" binding:"required,min=1"`
}

// Update replaces the content of a draft entry
func (h *EntryHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lines, ok := toAppLines(req.Lines)
	if !ok {
		h.BadRequest(c, "Every line needs an account_id or account_code")
		return
	}

	entry, err := h.entries.UpdateEntry(c.Request.Context(), companyID, entryID, ledgerapp.UpdateEntryRequest{
		Description:   req.Description,
		EffectiveDate: req.EffectiveDate,
		Lines:         lines,
		ActorID:       actorID,
		Version:       req.Version,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// VersionRequest carries the expected aggregate version of a state change
type VersionRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

// Post transitions a draft entry to POSTED
func (h *EntryHandler) Post(c *gin.Context) {
	h.transition(c, h.entries.PostEntry)
}

// Unpost transitions a posted entry back to DRAFT
func (h *EntryHandler) Unpost(c *gin.Context) {
	h.transition(c, h.entries.UnpostEntry)
}

func (h *EntryHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, companyID, entryID, actorID uuid.UUID, version int) (*ledgerapp.EntryResponse, error),
) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req VersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := fn(c.Request.Context(), companyID, entryID, actorID, req.Version)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// ReverseEntryRequest represents a request to reverse a posted entry
type ReverseEntryRequest struct {
	Reason  string `json:"reason" binding:"required,min=1,max=500"`
	Version int    `json:"version" binding:"required,min=1"`
}

// Reverse creates and posts the compensating entry for a posted entry
func (h *EntryHandler) Reverse(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := h.entries.ReverseEntry(c.Request.Context(), companyID, entryID, ledgerapp.ReverseEntryRequest{
		Reason:  req.Reason,
		ActorID: actorID,
		Version: req.Version,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}
