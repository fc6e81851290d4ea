package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/ledgercore/backend/internal/application/ledger"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/interfaces/http/middleware"
)

// PeriodHandler handles fiscal period API endpoints
type PeriodHandler struct {
	BaseHandler
	periods *ledgerapp.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periods *ledgerapp.PeriodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// RegisterRoutes registers the fiscal period routes
func (h *PeriodHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/periods")
	group.GET("", h.List)
	group.GET("/:year/:month", h.Get)
	group.POST("/close", h.CloseMonth)
	group.POST("/close-year", h.CloseYear)
	group.POST("/reopen", h.Reopen)
}

func parseYearMonth(c *gin.Context) (ledger.YearMonth, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return ledger.YearMonth{}, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return ledger.YearMonth{}, false
	}
	return ledger.YearMonth{Year: year, Month: month}, true
}

// List returns all period rows of the company chronologically. Months that
// never saw activity have no row and are implicitly open.
func (h *PeriodHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	periods, err := h.periods.ListPeriods(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, periods)
}

// Get returns the period row for one month
func (h *PeriodHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return
	}

	ym, ok := parseYearMonth(c)
	if !ok {
		h.BadRequest(c, "Invalid year or month")
		return
	}

	period, err := h.periods.GetPeriod(c.Request.Context(), companyID, ym)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, period)
}

// ClosePeriodRequest represents a request to close or reopen a fiscal month
type ClosePeriodRequest struct {
	Year  int `json:"year" binding:"required,min=1900,max=9999"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// CloseMonth locks a fiscal month
func (h *PeriodHandler) CloseMonth(c *gin.Context) {
	h.closeOrReopen(c, h.periods.CloseMonth)
}

// Reopen unlocks a closed month. Administrative operation, always audited.
func (h *PeriodHandler) Reopen(c *gin.Context) {
	h.closeOrReopen(c, h.periods.ReopenPeriod)
}

func (h *PeriodHandler) closeOrReopen(
	c *gin.Context,
	fn func(ctx context.Context, companyID uuid.UUID, req ledgerapp.ClosePeriodRequest) (*ledgerapp.PeriodResponse, error),
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

	var req ClosePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	period, err := fn(c.Request.Context(), companyID, ledgerapp.ClosePeriodRequest{
		Year:    req.Year,
		Month:   req.Month,
		ActorID: actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, period)
}

// CloseYearRequest represents a request to close all open months of a year
type CloseYearRequest struct {
	Year int `json:"year" binding:"required,min=1900,max=9999"`
}

// CloseYear locks every open month of a fiscal year in chronological order
func (h *PeriodHandler) CloseYear(c *gin.Context) {
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

	var req CloseYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	periods, err := h.periods.CloseYear(c.Request.Context(), companyID, req.Year, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, periods)
}
