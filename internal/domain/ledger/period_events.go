package ledger

import (
	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// Aggregate type constant for FiscalPeriod
const AggregateTypeFiscalPeriod = "FiscalPeriod"

// Event type constants for FiscalPeriod
const (
	EventTypePeriodClosed   = "FiscalPeriodClosed"
	EventTypePeriodReopened = "FiscalPeriodReopened"
	EventTypeYearClosed     = "FiscalYearClosed"
)

// PeriodClosedEvent is raised when a month is locked
type PeriodClosedEvent struct {
	shared.BaseDomainEvent
	PeriodID   uuid.UUID    `json:"period_id"`
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	FromStatus PeriodStatus `json:"from_status"`
	ToStatus   PeriodStatus `json:"to_status"`
	ClosedBy   *uuid.UUID   `json:"closed_by,omitempty"`
}

// NewPeriodClosedEvent creates a new PeriodClosedEvent
func NewPeriodClosedEvent(p *FiscalPeriod) *PeriodClosedEvent {
	return &PeriodClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodClosed, AggregateTypeFiscalPeriod, p.ID, p.CompanyID),
		PeriodID:        p.ID,
		Year:            p.Year,
		Month:           p.Month,
		FromStatus:      PeriodStatusOpen,
		ToStatus:        p.Status,
		ClosedBy:        p.ClosedBy,
	}
}

// PeriodReopenedEvent is raised when a closed month is administratively unlocked
type PeriodReopenedEvent struct {
	shared.BaseDomainEvent
	PeriodID   uuid.UUID    `json:"period_id"`
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	FromStatus PeriodStatus `json:"from_status"`
	ToStatus   PeriodStatus `json:"to_status"`
	ReopenedBy uuid.UUID    `json:"reopened_by"`
}

// NewPeriodReopenedEvent creates a new PeriodReopenedEvent
func NewPeriodReopenedEvent(p *FiscalPeriod, actorID uuid.UUID) *PeriodReopenedEvent {
	return &PeriodReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodReopened, AggregateTypeFiscalPeriod, p.ID, p.CompanyID),
		PeriodID:        p.ID,
		Year:            p.Year,
		Month:           p.Month,
		FromStatus:      PeriodStatusClosed,
		ToStatus:        p.Status,
		ReopenedBy:      actorID,
	}
}

// YearClosedEvent is raised when all twelve months of a fiscal year are closed
type YearClosedEvent struct {
	shared.BaseDomainEvent
	Year     int       `json:"year"`
	ClosedBy uuid.UUID `json:"closed_by"`
}

// NewYearClosedEvent creates a new YearClosedEvent
func NewYearClosedEvent(companyID uuid.UUID, year int, actorID uuid.UUID) *YearClosedEvent {
	return &YearClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeYearClosed, AggregateTypeFiscalPeriod, uuid.New(), companyID),
		Year:            year,
		ClosedBy:        actorID,
	}
}
