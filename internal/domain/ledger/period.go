package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// PeriodStatus represents the lock state of a fiscal period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
)

// IsValid checks if the status is a known PeriodStatus
func (s PeriodStatus) IsValid() bool {
	return s == PeriodStatusOpen || s == PeriodStatusClosed
}

// String returns the string representation of PeriodStatus
func (s PeriodStatus) String() string {
	return string(s)
}

// YearMonth is a calendar month identifier
type YearMonth struct {
	Year  int
	Month int
}

// YearMonthOf extracts the fiscal month of a date
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Before reports whether ym is chronologically before other
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following calendar month
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// String returns "YYYY-MM"
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Start returns the first instant of the month (UTC)
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month (UTC, exclusive bound)
func (ym YearMonth) End() time.Time {
	return ym.Start().AddDate(0, 1, 0)
}

// FiscalPeriod is one lockable calendar month of a company's books. Rows are
// created lazily OPEN when the first entry of the month arrives, so every
// month with activity has a row and the close sequence stays contiguous.
type FiscalPeriod struct {
	shared.CompanyAggregateRoot
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	Status   PeriodStatus `json:"status"`
	ClosedAt *time.Time   `json:"closed_at,omitempty"`
	ClosedBy *uuid.UUID   `json:"closed_by,omitempty"`
}

// NewFiscalPeriod creates an open fiscal period for the given month
func NewFiscalPeriod(companyID uuid.UUID, year, month int) (*FiscalPeriod, error) {
	if year < 1900 || year > 9999 {
		return nil, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Year %d is out of range", year))
	}
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Month %d is out of range", month))
	}

	return &FiscalPeriod{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Year:                 year,
		Month:                month,
		Status:               PeriodStatusOpen,
	}, nil
}

// TableName returns the table name for GORM
func (FiscalPeriod) TableName() string {
	return "fiscal_periods"
}

// YearMonth returns the month this period covers
func (p *FiscalPeriod) YearMonth() YearMonth {
	return YearMonth{Year: p.Year, Month: p.Month}
}

// IsOpen returns true if the period accepts postings
func (p *FiscalPeriod) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// Close locks the period. Preconditions on close ordering and outstanding
// drafts are enforced by the Period Lock Manager, which holds the period row
// locked while calling this.
func (p *FiscalPeriod) Close(actorID uuid.UUID) error {
	if p.Status == PeriodStatusClosed {
		return NewAlreadyClosedError(p.Year, p.Month)
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Closing actor is required")
	}

	now := time.Now()
	p.Status = PeriodStatusClosed
	p.ClosedAt = &now
	p.ClosedBy = &actorID
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodClosedEvent(p))

	return nil
}

// Reopen unlocks a closed period. This is the administrative escape hatch;
// it is exempt from the chronological ordering rule but always audited.
func (p *FiscalPeriod) Reopen(actorID uuid.UUID) error {
	if p.Status == PeriodStatusOpen {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Fiscal period %s is already open", p.YearMonth()))
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Reopening actor is required")
	}

	now := time.Now()
	p.Status = PeriodStatusOpen
	p.ClosedAt = nil
	p.ClosedBy = nil
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodReopenedEvent(p, actorID))

	return nil
}
