package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"github.com/ledgercore/backend/internal/infrastructure/telemetry"
)

// PeriodService provides application-level fiscal period operations. Closing
// runs inside a transaction holding a row lock on the period, so the draft
// check and the status flip are atomic against concurrent postings.
type PeriodService struct {
	txScope    TransactionScope
	periodRepo ledger.FiscalPeriodRepository
	eventBus   shared.EventBus
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(txScope TransactionScope, periodRepo ledger.FiscalPeriodRepository, eventBus shared.EventBus) *PeriodService {
	return &PeriodService{
		txScope:    txScope,
		periodRepo: periodRepo,
		eventBus:   eventBus,
	}
}

// PeriodResponse represents a fiscal period in API responses
type PeriodResponse struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID uuid.UUID  `json:"company_id"`
	Year      int        `json:"year"`
	Month     int        `json:"month"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	ClosedBy  *uuid.UUID `json:"closed_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

func toPeriodResponse(p *ledger.FiscalPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Year:      p.Year,
		Month:     p.Month,
		Status:    p.Status.String(),
		ClosedAt:  p.ClosedAt,
		ClosedBy:  p.ClosedBy,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	}
}

// ClosePeriodRequest represents a request to close or reopen a fiscal month
type ClosePeriodRequest struct {
	Year    int `json:"year" binding:"required"`
	Month   int `json:"month" binding:"required,min=1,max=12"`
	ActorID uuid.UUID
}

// IsOpen reports whether the month accepts postings. Months without a period
// row have seen no activity and count as open.
func (s *PeriodService) IsOpen(ctx context.Context, companyID uuid.UUID, ym ledger.YearMonth) (bool, error) {
	period, err := s.periodRepo.FindByMonth(ctx, companyID, ym)
	if err != nil {
		return false, err
	}
	return period == nil || period.IsOpen(), nil
}

// GetPeriod gets the period row for a month
func (s *PeriodService) GetPeriod(ctx context.Context, companyID uuid.UUID, ym ledger.YearMonth) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByMonth(ctx, companyID, ym)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Fiscal period "+ym.String()+" not found")
	}
	return toPeriodResponse(period), nil
}

// ListPeriods lists all period rows of a company chronologically
func (s *PeriodService) ListPeriods(ctx context.Context, companyID uuid.UUID) ([]PeriodResponse, error) {
	periods, err := s.periodRepo.FindAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = *toPeriodResponse(&periods[i])
	}
	return responses, nil
}

// CloseMonth locks a fiscal month. Months close in chronological order, and
// a month with outstanding draft entries cannot close: drafts must be posted
// or deleted first.
func (s *PeriodService) CloseMonth(ctx context.Context, companyID uuid.UUID, req ClosePeriodRequest) (*PeriodResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fiscal_period", "close_month")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, companyID.String(),
		telemetry.SpanAttrPeriod, ledger.YearMonth{Year: req.Year, Month: req.Month}.String(),
	)

	ym := ledger.YearMonth{Year: req.Year, Month: req.Month}

	var period *ledger.FiscalPeriod
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		period, err = repos.Periods().FindByMonthForUpdate(ctx, companyID, ym)
		if err != nil {
			return err
		}
		if period == nil {
			// month without activity, create the row so the close is recorded
			period, err = ledger.NewFiscalPeriod(companyID, ym.Year, ym.Month)
			if err != nil {
				return err
			}
		}

		if err := ensurePriorMonthsClosed(ctx, repos, companyID, ym); err != nil {
			return err
		}

		drafts, err := repos.Entries().CountByStatusInRange(ctx, companyID, ledger.EntryStatusDraft, ym.Start(), ym.End())
		if err != nil {
			return err
		}
		if drafts > 0 {
			return ledger.NewOutstandingDraftEntriesError(ym.Year, ym.Month, drafts)
		}

		if err := period.Close(req.ActorID); err != nil {
			return err
		}
		return repos.Periods().Save(ctx, period)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, period)

	return toPeriodResponse(period), nil
}

// ensurePriorMonthsClosed verifies every month between the company's first
// recorded activity and the close target carries a CLOSED period row. The walk
// starts at the earlier of the earliest period row and the earliest entry
// date, so a month without a row still blocks the close instead of being
// skipped over.
func ensurePriorMonthsClosed(ctx context.Context, repos TransactionalRepositories, companyID uuid.UUID, ym ledger.YearMonth) error {
	periods, err := repos.Periods().FindAll(ctx, companyID)
	if err != nil {
		return err
	}

	closed := make(map[ledger.YearMonth]bool, len(periods))
	var anchor *ledger.YearMonth
	for i := range periods {
		m := periods[i].YearMonth()
		if !m.Before(ym) {
			continue
		}
		if !periods[i].IsOpen() {
			closed[m] = true
		}
		if anchor == nil || m.Before(*anchor) {
			month := m
			anchor = &month
		}
	}

	earliest, err := repos.Entries().FindEarliestEffectiveDate(ctx, companyID, ym.Start())
	if err != nil {
		return err
	}
	if earliest != nil {
		m := ledger.YearMonthOf(*earliest)
		if anchor == nil || m.Before(*anchor) {
			anchor = &m
		}
	}

	if anchor == nil {
		// no rows and no entries before the target, nothing to close first
		return nil
	}
	for m := *anchor; m.Before(ym); m = m.Next() {
		if !closed[m] {
			return ledger.NewPriorPeriodOpenError(ym.Year, ym.Month, m.Year, m.Month)
		}
	}
	return nil
}

// CloseYear closes every remaining open month of a fiscal year in order
func (s *PeriodService) CloseYear(ctx context.Context, companyID uuid.UUID, year int, actorID uuid.UUID) ([]PeriodResponse, error) {
	responses := make([]PeriodResponse, 0, 12)
	for month := 1; month <= 12; month++ {
		open, err := s.IsOpen(ctx, companyID, ledger.YearMonth{Year: year, Month: month})
		if err != nil {
			return nil, err
		}
		period, err := s.periodRepo.FindByMonth(ctx, companyID, ledger.YearMonth{Year: year, Month: month})
		if err != nil {
			return nil, err
		}
		if period != nil && !open {
			responses = append(responses, *toPeriodResponse(period))
			continue
		}

		resp, err := s.CloseMonth(ctx, companyID, ClosePeriodRequest{Year: year, Month: month, ActorID: actorID})
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	if s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, ledger.NewYearClosedEvent(companyID, year, actorID))
	}

	return responses, nil
}

// ReopenPeriod unlocks a closed month. Reopening is exempt from the
// chronological rule but always leaves an audit record.
func (s *PeriodService) ReopenPeriod(ctx context.Context, companyID uuid.UUID, req ClosePeriodRequest) (*PeriodResponse, error) {
	ym := ledger.YearMonth{Year: req.Year, Month: req.Month}

	var period *ledger.FiscalPeriod
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		period, err = repos.Periods().FindByMonthForUpdate(ctx, companyID, ym)
		if err != nil {
			return err
		}
		if period == nil {
			return shared.NewDomainError("NOT_FOUND", "Fiscal period "+ym.String()+" not found")
		}
		if err := period.Reopen(req.ActorID); err != nil {
			return err
		}
		return repos.Periods().Save(ctx, period)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, period)

	return toPeriodResponse(period), nil
}

func (s *PeriodService) publishEvents(ctx context.Context, period *ledger.FiscalPeriod) {
	if s.eventBus == nil || period == nil {
		return
	}
	for _, event := range period.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	period.ClearDomainEvents()
}
