package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"github.com/ledgercore/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// EntryService provides application-level ledger entry operations. All
// mutating operations run inside a transaction scope: the fiscal period row
// is locked for the duration, so posting and period closing serialize on it.
type EntryService struct {
	txScope       TransactionScope
	accountRepo   ledger.AccountRepository
	entryRepo     ledger.LedgerEntryRepository
	reversals     *ledger.ReversalService
	eventBus      shared.EventBus
	autoPost      map[ledger.EntryType]bool
	unpostEnabled bool
}

// EntryServiceOption is a functional option for configuring EntryService
type EntryServiceOption func(*EntryService)

// WithAutoPostTypes marks entry origins whose entries are posted immediately
// on creation. Used for trusted source document adapters.
func WithAutoPostTypes(types ...ledger.EntryType) EntryServiceOption {
	return func(s *EntryService) {
		for _, t := range types {
			s.autoPost[t] = true
		}
	}
}

// WithUnpostDisabled turns off the unpost escape hatch. Entries then only
// leave POSTED through a reversal.
func WithUnpostDisabled() EntryServiceOption {
	return func(s *EntryService) {
		s.unpostEnabled = false
	}
}

// NewEntryService creates a new EntryService
func NewEntryService(
	txScope TransactionScope,
	accountRepo ledger.AccountRepository,
	entryRepo ledger.LedgerEntryRepository,
	reversals *ledger.ReversalService,
	eventBus shared.EventBus,
	opts ...EntryServiceOption,
) *EntryService {
	s := &EntryService{
		txScope:       txScope,
		accountRepo:   accountRepo,
		entryRepo:     entryRepo,
		reversals:     reversals,
		eventBus:      eventBus,
		autoPost:      make(map[ledger.EntryType]bool),
		unpostEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LineResponse represents one ledger line in API responses
type LineResponse struct {
	ID           uuid.UUID       `json:"id"`
	Position     int             `json:"position"`
	AccountID    uuid.UUID       `json:"account_id"`
	AccountCode  string          `json:"account_code"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Description  string          `json:"description,omitempty"`
	CostCenter   string          `json:"cost_center,omitempty"`
	ProjectCode  string          `json:"project_code,omitempty"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID                uuid.UUID       `json:"id"`
	CompanyID         uuid.UUID       `json:"company_id"`
	FranchiseID       *uuid.UUID      `json:"franchise_id,omitempty"`
	Type              string          `json:"type"`
	ReferenceNumber   string          `json:"reference_number"`
	Description       string          `json:"description"`
	EffectiveDate     time.Time       `json:"effective_date"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	TotalCredit       decimal.Decimal `json:"total_credit"`
	Status            string          `json:"status"`
	ReversalOfEntryID *uuid.UUID      `json:"reversal_of_entry_id,omitempty"`
	ReversedByEntryID *uuid.UUID      `json:"reversed_by_entry_id,omitempty"`
	ReversalReason    string          `json:"reversal_reason,omitempty"`
	Lines             []LineResponse  `json:"lines,omitempty"`
	PostedBy          *uuid.UUID      `json:"posted_by,omitempty"`
	PostedAt          *time.Time      `json:"posted_at,omitempty"`
	CreatedBy         *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToEntryResponse converts a ledger entry aggregate to its API representation
func ToEntryResponse(e *ledger.LedgerEntry) *EntryResponse {
	resp := &EntryResponse{
		ID:                e.ID,
		CompanyID:         e.CompanyID,
		FranchiseID:       e.FranchiseID,
		Type:              e.Type.String(),
		ReferenceNumber:   e.ReferenceNumber,
		Description:       e.Description,
		EffectiveDate:     e.EffectiveDate,
		TotalDebit:        e.TotalDebit,
		TotalCredit:       e.TotalCredit,
		Status:            e.Status.String(),
		ReversalOfEntryID: e.ReversalOfEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		ReversalReason:    e.ReversalReason,
		PostedBy:          e.PostedBy,
		PostedAt:          e.PostedAt,
		CreatedBy:         e.CreatedBy,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
		Version:           e.Version,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			ID:           l.ID,
			Position:     l.Position,
			AccountID:    l.AccountID,
			AccountCode:  l.AccountCode,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
			CostCenter:   l.CostCenter,
			ProjectCode:  l.ProjectCode,
		})
	}
	return resp
}

// EntryLineRequest represents one line of a create or update request. The
// account reference is resolved through the registry before any amount is
// accepted.
type EntryLineRequest struct {
	Account     ledger.AccountRef
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	CostCenter  string
	ProjectCode string
}

// CreateEntryRequest represents a request to create a ledger entry
type CreateEntryRequest struct {
	Type          string
	Description   string
	EffectiveDate time.Time
	Lines         []EntryLineRequest
	FranchiseID   *uuid.UUID
	ActorID       uuid.UUID
}

// UpdateEntryRequest represents a request to edit a draft entry
type UpdateEntryRequest struct {
	Description   string
	EffectiveDate time.Time
	Lines         []EntryLineRequest
	ActorID       uuid.UUID
	Version       int
}

// ReverseEntryRequest represents a request to reverse a posted entry
type ReverseEntryRequest struct {
	Reason  string
	ActorID uuid.UUID
	Version int
}

// EntryListFilter defines filtering options for entry list queries
type EntryListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status"`
	Type      string     `form:"type"`
	AccountID *uuid.UUID `form:"account_id"`
	FromDate  *time.Time `form:"from_date"`
	ToDate    *time.Time `form:"to_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// CreateEntry creates a new ledger entry in DRAFT state, or POSTED when the
// origin is configured for auto-posting. The reference number is generated
// inside the creating transaction, so concurrent creations in the same
// period never collide.
func (s *EntryService) CreateEntry(ctx context.Context, companyID uuid.UUID, req CreateEntryRequest) (*EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_entry", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, companyID.String(),
		telemetry.SpanAttrEntryType, req.Type,
	)

	entryType := ledger.EntryType(req.Type)
	if entryType == ledger.EntryTypeReversal {
		err := shared.NewDomainError("INVALID_TYPE", "Reversal entries are created through the reverse operation")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var entry *ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := s.resolveLines(ctx, repos.Accounts(), companyID, req.Lines)
		if err != nil {
			return err
		}

		period := ledger.YearMonthOf(req.EffectiveDate)
		if err := ensureOpenPeriod(ctx, repos.Periods(), companyID, period); err != nil {
			return err
		}

		entry, err = ledger.NewLedgerEntry(companyID, req.FranchiseID, entryType,
			req.Description, req.EffectiveDate, req.ActorID, lines)
		if err != nil {
			return err
		}

		ref, err := repos.Entries().GenerateReferenceNumber(ctx, companyID, period)
		if err != nil {
			return err
		}
		if err := entry.SetReferenceNumber(ref); err != nil {
			return err
		}

		if err := repos.Entries().Create(ctx, entry); err != nil {
			return err
		}

		if s.autoPost[entryType] {
			if err := entry.Post(req.ActorID); err != nil {
				return err
			}
			return repos.Entries().SaveWithLock(ctx, entry)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrEntryID, entry.ID.String(),
		telemetry.SpanAttrReferenceNumber, entry.ReferenceNumber,
		telemetry.SpanAttrEntryStatus, string(entry.Status),
	)
	s.publishEvents(ctx, entry)

	return ToEntryResponse(entry), nil
}

// GetEntry gets a ledger entry with its lines
func (s *EntryService) GetEntry(ctx context.Context, companyID, entryID uuid.UUID) (*EntryResponse, error) {
	entry, err := s.findEntry(ctx, s.entryRepo, companyID, entryID)
	if err != nil {
		return nil, err
	}
	return ToEntryResponse(entry), nil
}

// GetEntryByReference gets a ledger entry by its reference number
func (s *EntryService) GetEntryByReference(ctx context.Context, companyID uuid.UUID, reference string) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByReferenceNumber(ctx, companyID, reference)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Ledger entry "+reference+" not found")
	}
	return ToEntryResponse(entry), nil
}

// ListEntries lists ledger entries with filtering
func (s *EntryService) ListEntries(ctx context.Context, companyID uuid.UUID, filter EntryListFilter) ([]EntryResponse, int64, error) {
	domainFilter := ledger.EntryFilter{
		AccountID: filter.AccountID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := ledger.EntryStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Type != "" {
		entryType := ledger.EntryType(filter.Type)
		domainFilter.Type = &entryType
	}

	entries, err := s.entryRepo.FindAll(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entryRepo.Count(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = *ToEntryResponse(&entries[i])
	}
	return responses, total, nil
}

// UpdateEntry edits a draft entry, re-running line resolution and the
// balance check
func (s *EntryService) UpdateEntry(ctx context.Context, companyID, entryID uuid.UUID, req UpdateEntryRequest) (*EntryResponse, error) {
	var entry *ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = s.findEntry(ctx, repos.Entries(), companyID, entryID)
		if err != nil {
			return err
		}
		if err := checkVersion(entry, req.Version); err != nil {
			return err
		}

		lines, err := s.resolveLines(ctx, repos.Accounts(), companyID, req.Lines)
		if err != nil {
			return err
		}

		if err := ensureOpenPeriod(ctx, repos.Periods(), companyID, ledger.YearMonthOf(req.EffectiveDate)); err != nil {
			return err
		}

		if err := entry.UpdateDraft(req.Description, req.EffectiveDate, lines); err != nil {
			return err
		}
		if err := repos.Entries().SaveWithLock(ctx, entry); err != nil {
			return err
		}
		return repos.Entries().ReplaceLines(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return ToEntryResponse(entry), nil
}

// PostEntry transitions a draft entry to POSTED. The effective date's period
// must be open; the period row stays locked until commit so a concurrent
// close cannot slip between the check and the write.
func (s *EntryService) PostEntry(ctx context.Context, companyID, entryID uuid.UUID, actorID uuid.UUID, version int) (*EntryResponse, error) {
	var entry *ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = s.findEntry(ctx, repos.Entries(), companyID, entryID)
		if err != nil {
			return err
		}
		if err := checkVersion(entry, version); err != nil {
			return err
		}

		if err := ensureOpenPeriod(ctx, repos.Periods(), companyID, ledger.YearMonthOf(entry.EffectiveDate)); err != nil {
			return err
		}

		if err := entry.Post(actorID); err != nil {
			return err
		}
		return repos.Entries().SaveWithLock(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, entry)

	return ToEntryResponse(entry), nil
}

// UnpostEntry demotes a posted entry back to DRAFT. Rejected when the
// entry's period has since been closed or the entry has been reversed.
func (s *EntryService) UnpostEntry(ctx context.Context, companyID, entryID uuid.UUID, actorID uuid.UUID, version int) (*EntryResponse, error) {
	if !s.unpostEnabled {
		return nil, shared.NewDomainError("UNPOST_DISABLED", "Unposting is disabled; correct posted entries through a reversal")
	}

	var entry *ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = s.findEntry(ctx, repos.Entries(), companyID, entryID)
		if err != nil {
			return err
		}
		if err := checkVersion(entry, version); err != nil {
			return err
		}

		if err := ensureOpenPeriod(ctx, repos.Periods(), companyID, ledger.YearMonthOf(entry.EffectiveDate)); err != nil {
			return err
		}

		if err := entry.Unpost(actorID); err != nil {
			return err
		}
		return repos.Entries().SaveWithLock(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, entry)

	return ToEntryResponse(entry), nil
}

// ReverseEntry creates and immediately posts the compensating entry for a
// posted original, linking the two. Original update, reversal insert and
// reversal posting commit atomically.
func (s *EntryService) ReverseEntry(ctx context.Context, companyID, entryID uuid.UUID, req ReverseEntryRequest) (*EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_entry", "reverse")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, companyID.String(),
		telemetry.SpanAttrEntryID, entryID.String(),
	)

	var (
		original *ledger.LedgerEntry
		reversal *ledger.LedgerEntry
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		original, err = s.findEntry(ctx, repos.Entries(), companyID, entryID)
		if err != nil {
			return err
		}
		if err := checkVersion(original, req.Version); err != nil {
			return err
		}

		period := ledger.YearMonthOf(s.reversals.EffectiveDate(original))
		if err := ensureOpenPeriod(ctx, repos.Periods(), companyID, period); err != nil {
			return err
		}

		reversal, err = s.reversals.BuildReversal(original, req.Reason, req.ActorID)
		if err != nil {
			return err
		}

		ref, err := repos.Entries().GenerateReferenceNumber(ctx, companyID, period)
		if err != nil {
			return err
		}
		if err := reversal.SetReferenceNumber(ref); err != nil {
			return err
		}
		if err := repos.Entries().Create(ctx, reversal); err != nil {
			return err
		}
		if err := reversal.Post(req.ActorID); err != nil {
			return err
		}
		if err := repos.Entries().SaveWithLock(ctx, reversal); err != nil {
			return err
		}
		return repos.Entries().SaveWithLock(ctx, original)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrReferenceNumber, reversal.ReferenceNumber)
	s.publishEvents(ctx, original)
	s.publishEvents(ctx, reversal)

	return ToEntryResponse(reversal), nil
}

// resolveLines resolves every line's account reference and enforces that the
// account is active and postable
func (s *EntryService) resolveLines(ctx context.Context, accounts ledger.AccountRepository, companyID uuid.UUID, lines []EntryLineRequest) ([]ledger.LineInput, error) {
	inputs := make([]ledger.LineInput, len(lines))
	for i, l := range lines {
		account, err := resolveAccount(ctx, accounts, companyID, l.Account)
		if err != nil {
			return nil, err
		}
		if !account.IsActive {
			return nil, ledger.NewInactiveAccountError(account.Code)
		}
		if !account.Tier.IsPostable() {
			return nil, shared.NewDomainError("INVALID_LINE",
				"Account "+account.Code+" is a "+account.Tier.String()+" node and cannot carry lines")
		}
		inputs[i] = ledger.LineInput{
			AccountID:   account.ID,
			AccountCode: account.Code,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			CostCenter:  l.CostCenter,
			ProjectCode: l.ProjectCode,
		}
	}
	return inputs, nil
}

func (s *EntryService) findEntry(ctx context.Context, repo ledger.LedgerEntryRepository, companyID, entryID uuid.UUID) (*ledger.LedgerEntry, error) {
	entry, err := repo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Ledger entry not found")
	}
	return entry, nil
}

// checkVersion rejects a mutation when the caller's view of the aggregate is
// stale. A zero version skips the check.
func checkVersion(entry *ledger.LedgerEntry, version int) error {
	if version > 0 && entry.Version != version {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ensureOpenPeriod loads the fiscal period row for the month, creating it
// lazily OPEN when the month sees its first activity. The row is read with a
// row lock so the period state cannot change under the transaction.
func ensureOpenPeriod(ctx context.Context, periods ledger.FiscalPeriodRepository, companyID uuid.UUID, ym ledger.YearMonth) error {
	period, err := periods.FindByMonthForUpdate(ctx, companyID, ym)
	if err != nil {
		return err
	}
	if period == nil {
		// A month with no row may still sit behind the closed frontier.
		// Lazily opening it there would let activity slip into a span the
		// company already closed through.
		latest, err := periods.FindLatestClosed(ctx, companyID)
		if err != nil {
			return err
		}
		if latest != nil && !latest.YearMonth().Before(ym) {
			return ledger.NewPeriodClosedError(ym.Year, ym.Month)
		}
		period, err = ledger.NewFiscalPeriod(companyID, ym.Year, ym.Month)
		if err != nil {
			return err
		}
		return periods.Save(ctx, period)
	}
	if !period.IsOpen() {
		return ledger.NewPeriodClosedError(ym.Year, ym.Month)
	}
	return nil
}

func (s *EntryService) publishEvents(ctx context.Context, entry *ledger.LedgerEntry) {
	if s.eventBus == nil || entry == nil {
		return
	}
	for _, event := range entry.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	entry.ClearDomainEvents()
}
