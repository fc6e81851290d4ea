package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryType tags the origin of a ledger entry
type EntryType string

const (
	EntryTypeManual     EntryType = "MANUAL"
	EntryTypeSales      EntryType = "SALES"
	EntryTypePurchase   EntryType = "PURCHASE"
	EntryTypeBank       EntryType = "BANK"
	EntryTypeCash       EntryType = "CASH"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
	EntryTypeReversal   EntryType = "REVERSAL"
)

// IsValid checks if the type is a known EntryType
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeManual, EntryTypeSales, EntryTypePurchase, EntryTypeBank,
		EntryTypeCash, EntryTypeAdjustment, EntryTypeReversal:
		return true
	}
	return false
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// EntryStatus represents the lifecycle state of a ledger entry
type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "DRAFT"    // Editable, not yet authoritative
	EntryStatusPosted   EntryStatus = "POSTED"   // Final, contributes to balances
	EntryStatusReversed EntryStatus = "REVERSED" // Terminal, compensated by a reversal entry
)

// IsValid checks if the status is a known EntryStatus
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusPosted, EntryStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no transition leaves this state
func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusReversed
}

// CanTransitionTo reports whether the state machine permits moving to target.
// DRAFT -> POSTED, POSTED -> DRAFT (unpost), POSTED -> REVERSED; nothing
// leaves REVERSED.
func (s EntryStatus) CanTransitionTo(target EntryStatus) bool {
	switch s {
	case EntryStatusDraft:
		return target == EntryStatusPosted
	case EntryStatusPosted:
		return target == EntryStatusDraft || target == EntryStatusReversed
	}
	return false
}

// BalanceEpsilon is the tolerance of the balance check. It sits strictly below
// the smallest currency subunit so a one-cent discrepancy is rejected.
var BalanceEpsilon = decimal.New(5, -3) // 0.005

// LedgerLine is one debit or credit movement within an entry. Lines are owned
// by their entry, never edited in place once the entry is posted, and never
// loaded or saved independently.
type LedgerLine struct {
	ID            uuid.UUID       `json:"id"`
	LedgerEntryID uuid.UUID       `json:"ledger_entry_id"`
	Position      int             `json:"position"`
	AccountID     uuid.UUID       `json:"account_id"`
	AccountCode   string          `json:"account_code"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	Description   string          `json:"description"`
	CostCenter    string          `json:"cost_center,omitempty"`
	ProjectCode   string          `json:"project_code,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsDebit returns true if the line moves the debit side
func (l *LedgerLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Net returns debit minus credit for this line
func (l *LedgerLine) Net() decimal.Decimal {
	return l.DebitAmount.Sub(l.CreditAmount)
}

// TableName returns the table name for GORM
func (LedgerLine) TableName() string {
	return "ledger_lines"
}

// LineInput carries the caller-supplied shape of one line. The account must
// already be resolved through the Account Registry.
type LineInput struct {
	AccountID   uuid.UUID
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	CostCenter  string
	ProjectCode string
}

func validateLineInput(pos int, in LineInput) error {
	if in.AccountID == uuid.Nil {
		return shared.NewDomainError(ErrCodeAccountNotFound, fmt.Sprintf("Line %d references no account", pos+1))
	}
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Line %d: amounts cannot be negative", pos+1))
	}
	debitSet := in.Debit.IsPositive()
	creditSet := in.Credit.IsPositive()
	if debitSet == creditSet {
		return shared.NewDomainError("INVALID_LINE",
			fmt.Sprintf("Line %d: exactly one of debit or credit must be positive", pos+1))
	}
	return nil
}

// LedgerEntry is the aggregate root of one balanced accounting transaction.
// Posted history is immutable; corrections happen through reversal entries.
type LedgerEntry struct {
	shared.CompanyAggregateRoot
	FranchiseID       *uuid.UUID      `json:"franchise_id,omitempty"`
	Type              EntryType       `json:"type"`
	ReferenceNumber   string          `json:"reference_number"`
	Description       string          `json:"description"`
	EffectiveDate     time.Time       `json:"effective_date"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	TotalCredit       decimal.Decimal `json:"total_credit"`
	Status            EntryStatus     `json:"status"`
	ReversalOfEntryID *uuid.UUID      `json:"reversal_of_entry_id,omitempty"`
	ReversedByEntryID *uuid.UUID      `json:"reversed_by_entry_id,omitempty"`
	ReversalReason    string          `json:"reversal_reason,omitempty"`
	Lines             []LedgerLine    `json:"lines"`
	PostedBy          *uuid.UUID      `json:"posted_by,omitempty"`
	PostedAt          *time.Time      `json:"posted_at,omitempty"`
}

// NewLedgerEntry creates a new entry in DRAFT state after enforcing the shape
// invariants: at least two lines, every line single-sided, and total debits
// equal to total credits within BalanceEpsilon.
func NewLedgerEntry(
	companyID uuid.UUID,
	franchiseID *uuid.UUID,
	entryType EntryType,
	description string,
	effectiveDate time.Time,
	createdBy uuid.UUID,
	lines []LineInput,
) (*LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown entry type %q", entryType))
	}
	if effectiveDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Effective date is required")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Creating actor is required")
	}
	if len(lines) < 2 {
		return nil, shared.NewDomainError("INVALID_LINE",
			fmt.Sprintf("An entry requires at least two lines, got %d", len(lines)))
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, in := range lines {
		if err := validateLineInput(i, in); err != nil {
			return nil, err
		}
		totalDebit = totalDebit.Add(in.Debit)
		totalCredit = totalCredit.Add(in.Credit)
	}
	if totalDebit.Sub(totalCredit).Abs().GreaterThan(BalanceEpsilon) {
		return nil, NewUnbalancedEntryError(totalDebit, totalCredit)
	}

	e := &LedgerEntry{
		CompanyAggregateRoot: shared.NewCompanyAggregateRootWithCreator(companyID, createdBy),
		FranchiseID:          franchiseID,
		Type:                 entryType,
		Description:          description,
		EffectiveDate:        effectiveDate,
		TotalDebit:           totalDebit,
		TotalCredit:          totalCredit,
		Status:               EntryStatusDraft,
		Lines:                make([]LedgerLine, 0, len(lines)),
	}
	for i, in := range lines {
		e.Lines = append(e.Lines, LedgerLine{
			ID:            uuid.New(),
			LedgerEntryID: e.ID,
			Position:      i,
			AccountID:     in.AccountID,
			AccountCode:   in.AccountCode,
			DebitAmount:   in.Debit,
			CreditAmount:  in.Credit,
			Description:   in.Description,
			CostCenter:    in.CostCenter,
			ProjectCode:   in.ProjectCode,
			CreatedAt:     e.CreatedAt,
		})
	}

	e.AddDomainEvent(NewEntryCreatedEvent(e))

	return e, nil
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// SetReferenceNumber assigns the sequential company+period reference. It is
// generated inside the creating transaction and never changes afterwards.
func (e *LedgerEntry) SetReferenceNumber(ref string) error {
	if e.ReferenceNumber != "" {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Reference number is already assigned")
	}
	if ref == "" {
		return shared.NewDomainError("INVALID_INPUT", "Reference number cannot be empty")
	}
	e.ReferenceNumber = ref
	return nil
}

// Post transitions DRAFT -> POSTED and stamps the posting actor and time.
// The caller must have verified that the effective date's period is open.
func (e *LedgerEntry) Post(actorID uuid.UUID) error {
	if !e.Status.CanTransitionTo(EntryStatusPosted) {
		return NewInvalidStateTransitionError(e.Status, EntryStatusPosted)
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Posting actor is required")
	}

	now := time.Now()
	from := e.Status
	e.Status = EntryStatusPosted
	e.PostedBy = &actorID
	e.PostedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewEntryPostedEvent(e, from))

	return nil
}

// Unpost transitions POSTED -> DRAFT. An entry that has been reversed can
// never be unposted; its history is already compensated.
func (e *LedgerEntry) Unpost(actorID uuid.UUID) error {
	if !e.Status.CanTransitionTo(EntryStatusDraft) {
		return NewInvalidStateTransitionError(e.Status, EntryStatusDraft)
	}
	if e.ReversedByEntryID != nil {
		return NewAlreadyReversedError(e.ReferenceNumber)
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Unposting actor is required")
	}

	now := time.Now()
	from := e.Status
	e.Status = EntryStatusDraft
	e.PostedBy = nil
	e.PostedAt = nil
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewEntryUnpostedEvent(e, from, actorID))

	return nil
}

// MarkReversed transitions POSTED -> REVERSED, linking the compensating entry.
// At most one reversal per entry.
func (e *LedgerEntry) MarkReversed(reversalEntryID uuid.UUID, reason string) error {
	if e.Status != EntryStatusPosted {
		return NewNotPostedError(e.Status)
	}
	if e.ReversedByEntryID != nil {
		return NewAlreadyReversedError(e.ReferenceNumber)
	}
	if reversalEntryID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Reversal entry ID is required")
	}

	now := time.Now()
	from := e.Status
	e.Status = EntryStatusReversed
	e.ReversedByEntryID = &reversalEntryID
	e.ReversalReason = reason
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewEntryReversedEvent(e, from, reversalEntryID, reason))

	return nil
}

// UpdateDraft replaces the editable header fields and lines of a DRAFT entry,
// re-running the same shape validation as creation.
func (e *LedgerEntry) UpdateDraft(description string, effectiveDate time.Time, lines []LineInput) error {
	if e.Status != EntryStatusDraft {
		return NewInvalidStateTransitionError(e.Status, EntryStatusDraft)
	}
	if effectiveDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Effective date is required")
	}
	if len(lines) < 2 {
		return shared.NewDomainError("INVALID_LINE",
			fmt.Sprintf("An entry requires at least two lines, got %d", len(lines)))
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, in := range lines {
		if err := validateLineInput(i, in); err != nil {
			return err
		}
		totalDebit = totalDebit.Add(in.Debit)
		totalCredit = totalCredit.Add(in.Credit)
	}
	if totalDebit.Sub(totalCredit).Abs().GreaterThan(BalanceEpsilon) {
		return NewUnbalancedEntryError(totalDebit, totalCredit)
	}

	now := time.Now()
	e.Description = description
	e.EffectiveDate = effectiveDate
	e.TotalDebit = totalDebit
	e.TotalCredit = totalCredit
	e.Lines = e.Lines[:0]
	for i, in := range lines {
		e.Lines = append(e.Lines, LedgerLine{
			ID:            uuid.New(),
			LedgerEntryID: e.ID,
			Position:      i,
			AccountID:     in.AccountID,
			AccountCode:   in.AccountCode,
			DebitAmount:   in.Debit,
			CreditAmount:  in.Credit,
			Description:   in.Description,
			CostCenter:    in.CostCenter,
			ProjectCode:   in.ProjectCode,
			CreatedAt:     now,
		})
	}
	e.UpdatedAt = now
	e.IncrementVersion()

	return nil
}

// IsDraft returns true if the entry is editable
func (e *LedgerEntry) IsDraft() bool {
	return e.Status == EntryStatusDraft
}

// IsPosted returns true if the entry contributes to reported balances
func (e *LedgerEntry) IsPosted() bool {
	return e.Status == EntryStatusPosted
}

// IsReversed returns true if the entry has been compensated
func (e *LedgerEntry) IsReversed() bool {
	return e.Status == EntryStatusReversed
}

// LineCount returns the number of lines
func (e *LedgerEntry) LineCount() int {
	return len(e.Lines)
}

// NetByAccount returns debit minus credit per touched account. For an entry E
// and its reversal R, net(E) + net(R) is zero for every account.
func (e *LedgerEntry) NetByAccount() map[uuid.UUID]decimal.Decimal {
	net := make(map[uuid.UUID]decimal.Decimal, len(e.Lines))
	for i := range e.Lines {
		l := &e.Lines[i]
		net[l.AccountID] = net[l.AccountID].Add(l.Net())
	}
	return net
}
