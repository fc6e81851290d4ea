package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for LedgerEntry
const AggregateTypeLedgerEntry = "LedgerEntry"

// Event type constants for LedgerEntry
const (
	EventTypeEntryCreated  = "LedgerEntryCreated"
	EventTypeEntryPosted   = "LedgerEntryPosted"
	EventTypeEntryUnposted = "LedgerEntryUnposted"
	EventTypeEntryReversed = "LedgerEntryReversed"
)

// EntryLineInfo carries line information on entry events
type EntryLineInfo struct {
	AccountID    uuid.UUID       `json:"account_id"`
	AccountCode  string          `json:"account_code"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
}

func entryLineInfos(e *LedgerEntry) []EntryLineInfo {
	infos := make([]EntryLineInfo, len(e.Lines))
	for i, l := range e.Lines {
		infos[i] = EntryLineInfo{
			AccountID:    l.AccountID,
			AccountCode:  l.AccountCode,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
		}
	}
	return infos
}

// EntryCreatedEvent is raised when a new ledger entry is accepted
type EntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryID       uuid.UUID       `json:"entry_id"`
	EntryType     EntryType       `json:"entry_type"`
	EffectiveDate time.Time       `json:"effective_date"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	Lines         []EntryLineInfo `json:"lines"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	ToStatus      EntryStatus     `json:"to_status"`
}

// NewEntryCreatedEvent creates a new EntryCreatedEvent
func NewEntryCreatedEvent(e *LedgerEntry) *EntryCreatedEvent {
	return &EntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryCreated, AggregateTypeLedgerEntry, e.ID, e.CompanyID),
		EntryID:         e.ID,
		EntryType:       e.Type,
		EffectiveDate:   e.EffectiveDate,
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		Lines:           entryLineInfos(e),
		CreatedBy:       e.CreatedBy,
		ToStatus:        e.Status,
	}
}

// EntryPostedEvent is raised when an entry becomes authoritative
type EntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID         uuid.UUID   `json:"entry_id"`
	ReferenceNumber string      `json:"reference_number"`
	FromStatus      EntryStatus `json:"from_status"`
	ToStatus        EntryStatus `json:"to_status"`
	PostedBy        *uuid.UUID  `json:"posted_by,omitempty"`
}

// NewEntryPostedEvent creates a new EntryPostedEvent
func NewEntryPostedEvent(e *LedgerEntry, from EntryStatus) *EntryPostedEvent {
	return &EntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryPosted, AggregateTypeLedgerEntry, e.ID, e.CompanyID),
		EntryID:         e.ID,
		ReferenceNumber: e.ReferenceNumber,
		FromStatus:      from,
		ToStatus:        e.Status,
		PostedBy:        e.PostedBy,
	}
}

// EntryUnpostedEvent is raised when a posted entry is demoted back to draft
type EntryUnpostedEvent struct {
	shared.BaseDomainEvent
	EntryID         uuid.UUID   `json:"entry_id"`
	ReferenceNumber string      `json:"reference_number"`
	FromStatus      EntryStatus `json:"from_status"`
	ToStatus        EntryStatus `json:"to_status"`
	UnpostedBy      uuid.UUID   `json:"unposted_by"`
}

// NewEntryUnpostedEvent creates a new EntryUnpostedEvent
func NewEntryUnpostedEvent(e *LedgerEntry, from EntryStatus, actorID uuid.UUID) *EntryUnpostedEvent {
	return &EntryUnpostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryUnposted, AggregateTypeLedgerEntry, e.ID, e.CompanyID),
		EntryID:         e.ID,
		ReferenceNumber: e.ReferenceNumber,
		FromStatus:      from,
		ToStatus:        e.Status,
		UnpostedBy:      actorID,
	}
}

// EntryReversedEvent is raised on the original entry when its compensating
// entry is created
type EntryReversedEvent struct {
	shared.BaseDomainEvent
	EntryID         uuid.UUID   `json:"entry_id"`
	ReferenceNumber string      `json:"reference_number"`
	FromStatus      EntryStatus `json:"from_status"`
	ToStatus        EntryStatus `json:"to_status"`
	ReversalEntryID uuid.UUID   `json:"reversal_entry_id"`
	Reason          string      `json:"reason"`
}

// NewEntryReversedEvent creates a new EntryReversedEvent
func NewEntryReversedEvent(e *LedgerEntry, from EntryStatus, reversalID uuid.UUID, reason string) *EntryReversedEvent {
	return &EntryReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryReversed, AggregateTypeLedgerEntry, e.ID, e.CompanyID),
		EntryID:         e.ID,
		ReferenceNumber: e.ReferenceNumber,
		FromStatus:      from,
		ToStatus:        e.Status,
		ReversalEntryID: reversalID,
		Reason:          reason,
	}
}
