package ledger

import (
	"fmt"

	"github.com/ledgercore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Error codes for the ledger domain. The HTTP boundary maps these to status
// codes; nothing below the boundary knows about HTTP.
const (
	ErrCodeUnbalancedEntry         = "UNBALANCED_ENTRY"
	ErrCodeDuplicateCode           = "DUPLICATE_CODE"
	ErrCodeInvalidParentTier       = "INVALID_PARENT_TIER"
	ErrCodeParentNotFound          = "PARENT_NOT_FOUND"
	ErrCodeAccountNotFound         = "ACCOUNT_NOT_FOUND"
	ErrCodeInactiveAccount         = "INACTIVE_ACCOUNT"
	ErrCodeInvalidStateTransition  = "INVALID_STATE_TRANSITION"
	ErrCodeNotPosted               = "NOT_POSTED"
	ErrCodeAlreadyReversed         = "ALREADY_REVERSED"
	ErrCodePeriodClosed            = "PERIOD_CLOSED"
	ErrCodePriorPeriodOpen         = "PRIOR_PERIOD_OPEN"
	ErrCodeOutstandingDraftEntries = "OUTSTANDING_DRAFT_ENTRIES"
	ErrCodeAlreadyClosed           = "ALREADY_CLOSED"
	ErrCodeConcurrentModification  = "CONCURRENT_MODIFICATION"
)

// NewUnbalancedEntryError reports a violated balance invariant carrying both totals
func NewUnbalancedEntryError(totalDebit, totalCredit decimal.Decimal) *shared.DomainError {
	return shared.NewDomainError(ErrCodeUnbalancedEntry,
		fmt.Sprintf("Entry is not balanced: total debit %s does not equal total credit %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2)))
}

// NewDuplicateCodeError reports a code collision within a tier
func NewDuplicateCodeError(code string, tier AccountTier) *shared.DomainError {
	return shared.NewDomainError(ErrCodeDuplicateCode,
		fmt.Sprintf("Account code %q already exists in tier %s", code, tier))
}

// NewInvalidParentTierError reports a parent that is not one tier above the child
func NewInvalidParentTierError(child, parent AccountTier) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidParentTier,
		fmt.Sprintf("Account of tier %s cannot have a parent of tier %s", child, parent))
}

// NewParentNotFoundError reports a missing declared parent
func NewParentNotFoundError(ref AccountRef) *shared.DomainError {
	return shared.NewDomainError(ErrCodeParentNotFound,
		fmt.Sprintf("Parent account %s does not exist", ref))
}

// NewAccountNotFoundError reports an unresolvable account reference
func NewAccountNotFoundError(ref AccountRef) *shared.DomainError {
	return shared.NewDomainError(ErrCodeAccountNotFound,
		fmt.Sprintf("Account %s does not exist", ref))
}

// NewInactiveAccountError reports a line referencing a deactivated account
func NewInactiveAccountError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInactiveAccount,
		fmt.Sprintf("Account %q is deactivated and cannot accept new lines", code))
}

// NewInvalidStateTransitionError reports an illegal state machine move
func NewInvalidStateTransitionError(from, to EntryStatus) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidStateTransition,
		fmt.Sprintf("Cannot transition entry from %s to %s", from, to))
}

// NewNotPostedError reports a reversal attempt on a non-posted entry
func NewNotPostedError(status EntryStatus) *shared.DomainError {
	return shared.NewDomainError(ErrCodeNotPosted,
		fmt.Sprintf("Only posted entries can be reversed, entry is %s", status))
}

// NewAlreadyReversedError reports a second reversal attempt
func NewAlreadyReversedError(referenceNumber string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeAlreadyReversed,
		fmt.Sprintf("Entry %s has already been reversed", referenceNumber))
}

// NewPeriodClosedError reports a posting attempt into a locked period
func NewPeriodClosedError(year, month int) *shared.DomainError {
	return shared.NewDomainError(ErrCodePeriodClosed,
		fmt.Sprintf("Fiscal period %04d-%02d is closed", year, month))
}

// NewPriorPeriodOpenError reports an out-of-order close attempt
func NewPriorPeriodOpenError(year, month, openYear, openMonth int) *shared.DomainError {
	return shared.NewDomainError(ErrCodePriorPeriodOpen,
		fmt.Sprintf("Cannot close %04d-%02d while %04d-%02d is still open", year, month, openYear, openMonth))
}

// NewOutstandingDraftEntriesError reports drafts blocking a period close
func NewOutstandingDraftEntriesError(year, month int, count int64) *shared.DomainError {
	return shared.NewDomainError(ErrCodeOutstandingDraftEntries,
		fmt.Sprintf("Cannot close %04d-%02d: %d draft entries remain in the period", year, month, count))
}

// NewAlreadyClosedError reports a close attempt on a closed period
func NewAlreadyClosedError(year, month int) *shared.DomainError {
	return shared.NewDomainError(ErrCodeAlreadyClosed,
		fmt.Sprintf("Fiscal period %04d-%02d is already closed", year, month))
}
