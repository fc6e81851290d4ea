package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// ReversalDating selects the effective date of compensating entries
type ReversalDating string

const (
	// ReversalDatingOriginal dates the reversal on the original entry's
	// effective date, keeping each month's net effect at zero.
	ReversalDatingOriginal ReversalDating = "original"
	// ReversalDatingToday dates the reversal on the day it is made.
	ReversalDatingToday ReversalDating = "today"
)

// IsValid checks if the policy is known
func (d ReversalDating) IsValid() bool {
	return d == ReversalDatingOriginal || d == ReversalDatingToday
}

// ReversalService builds compensating entries for posted ledger entries.
// The compensating entry swaps debit and credit per line, so the net effect
// on every touched account is exactly zero.
type ReversalService struct {
	dating ReversalDating
	now    func() time.Time
}

// ReversalServiceOption is a functional option for configuring ReversalService
type ReversalServiceOption func(*ReversalService)

// WithReversalDating sets the dating policy for compensating entries
func WithReversalDating(dating ReversalDating) ReversalServiceOption {
	return func(s *ReversalService) {
		if dating.IsValid() {
			s.dating = dating
		}
	}
}

// WithClock overrides the time source (used by tests)
func WithClock(now func() time.Time) ReversalServiceOption {
	return func(s *ReversalService) {
		s.now = now
	}
}

// NewReversalService creates a ReversalService, dating reversals on the
// original entry's date unless configured otherwise.
func NewReversalService(opts ...ReversalServiceOption) *ReversalService {
	s := &ReversalService{
		dating: ReversalDatingOriginal,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dating returns the configured dating policy
func (s *ReversalService) Dating() ReversalDating {
	return s.dating
}

// EffectiveDate returns the date the compensating entry for original will
// carry under the configured policy. Callers check the period lock for this
// date before building the reversal.
func (s *ReversalService) EffectiveDate(original *LedgerEntry) time.Time {
	if s.dating == ReversalDatingToday {
		return s.now()
	}
	return original.EffectiveDate
}

// BuildReversal constructs the compensating entry for a posted original and
// links the two bidirectionally. The reversal is returned in DRAFT state; the
// engine posts it immediately in the same transaction that persists it.
func (s *ReversalService) BuildReversal(original *LedgerEntry, reason string, actorID uuid.UUID) (*LedgerEntry, error) {
	if original.Status != EntryStatusPosted {
		return nil, NewNotPostedError(original.Status)
	}
	if original.ReversedByEntryID != nil {
		return nil, NewAlreadyReversedError(original.ReferenceNumber)
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}

	lines := make([]LineInput, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = LineInput{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Debit:       l.CreditAmount,
			Credit:      l.DebitAmount,
			Description: l.Description,
			CostCenter:  l.CostCenter,
			ProjectCode: l.ProjectCode,
		}
	}

	reversal, err := NewLedgerEntry(
		original.CompanyID,
		original.FranchiseID,
		EntryTypeReversal,
		"Reversal of "+original.ReferenceNumber+": "+reason,
		s.EffectiveDate(original),
		actorID,
		lines,
	)
	if err != nil {
		return nil, err
	}

	originalID := original.ID
	reversal.ReversalOfEntryID = &originalID
	reversal.ReversalReason = reason

	if err := original.MarkReversed(reversal.ID, reason); err != nil {
		return nil, err
	}

	return reversal, nil
}
