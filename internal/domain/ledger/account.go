package ledger

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// AccountTier represents a level of the four-tier chart of accounts
type AccountTier string

const (
	TierClass     AccountTier = "CLASS"     // e.g. "4" - third party accounts
	TierGroup     AccountTier = "GROUP"     // e.g. "40" - suppliers and related
	TierSynthetic AccountTier = "SYNTHETIC" // e.g. "401" - suppliers
	TierAnalytic  AccountTier = "ANALYTIC"  // e.g. "401.01" - a specific supplier
)

// IsValid checks if the tier is a known AccountTier
func (t AccountTier) IsValid() bool {
	switch t {
	case TierClass, TierGroup, TierSynthetic, TierAnalytic:
		return true
	}
	return false
}

// String returns the string representation of AccountTier
func (t AccountTier) String() string {
	return string(t)
}

// ParentTier returns the tier immediately above, or empty for CLASS
func (t AccountTier) ParentTier() AccountTier {
	switch t {
	case TierGroup:
		return TierClass
	case TierSynthetic:
		return TierGroup
	case TierAnalytic:
		return TierSynthetic
	}
	return ""
}

// IsPostable returns true if ledger lines may reference accounts of this tier.
// Classes and groups exist for classification only.
func (t AccountTier) IsPostable() bool {
	return t == TierSynthetic || t == TierAnalytic
}

var accountCodePattern = regexp.MustCompile(`^[0-9]{1,4}(\.[0-9A-Za-z]{1,10})?$`)

// ValidAccountCode reports whether code has the shape of a chart-of-accounts
// code ("4", "40", "401", "401.01").
func ValidAccountCode(code string) bool {
	return accountCodePattern.MatchString(code)
}

// Account represents one node of the chart of accounts.
// Codes are immutable once any ledger line references the account; accounts
// are deactivated rather than deleted so historical lines keep resolving.
type Account struct {
	shared.CompanyAggregateRoot
	Tier     AccountTier `json:"tier"`
	Code     string      `json:"code"`
	ParentID *uuid.UUID  `json:"parent_id,omitempty"`
	Name     string      `json:"name"`
	IsActive bool        `json:"is_active"`
}

// NewAccount creates a new chart-of-accounts node.
// The caller (Account Registry) is responsible for verifying that the parent
// exists and that the code is unique within the tier; this constructor
// enforces the shape invariants that need no repository access.
func NewAccount(companyID uuid.UUID, tier AccountTier, code, name string, parentID *uuid.UUID) (*Account, error) {
	if !tier.IsValid() {
		return nil, shared.NewDomainError("INVALID_TIER", fmt.Sprintf("Unknown account tier %q", tier))
	}
	if !ValidAccountCode(code) {
		return nil, shared.NewDomainError("INVALID_CODE", fmt.Sprintf("Account code %q is not a valid chart-of-accounts code", code))
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if tier == TierClass && parentID != nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Class accounts are roots and cannot have a parent")
	}
	if tier != TierClass && parentID == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", fmt.Sprintf("%s accounts require a parent in tier %s", tier, tier.ParentTier()))
	}

	a := &Account{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Tier:                 tier,
		Code:                 code,
		ParentID:             parentID,
		Name:                 name,
		IsActive:             true,
	}

	a.AddDomainEvent(NewAccountCreatedEvent(a))

	return a, nil
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// Rename changes the human-readable name. The code never changes.
func (a *Account) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Deactivate soft-deletes the account. Historical lines keep referencing it;
// new lines are rejected by the engine.
func (a *Account) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Account %q is already deactivated", a.Code))
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountDeactivatedEvent(a))
	return nil
}

// Activate re-enables a deactivated account
func (a *Account) Activate() error {
	if a.IsActive {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", fmt.Sprintf("Account %q is already active", a.Code))
	}
	a.IsActive = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// AccountRefKind tags how an AccountRef identifies an account
type AccountRefKind int

const (
	// RefByID identifies an account by its UUID
	RefByID AccountRefKind = iota
	// RefByCode identifies an account by its business code
	RefByCode
)

// AccountRef is an explicit reference to an account, either by id or by code.
// It is resolved exactly once at the registry boundary; nothing downstream
// guesses what kind of identifier a string holds.
type AccountRef struct {
	kind AccountRefKind
	id   uuid.UUID
	code string
}

// ByID builds an AccountRef identifying an account by UUID
func ByID(id uuid.UUID) AccountRef {
	return AccountRef{kind: RefByID, id: id}
}

// ByCode builds an AccountRef identifying an account by its business code
func ByCode(code string) AccountRef {
	return AccountRef{kind: RefByCode, code: code}
}

// Kind returns how this reference identifies the account
func (r AccountRef) Kind() AccountRefKind {
	return r.kind
}

// ID returns the UUID of a by-id reference
func (r AccountRef) ID() uuid.UUID {
	return r.id
}

// Code returns the business code of a by-code reference
func (r AccountRef) Code() string {
	return r.code
}

// String returns a loggable representation
func (r AccountRef) String() string {
	if r.kind == RefByCode {
		return fmt.Sprintf("code %q", r.code)
	}
	return fmt.Sprintf("id %s", r.id)
}
