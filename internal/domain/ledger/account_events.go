package ledger

import (
	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// Aggregate type constant for Account
const AggregateTypeAccount = "Account"

// Event type constants for Account
const (
	EventTypeAccountCreated     = "AccountCreated"
	EventTypeAccountDeactivated = "AccountDeactivated"
)

// AccountCreatedEvent is raised when a chart-of-accounts node is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID   `json:"account_id"`
	Tier      AccountTier `json:"tier"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	ParentID  *uuid.UUID  `json:"parent_id,omitempty"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, a.ID, a.CompanyID),
		AccountID:       a.ID,
		Tier:            a.Tier,
		Code:            a.Code,
		Name:            a.Name,
		ParentID:        a.ParentID,
	}
}

// AccountDeactivatedEvent is raised when an account is soft-deleted
type AccountDeactivatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Code      string    `json:"code"`
}

// NewAccountDeactivatedEvent creates a new AccountDeactivatedEvent
func NewAccountDeactivatedEvent(a *Account) *AccountDeactivatedEvent {
	return &AccountDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountDeactivated, AggregateTypeAccount, a.ID, a.CompanyID),
		AccountID:       a.ID,
		Code:            a.Code,
	}
}
