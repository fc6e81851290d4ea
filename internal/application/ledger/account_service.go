package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// AccountService provides application-level chart-of-accounts operations
type AccountService struct {
	accountRepo ledger.AccountRepository
	eventBus    shared.EventBus
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo ledger.AccountRepository, eventBus shared.EventBus) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		eventBus:    eventBus,
	}
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID uuid.UUID  `json:"company_id"`
	Tier      string     `json:"tier"`
	Code      string     `json:"code"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	IsActive  bool       `json:"is_active"`
	Postable  bool       `json:"postable"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

func toAccountResponse(a *ledger.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		CompanyID: a.CompanyID,
		Tier:      a.Tier.String(),
		Code:      a.Code,
		ParentID:  a.ParentID,
		Name:      a.Name,
		IsActive:  a.IsActive,
		Postable:  a.Tier.IsPostable(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

// CreateAccountRequest represents a request to create a chart-of-accounts node
type CreateAccountRequest struct {
	Tier   string            `json:"tier" binding:"required"`
	Code   string            `json:"code" binding:"required,account_code"`
	Name   string            `json:"name" binding:"required"`
	Parent *ledger.AccountRef `json:"-"` // Resolved from parent_id / parent_code by the handler
}

// AccountListFilter defines filtering options for account list queries
type AccountListFilter struct {
	Search   string `form:"search"`
	Tier     string `form:"tier"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CreateAccount creates a new chart-of-accounts node. The declared parent
// must exist and sit exactly one tier above; codes are unique within a tier.
func (s *AccountService) CreateAccount(ctx context.Context, companyID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	tier := ledger.AccountTier(req.Tier)
	if !tier.IsValid() {
		return nil, shared.NewDomainError("INVALID_TIER", "Unknown account tier "+req.Tier)
	}

	exists, err := s.accountRepo.ExistsByCode(ctx, companyID, tier, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ledger.NewDuplicateCodeError(req.Code, tier)
	}

	var parentID *uuid.UUID
	if tier != ledger.TierClass {
		if req.Parent == nil {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent account is required for tier "+req.Tier)
		}
		parent, err := s.resolve(ctx, companyID, *req.Parent)
		if err != nil {
			if isNotFound(err) {
				return nil, ledger.NewParentNotFoundError(*req.Parent)
			}
			return nil, err
		}
		if parent.Tier != tier.ParentTier() {
			return nil, ledger.NewInvalidParentTierError(tier, parent.Tier)
		}
		parentID = &parent.ID
	}

	account, err := ledger.NewAccount(companyID, tier, req.Code, req.Name, parentID)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, account)

	return toAccountResponse(account), nil
}

// GetAccount resolves an account reference to the full account
func (s *AccountService) GetAccount(ctx context.Context, companyID uuid.UUID, ref ledger.AccountRef) (*AccountResponse, error) {
	account, err := s.resolve(ctx, companyID, ref)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// ListAccounts lists accounts with filtering
func (s *AccountService) ListAccounts(ctx context.Context, companyID uuid.UUID, filter AccountListFilter) ([]AccountResponse, int64, error) {
	domainFilter := ledger.AccountFilter{
		Active: filter.Active,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Tier != "" {
		tier := ledger.AccountTier(filter.Tier)
		domainFilter.Tier = &tier
	}

	accounts, err := s.accountRepo.FindAll(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.Count(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = *toAccountResponse(&accounts[i])
	}
	return responses, total, nil
}

// ListChildren lists the direct children of a node, ordered by code
func (s *AccountService) ListChildren(ctx context.Context, companyID uuid.UUID, ref ledger.AccountRef) ([]AccountResponse, error) {
	parent, err := s.resolve(ctx, companyID, ref)
	if err != nil {
		return nil, err
	}

	children, err := s.accountRepo.FindChildren(ctx, companyID, parent.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]AccountResponse, len(children))
	for i := range children {
		responses[i] = *toAccountResponse(&children[i])
	}
	return responses, nil
}

// RenameAccount changes the display name of an account. Codes never change.
func (s *AccountService) RenameAccount(ctx context.Context, companyID uuid.UUID, ref ledger.AccountRef, name string) (*AccountResponse, error) {
	account, err := s.resolve(ctx, companyID, ref)
	if err != nil {
		return nil, err
	}
	if err := account.Rename(name); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// DeactivateAccount soft-deletes an account. Historical lines keep resolving;
// new lines against it are rejected by the entry engine.
func (s *AccountService) DeactivateAccount(ctx context.Context, companyID uuid.UUID, ref ledger.AccountRef) (*AccountResponse, error) {
	account, err := s.resolve(ctx, companyID, ref)
	if err != nil {
		return nil, err
	}
	if err := account.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, account)

	return toAccountResponse(account), nil
}

// ActivateAccount re-enables a deactivated account
func (s *AccountService) ActivateAccount(ctx context.Context, companyID uuid.UUID, ref ledger.AccountRef) (*AccountResponse, error) {
	account, err := s.resolve(ctx, companyID, ref)
	if err != nil {
		return nil, err
	}
	if err := account.Activate(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// resolve looks up an account by reference, translating absence into
// ACCOUNT_NOT_FOUND
func (s *AccountService) resolve(ctx context.Context, companyID uuid.UUID, ref ledger.AccountRef) (*ledger.Account, error) {
	return resolveAccount(ctx, s.accountRepo, companyID, ref)
}

// resolveAccount resolves an AccountRef against a repository. The ref kind
// dictates the lookup; nothing sniffs identifier shapes.
func resolveAccount(ctx context.Context, repo ledger.AccountRepository, companyID uuid.UUID, ref ledger.AccountRef) (*ledger.Account, error) {
	var (
		account *ledger.Account
		err     error
	)
	switch ref.Kind() {
	case ledger.RefByID:
		account, err = repo.FindByID(ctx, companyID, ref.ID())
	case ledger.RefByCode:
		account, err = repo.FindByCode(ctx, companyID, ref.Code())
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown account reference kind")
	}
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ledger.NewAccountNotFoundError(ref)
	}
	return account, nil
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ledger.ErrCodeAccountNotFound || domainErr.Code == "NOT_FOUND"
	}
	return false
}

func (s *AccountService) publishEvents(ctx context.Context, account *ledger.Account) {
	if s.eventBus == nil {
		return
	}
	for _, event := range account.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	account.ClearDomainEvents()
}
