package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID for a company
func (r *GormAccountRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.Account, error) {
	var account ledger.Account
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByCode finds an account by its business code for a company
func (r *GormAccountRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*ledger.Account, error) {
	var account ledger.Account
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindChildren finds the direct children of a chart node, ordered by code
func (r *GormAccountRepository) FindChildren(ctx context.Context, companyID, parentID uuid.UUID) ([]ledger.Account, error) {
	var accounts []ledger.Account
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND parent_id = ?", companyID, parentID).
		Order("code ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindAll finds accounts for a company with filtering
func (r *GormAccountRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.AccountFilter) ([]ledger.Account, error) {
	var accounts []ledger.Account
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.Account{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Count counts accounts for a company with filtering
func (r *GormAccountRepository) Count(ctx context.Context, companyID uuid.UUID, filter ledger.AccountFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&ledger.Account{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks code uniqueness within a tier for a company
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, companyID uuid.UUID, tier ledger.AccountTier, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Account{}).
		Where("company_id = ? AND tier = ? AND code = ?", companyID, tier, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasLines reports whether any ledger line references the account
func (r *GormAccountRepository) HasLines(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.LedgerLine{}).
		Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *GormAccountRepository) applyFilter(query *gorm.DB, filter ledger.AccountFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AccountSortFields, "code")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir, "ASC"))

	return query
}

func (r *GormAccountRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.AccountFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	if filter.Tier != nil {
		query = query.Where("tier = ?", *filter.Tier)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	return query
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
