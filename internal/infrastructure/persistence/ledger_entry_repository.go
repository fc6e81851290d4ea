package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// FindByID finds an entry with its lines for a company
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByReferenceNumber finds an entry with its lines by reference number
func (r *GormLedgerEntryRepository) FindByReferenceNumber(ctx context.Context, companyID uuid.UUID, referenceNumber string) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("company_id = ? AND reference_number = ?", companyID, referenceNumber).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAll finds entry headers for a company with filtering. Lines are not
// loaded; use FindByID for the full entry.
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}).Where("ledger_entries.company_id = ?", companyID),
		filter,
	)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts entries for a company with filtering
func (r *GormLedgerEntryRepository) Count(ctx context.Context, companyID uuid.UUID, filter ledger.EntryFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}).Where("ledger_entries.company_id = ?", companyID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatusInRange counts entries in a status with an effective date in [from, to)
func (r *GormLedgerEntryRepository) CountByStatusInRange(ctx context.Context, companyID uuid.UUID, status ledger.EntryStatus, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("company_id = ? AND status = ? AND effective_date >= ? AND effective_date < ?",
			companyID, status, from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new entry and its lines atomically. A duplicate reference
// number means another transaction took the same sequence slot, which the
// caller retries as a concurrency conflict.
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrConcurrencyConflict
	}
	return err
}

// SaveWithLock updates an entry header with an optimistic version check.
// The aggregate has already incremented its version in memory, so the row
// must still hold the previous version for the update to apply.
func (r *GormLedgerEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry) error {
	entry.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
		Updates(map[string]interface{}{
			"description":          entry.Description,
			"effective_date":       entry.EffectiveDate,
			"total_debit":          entry.TotalDebit,
			"total_credit":         entry.TotalCredit,
			"status":               entry.Status,
			"reversal_of_entry_id": entry.ReversalOfEntryID,
			"reversed_by_entry_id": entry.ReversedByEntryID,
			"reversal_reason":      entry.ReversalReason,
			"posted_by":            entry.PostedBy,
			"posted_at":            entry.PostedAt,
			"version":              entry.Version,
			"updated_at":           entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ReplaceLines rewrites the stored lines of an entry from the aggregate.
// Rows are deleted and reinserted so removed lines do not linger.
func (r *GormLedgerEntryRepository) ReplaceLines(ctx context.Context, entry *ledger.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ledger_entry_id = ?", entry.ID).
			Delete(&ledger.LedgerLine{}).Error; err != nil {
			return err
		}
		if len(entry.Lines) == 0 {
			return nil
		}
		return tx.Create(&entry.Lines).Error
	})
}

// FindEarliestEffectiveDate returns the earliest effective date of any entry
// dated strictly before the bound, nil when the company has no such entry
func (r *GormLedgerEntryRepository) FindEarliestEffectiveDate(ctx context.Context, companyID uuid.UUID, before time.Time) (*time.Time, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND effective_date < ?", companyID, before).
		Order("effective_date ASC").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry.EffectiveDate, nil
}

// GenerateReferenceNumber generates the next LE-<year><month>-NNNNNN number
// scoped to company and fiscal period. Called inside the creating transaction
// so concurrent creates in the same period serialize on the unique index.
func (r *GormLedgerEntryRepository) GenerateReferenceNumber(ctx context.Context, companyID uuid.UUID, period ledger.YearMonth) (string, error) {
	prefix := fmt.Sprintf("LE-%04d%02d-", period.Year, period.Month)

	var lastRef string
	err := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("company_id = ? AND reference_number LIKE ?", companyID, prefix+"%").
		Order("reference_number DESC").
		Limit(1).
		Pluck("reference_number", &lastRef).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastRef != "" {
		suffix := strings.TrimPrefix(lastRef, prefix)
		var num int64
		if _, parseErr := fmt.Sscanf(suffix, "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	return fmt.Sprintf("%s%06d", prefix, nextNum), nil
}

func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, EntrySortFields, "effective_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir, "DESC"))

	return query
}

func (r *GormLedgerEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("reference_number ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.AccountID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM ledger_lines WHERE ledger_lines.ledger_entry_id = ledger_entries.id AND ledger_lines.account_id = ?)",
			*filter.AccountID,
		)
	}
	if filter.FromDate != nil {
		query = query.Where("effective_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("effective_date < ?", *filter.ToDate)
	}
	return query
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ ledger.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
