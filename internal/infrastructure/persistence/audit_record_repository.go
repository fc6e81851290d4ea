package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormAuditRecordRepository implements AuditRecordRepository using GORM.
// Audit records are append-only; there is no update or delete path.
type GormAuditRecordRepository struct {
	db *gorm.DB
}

// NewGormAuditRecordRepository creates a new GormAuditRecordRepository
func NewGormAuditRecordRepository(db *gorm.DB) *GormAuditRecordRepository {
	return &GormAuditRecordRepository{db: db}
}

// Save persists an audit record
func (r *GormAuditRecordRepository) Save(ctx context.Context, record *ledger.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindAll finds audit records for a company with filtering, newest first
func (r *GormAuditRecordRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.AuditRecordFilter) ([]ledger.AuditRecord, error) {
	var records []ledger.AuditRecord
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&ledger.AuditRecord{}).Where("company_id = ?", companyID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AuditRecordSortFields, "occurred_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir, "DESC"))

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count counts audit records for a company with filtering
func (r *GormAuditRecordRepository) Count(ctx context.Context, companyID uuid.UUID, filter ledger.AuditRecordFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&ledger.AuditRecord{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAuditRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.AuditRecordFilter) *gorm.DB {
	if filter.EventType != nil {
		query = query.Where("event_type = ?", *filter.EventType)
	}
	if filter.AggregateID != nil {
		query = query.Where("aggregate_id = ?", *filter.AggregateID)
	}
	if filter.FromDate != nil {
		query = query.Where("occurred_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("occurred_at < ?", *filter.ToDate)
	}
	return query
}

// Ensure GormAuditRecordRepository implements AuditRecordRepository
var _ ledger.AuditRecordRepository = (*GormAuditRecordRepository)(nil)
