package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFiscalPeriodRepository implements FiscalPeriodRepository using GORM
type GormFiscalPeriodRepository struct {
	db *gorm.DB
}

// NewGormFiscalPeriodRepository creates a new GormFiscalPeriodRepository
func NewGormFiscalPeriodRepository(db *gorm.DB) *GormFiscalPeriodRepository {
	return &GormFiscalPeriodRepository{db: db}
}

// FindByID finds a period by ID for a company
func (r *GormFiscalPeriodRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.FiscalPeriod, error) {
	var period ledger.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindByMonth finds the period row for a month, nil when absent
func (r *GormFiscalPeriodRepository) FindByMonth(ctx context.Context, companyID uuid.UUID, ym ledger.YearMonth) (*ledger.FiscalPeriod, error) {
	return r.findByMonth(ctx, r.db, companyID, ym)
}

// FindByMonthForUpdate finds the period row holding a row lock for the
// duration of the surrounding transaction. Posting into a month and closing
// that month serialize on this lock.
func (r *GormFiscalPeriodRepository) FindByMonthForUpdate(ctx context.Context, companyID uuid.UUID, ym ledger.YearMonth) (*ledger.FiscalPeriod, error) {
	return r.findByMonth(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), companyID, ym)
}

func (r *GormFiscalPeriodRepository) findByMonth(ctx context.Context, db *gorm.DB, companyID uuid.UUID, ym ledger.YearMonth) (*ledger.FiscalPeriod, error) {
	var period ledger.FiscalPeriod
	if err := db.WithContext(ctx).
		Where("company_id = ? AND year = ? AND month = ?", companyID, ym.Year, ym.Month).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindLatestClosed returns the most recent CLOSED period of the company, nil
// when nothing has been closed yet
func (r *GormFiscalPeriodRepository) FindLatestClosed(ctx context.Context, companyID uuid.UUID) (*ledger.FiscalPeriod, error) {
	var period ledger.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, ledger.PeriodStatusClosed).
		Order("year DESC, month DESC").
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindByYear returns all period rows of a fiscal year ordered by month
func (r *GormFiscalPeriodRepository) FindByYear(ctx context.Context, companyID uuid.UUID, year int) ([]ledger.FiscalPeriod, error) {
	var periods []ledger.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND year = ?", companyID, year).
		Order("month ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindAll returns all period rows of a company ordered chronologically
func (r *GormFiscalPeriodRepository) FindAll(ctx context.Context, companyID uuid.UUID) ([]ledger.FiscalPeriod, error) {
	var periods []ledger.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("year ASC, month ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// Save creates or updates a period row
func (r *GormFiscalPeriodRepository) Save(ctx context.Context, period *ledger.FiscalPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

// Ensure GormFiscalPeriodRepository implements FiscalPeriodRepository
var _ ledger.FiscalPeriodRepository = (*GormFiscalPeriodRepository)(nil)
