package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// AccountFilter defines filtering options for chart-of-accounts queries
type AccountFilter struct {
	shared.Filter
	Tier     *AccountTier // Filter by tier
	ParentID *uuid.UUID   // Filter by parent node
	Active   *bool        // Filter by active flag
}

// AccountRepository defines the persistence interface of the Account Registry
type AccountRepository interface {
	// FindByID finds an account by ID for a company
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Account, error)

	// FindByCode finds an account by business code for a company
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*Account, error)

	// FindChildren finds the direct children of a node, ordered by code
	FindChildren(ctx context.Context, companyID, parentID uuid.UUID) ([]Account, error)

	// FindAll finds accounts for a company with filtering
	FindAll(ctx context.Context, companyID uuid.UUID, filter AccountFilter) ([]Account, error)

	// Count counts accounts for a company with filtering
	Count(ctx context.Context, companyID uuid.UUID, filter AccountFilter) (int64, error)

	// ExistsByCode checks code uniqueness within a tier for a company
	ExistsByCode(ctx context.Context, companyID uuid.UUID, tier AccountTier, code string) (bool, error)

	// HasLines reports whether any ledger line references the account
	HasLines(ctx context.Context, accountID uuid.UUID) (bool, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error
}

// EntryFilter defines filtering options for ledger entry queries
type EntryFilter struct {
	shared.Filter
	Status    *EntryStatus // Filter by lifecycle state
	Type      *EntryType   // Filter by origin
	AccountID *uuid.UUID   // Filter entries touching an account
	FromDate  *time.Time   // Filter by effective date range start
	ToDate    *time.Time   // Filter by effective date range end (exclusive)
}

// LedgerEntryRepository defines the persistence interface of the Ledger Entry
// Engine. Lines are always loaded and written through their entry.
type LedgerEntryRepository interface {
	// FindByID finds an entry with its lines for a company
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*LedgerEntry, error)

	// FindByReferenceNumber finds an entry by its reference number
	FindByReferenceNumber(ctx context.Context, companyID uuid.UUID, referenceNumber string) (*LedgerEntry, error)

	// FindAll finds entries (without lines) for a company with filtering
	FindAll(ctx context.Context, companyID uuid.UUID, filter EntryFilter) ([]LedgerEntry, error)

	// Count counts entries for a company with filtering
	Count(ctx context.Context, companyID uuid.UUID, filter EntryFilter) (int64, error)

	// CountByStatusInRange counts entries in a status with an effective date
	// in [from, to). Used to find drafts blocking a period close.
	CountByStatusInRange(ctx context.Context, companyID uuid.UUID, status EntryStatus, from, to time.Time) (int64, error)

	// FindEarliestEffectiveDate returns the earliest effective date of any
	// entry dated strictly before the bound, nil when there is none. Marks
	// where the company's bookkeeping activity starts.
	FindEarliestEffectiveDate(ctx context.Context, companyID uuid.UUID, before time.Time) (*time.Time, error)

	// Create persists a new entry and its lines atomically. A reference
	// number collision surfaces as shared.ErrConcurrencyConflict.
	Create(ctx context.Context, entry *LedgerEntry) error

	// SaveWithLock updates an entry header with an optimistic version check.
	// Returns shared.ErrConcurrencyConflict when the version is stale.
	SaveWithLock(ctx context.Context, entry *LedgerEntry) error

	// ReplaceLines rewrites the stored lines of an entry from the aggregate.
	// Called next to SaveWithLock when a draft edit changed the lines.
	ReplaceLines(ctx context.Context, entry *LedgerEntry) error

	// GenerateReferenceNumber generates the next sequential reference number
	// scoped to company and fiscal period. Must be called inside the creating
	// transaction.
	GenerateReferenceNumber(ctx context.Context, companyID uuid.UUID, period YearMonth) (string, error)
}

// FiscalPeriodRepository defines the persistence interface of the Period Lock
// Manager
type FiscalPeriodRepository interface {
	// FindByID finds a period by ID for a company
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*FiscalPeriod, error)

	// FindByMonth finds the period row for a month, nil when absent
	FindByMonth(ctx context.Context, companyID uuid.UUID, ym YearMonth) (*FiscalPeriod, error)

	// FindByMonthForUpdate finds the period row holding a row lock for the
	// duration of the surrounding transaction
	FindByMonthForUpdate(ctx context.Context, companyID uuid.UUID, ym YearMonth) (*FiscalPeriod, error)

	// FindLatestClosed returns the most recent CLOSED period of the company,
	// nil when nothing has been closed yet. Marks the closed frontier that
	// new activity may not fall behind.
	FindLatestClosed(ctx context.Context, companyID uuid.UUID) (*FiscalPeriod, error)

	// FindByYear returns all period rows of a fiscal year ordered by month
	FindByYear(ctx context.Context, companyID uuid.UUID, year int) ([]FiscalPeriod, error)

	// FindAll returns all period rows of a company ordered chronologically
	FindAll(ctx context.Context, companyID uuid.UUID) ([]FiscalPeriod, error)

	// Save creates or updates a period row
	Save(ctx context.Context, period *FiscalPeriod) error
}
