package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.Account, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*ledger.Account, error) {
	args := m.Called(ctx, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindChildren(ctx context.Context, companyID, parentID uuid.UUID) ([]ledger.Account, error) {
	args := m.Called(ctx, companyID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.AccountFilter) ([]ledger.Account, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) Count(ctx context.Context, companyID uuid.UUID, filter ledger.AccountFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ExistsByCode(ctx context.Context, companyID uuid.UUID, tier ledger.AccountTier, code string) (bool, error) {
	args := m.Called(ctx, companyID, tier, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) HasLines(ctx context.Context, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindByReferenceNumber(ctx context.Context, companyID uuid.UUID, referenceNumber string) (*ledger.LedgerEntry, error) {
	args := m.Called(ctx, companyID, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) Count(ctx context.Context, companyID uuid.UUID, filter ledger.EntryFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerEntryRepository) CountByStatusInRange(ctx context.Context, companyID uuid.UUID, status ledger.EntryStatus, from, to time.Time) (int64, error) {
	args := m.Called(ctx, companyID, status, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) ReplaceLines(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) FindEarliestEffectiveDate(ctx context.Context, companyID uuid.UUID, before time.Time) (*time.Time, error) {
	args := m.Called(ctx, companyID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockLedgerEntryRepository) GenerateReferenceNumber(ctx context.Context, companyID uuid.UUID, period ledger.YearMonth) (string, error) {
	args := m.Called(ctx, companyID, period)
	return args.String(0), args.Error(1)
}

// MockFiscalPeriodRepository is a mock implementation of FiscalPeriodRepository
type MockFiscalPeriodRepository struct {
	mock.Mock
}

func (m *MockFiscalPeriodRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.FiscalPeriod, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindByMonth(ctx context.Context, companyID uuid.UUID, ym ledger.YearMonth) (*ledger.FiscalPeriod, error) {
	args := m.Called(ctx, companyID, ym)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindByMonthForUpdate(ctx context.Context, companyID uuid.UUID, ym ledger.YearMonth) (*ledger.FiscalPeriod, error) {
	args := m.Called(ctx, companyID, ym)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindLatestClosed(ctx context.Context, companyID uuid.UUID) (*ledger.FiscalPeriod, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindByYear(ctx context.Context, companyID uuid.UUID, year int) ([]ledger.FiscalPeriod, error) {
	args := m.Called(ctx, companyID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindAll(ctx context.Context, companyID uuid.UUID) ([]ledger.FiscalPeriod, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) Save(ctx context.Context, period *ledger.FiscalPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

// MockAuditRecordRepository is a mock implementation of AuditRecordRepository
type MockAuditRecordRepository struct {
	mock.Mock
}

func (m *MockAuditRecordRepository) Save(ctx context.Context, record *ledger.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRecordRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.AuditRecordFilter) ([]ledger.AuditRecord, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.AuditRecord), args.Error(1)
}

func (m *MockAuditRecordRepository) Count(ctx context.Context, companyID uuid.UUID, filter ledger.AuditRecordFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventBus is a mock implementation of EventBus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	m.Called(handler, eventTypes)
}

func (m *MockEventBus) Unsubscribe(handler shared.EventHandler) {
	m.Called(handler)
}
