package ledger

import (
	"context"

	"github.com/ledgercore/backend/internal/domain/ledger"
)

// TransactionScope provides atomic execution of multiple repository
// operations. Entry creation, reversal and period closing all touch more
// than one row and must commit or roll back as a unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the bookkeeping repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Accounts returns the account repository scoped to the current transaction
	Accounts() ledger.AccountRepository
	// Entries returns the ledger entry repository scoped to the current transaction
	Entries() ledger.LedgerEntryRepository
	// Periods returns the fiscal period repository scoped to the current transaction
	Periods() ledger.FiscalPeriodRepository
}

// NoOpTransactionScope runs the function directly against the wrapped
// repositories without a transaction. Used in tests.
type NoOpTransactionScope struct {
	accountRepo ledger.AccountRepository
	entryRepo   ledger.LedgerEntryRepository
	periodRepo  ledger.FiscalPeriodRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	accountRepo ledger.AccountRepository,
	entryRepo ledger.LedgerEntryRepository,
	periodRepo ledger.FiscalPeriodRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		periodRepo:  periodRepo,
	}
}

// Execute runs fn without transactional guarantees
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Accounts returns the wrapped account repository
func (s *NoOpTransactionScope) Accounts() ledger.AccountRepository {
	return s.accountRepo
}

// Entries returns the wrapped ledger entry repository
func (s *NoOpTransactionScope) Entries() ledger.LedgerEntryRepository {
	return s.entryRepo
}

// Periods returns the wrapped fiscal period repository
func (s *NoOpTransactionScope) Periods() ledger.FiscalPeriodRepository {
	return s.periodRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
