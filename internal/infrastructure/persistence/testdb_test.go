package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerTestDB creates an in-memory SQLite database with the
// bookkeeping schema for repository tests.
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE accounts (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			company_id TEXT NOT NULL,
			created_by TEXT,
			tier TEXT NOT NULL,
			code TEXT NOT NULL,
			parent_id TEXT,
			name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			UNIQUE(company_id, tier, code)
		)`,
		`CREATE TABLE ledger_entries (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			company_id TEXT NOT NULL,
			created_by TEXT,
			franchise_id TEXT,
			type TEXT NOT NULL,
			reference_number TEXT NOT NULL DEFAULT '',
			description TEXT,
			effective_date DATETIME NOT NULL,
			total_debit NUMERIC NOT NULL,
			total_credit NUMERIC NOT NULL,
			status TEXT NOT NULL,
			reversal_of_entry_id TEXT,
			reversed_by_entry_id TEXT,
			reversal_reason TEXT,
			posted_by TEXT,
			posted_at DATETIME,
			UNIQUE(company_id, reference_number)
		)`,
		`CREATE TABLE ledger_lines (
			id TEXT PRIMARY KEY,
			ledger_entry_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			account_id TEXT NOT NULL,
			account_code TEXT NOT NULL,
			debit_amount NUMERIC NOT NULL,
			credit_amount NUMERIC NOT NULL,
			description TEXT,
			cost_center TEXT,
			project_code TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE fiscal_periods (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			company_id TEXT NOT NULL,
			created_by TEXT,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			status TEXT NOT NULL,
			closed_at DATETIME,
			closed_by TEXT,
			UNIQUE(company_id, year, month)
		)`,
		`CREATE TABLE audit_records (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			detail TEXT,
			occurred_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}
