package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC, falling
// back to defaultDir when the input is empty or invalid.
func ValidateSortOrder(orderDir, defaultDir string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return defaultDir
}

// ValidateSortField validates the sort field against a whitelist of allowed
// columns. Returns defaultField when the input is empty or not allowed. Sort
// fields reach ORDER BY unquoted, so anything outside the whitelist is
// rejected.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// AccountSortFields contains allowed sort fields for chart-of-accounts queries
var AccountSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"tier":       true,
	"is_active":  true,
}

// EntrySortFields contains allowed sort fields for ledger entry queries
var EntrySortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"reference_number": true,
	"effective_date":   true,
	"type":             true,
	"status":           true,
	"total_debit":      true,
	"total_credit":     true,
	"posted_at":        true,
}

// PeriodSortFields contains allowed sort fields for fiscal period queries
var PeriodSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"year":       true,
	"month":      true,
	"status":     true,
	"closed_at":  true,
}

// AuditRecordSortFields contains allowed sort fields for audit trail queries
var AuditRecordSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"occurred_at":    true,
	"event_type":     true,
	"aggregate_type": true,
}
