package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField.
// Sort columns are interpolated into ORDER BY, so only whitelisted names pass.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LedgerSortFields contains allowed sort fields for ledger entries
var LedgerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"period_key": true,
	"amount":     true,
	"charge_key": true,
	"valid_from": true,
}
