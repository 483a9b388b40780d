package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"asc", "ASC"},
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"ASC; DROP TABLE ledger_entries", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "amount", ValidateSortField(" amount ", LedgerSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", LedgerSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("paid_by", LedgerSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("amount; DELETE FROM ledger_entries", LedgerSortFields, "created_at"))
}
