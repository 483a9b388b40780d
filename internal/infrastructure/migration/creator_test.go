package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add ledger index", "add_ledger_index"},
		{"Add-Ledger-Index", "add_ledger_index"},
		{"ADD__LEDGER__INDEX", "add_ledger_index"},
		{"  padded  ", "padded"},
		{"vat!@#rate", "vatrate"},
		{"trailing_", "trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_prior.up.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_prior.down.sql"), nil, 0o644))

	mf, err := CreateMigration(dir, "Add late fee", "Adds a late fee column")
	require.NoError(t, err)

	assert.Equal(t, uint(5), mf.Version)
	assert.Equal(t, "000005_add_late_fee.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000005_add_late_fee.down.sql", filepath.Base(mf.DownPath))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Adds a late fee column")
	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback of Add late fee")
}

func TestCreateMigration_EmptyDirectoryStartsAtOne(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	mf, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), mf.Version)
	assert.True(t, strings.HasPrefix(filepath.Base(mf.UpPath), "000001_init"))
}

func TestCreateMigration_RejectsBlankName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_billing.up.sql":       {},
		"000002_billing.down.sql":     {},
		"000001_master_data.up.sql":   {},
		"README.md":                   {},
		"notes.sql":                   {},
		"000003_seed.sideways.sql":    {},
		"000010_vehicle_index.up.sql": {},
	}

	entries, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Version: 1, Name: "master_data"}, entries[0])
	assert.Equal(t, Entry{Version: 2, Name: "billing", HasDown: true}, entries[1])
	assert.Equal(t, uint(10), entries[2].Version)
}

func TestEmbeddedSchema(t *testing.T) {
	sub, err := fs.Sub(Files, EmbeddedDir)
	require.NoError(t, err)

	entries, err := ListMigrations(sub)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i, e := range entries {
		assert.Equal(t, uint(i+1), e.Version, "versions are contiguous")
		assert.True(t, e.HasDown, "migration %d has a rollback", e.Version)
	}

	billing, err := fs.ReadFile(sub, "000002_billing.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(billing), "ON ledger_entries (payer_id, charge_key, period_key)")
}
