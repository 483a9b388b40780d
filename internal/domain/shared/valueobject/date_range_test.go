package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange_Contains(t *testing.T) {
	r := MustYearMonth(2025, 1).Range()

	assert.True(t, r.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSingleDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	r := SingleDay(day)
	assert.Equal(t, r.From(), r.To())
	assert.Equal(t, 1, r.Days())
	assert.True(t, r.Contains(day))
	assert.False(t, r.Contains(day.AddDate(0, 0, 1)))
}

func TestNewDateRange(t *testing.T) {
	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	_, err := NewDateRange(from, to)
	assert.Error(t, err)

	r, err := NewDateRange(to, from)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Days())
	assert.Equal(t, "[2025-01-05, 2025-01-10]", r.String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Day())

	_, err = ParseDate("15/01/2025")
	assert.Error(t, err)
}
