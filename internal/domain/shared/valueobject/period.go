package valueobject

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period key layouts
const (
	MonthKeyLayout = "2006-01"
	DayKeyLayout   = "2006-01-02"
)

// YearMonth is a calendar month used as a recurring billing period
type YearMonth struct {
	year  int
	month time.Month
}

// NewYearMonth validates and creates a YearMonth
func NewYearMonth(year, month int) (YearMonth, error) {
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return YearMonth{}, fmt.Errorf("year must be between 1 and 9999, got %d", year)
	}
	return YearMonth{year: year, month: time.Month(month)}, nil
}

// MustYearMonth is NewYearMonth that panics on invalid input
func MustYearMonth(year, month int) YearMonth {
	ym, err := NewYearMonth(year, month)
	if err != nil {
		panic(err)
	}
	return ym
}

// ParseYearMonth parses a YYYY-MM period key
func ParseYearMonth(key string) (YearMonth, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return YearMonth{}, fmt.Errorf("invalid month period %q, expected YYYY-MM", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year in period %q", key)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month in period %q", key)
	}
	return NewYearMonth(year, month)
}

// YearMonthOf returns the month containing t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{year: t.Year(), month: t.Month()}
}

// Year returns the calendar year
func (ym YearMonth) Year() int {
	return ym.year
}

// Month returns the calendar month (1-12)
func (ym YearMonth) Month() int {
	return int(ym.month)
}

// IsZero reports whether the YearMonth is unset
func (ym YearMonth) IsZero() bool {
	return ym.year == 0
}

// String returns the canonical YYYY-MM key
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.year, int(ym.month))
}

// Next returns the following month, rolling December over into January of the next year
func (ym YearMonth) Next() YearMonth {
	if ym.month == time.December {
		return YearMonth{year: ym.year + 1, month: time.January}
	}
	return YearMonth{year: ym.year, month: ym.month + 1}
}

// FirstDay returns the first day of the month at midnight UTC
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.year, ym.month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the last day of the month at midnight UTC
func (ym YearMonth) LastDay() time.Time {
	return ym.FirstDay().AddDate(0, 1, -1)
}

// Range returns the inclusive validity interval covering the whole month
func (ym YearMonth) Range() DateRange {
	return DateRange{from: ym.FirstDay(), to: ym.LastDay()}
}
