package billing

import (
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
)

// Clock returns the current time. Services never read the wall clock directly.
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// NewPeriod validates a year and month into a billing period
func NewPeriod(year, month int) (valueobject.YearMonth, error) {
	period, err := valueobject.NewYearMonth(year, month)
	if err != nil {
		return valueobject.YearMonth{}, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return period, nil
}

// ParsePeriod parses a YYYY-MM period key
func ParsePeriod(key string) (valueobject.YearMonth, error) {
	period, err := valueobject.ParseYearMonth(key)
	if err != nil {
		return valueobject.YearMonth{}, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return period, nil
}

// ParseDay parses a YYYY-MM-DD day
func ParseDay(s string) (time.Time, error) {
	day, err := valueobject.ParseDate(s)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return day, nil
}
