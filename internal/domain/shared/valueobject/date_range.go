package valueobject

import (
	"fmt"
	"time"
)

// DateRange is an inclusive interval of calendar days.
// Time of day is discarded; all dates are normalised to midnight UTC.
type DateRange struct {
	from time.Time
	to   time.Time
}

// DateOf truncates t to its calendar day in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DayKeyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NewDateRange creates an inclusive range; from must not be after to
func NewDateRange(from, to time.Time) (DateRange, error) {
	from, to = DateOf(from), DateOf(to)
	if from.After(to) {
		return DateRange{}, fmt.Errorf("range start %s is after end %s",
			from.Format(DayKeyLayout), to.Format(DayKeyLayout))
	}
	return DateRange{from: from, to: to}, nil
}

// SingleDay returns a range covering exactly one day
func SingleDay(day time.Time) DateRange {
	d := DateOf(day)
	return DateRange{from: d, to: d}
}

// From returns the first day of the range
func (r DateRange) From() time.Time {
	return r.from
}

// To returns the last day of the range
func (r DateRange) To() time.Time {
	return r.to
}

// Contains reports whether day falls inside the range, bounds included.
// This is the single "is active" check used for tickets and campaigns.
func (r DateRange) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(r.from) && !d.After(r.to)
}

// Days returns the number of days in the range
func (r DateRange) Days() int {
	return int(r.to.Sub(r.from).Hours()/24) + 1
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.from.Format(DayKeyLayout), r.to.Format(DayKeyLayout))
}
