// Package cycle holds the calendar math behind budget billing periods.
//
// A Rule anchors a repeating weekly, monthly or yearly pattern. Budgets use a
// Rule as their reset rule (Compute returns the period containing a date) and
// recurring expenses use one as their schedule (Occurrences lists the dates it
// fires inside a period). Everything in this package is pure and works at day
// granularity in UTC; callers own persistence and the notion of "now".
package cycle

import (
	"errors"
	"fmt"
	"time"
)

// Frequency is the cadence of a Rule.
type Frequency string

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// MaxAnchorDay is the last day of month a rule may anchor on. Every month has
// at least 28 days, so anchors never need clamping into short months.
const MaxAnchorDay = 28

// DateLayout is the wire format for day-granularity dates.
const DateLayout = "2006-01-02"

var (
	ErrUnknownFrequency  = errors.New("unknown frequency")
	ErrWeekdayOutOfRange = errors.New("weekday must be between 1 (Monday) and 7 (Sunday)")
	ErrDayOutOfRange     = errors.New("day of month must be between 1 and 28")
	ErrMonthOutOfRange   = errors.New("month must be between 1 and 12")
)

// Rule is a weekly, monthly or yearly anchor. Only the fields that belong to
// Frequency are read.
type Rule struct {
	Frequency Frequency
	Weekday   int // ISO weekday, 1=Monday .. 7=Sunday (weekly)
	Day       int // day of month, 1..28 (monthly, yearly)
	Month     int // 1..12 (yearly)
}

// WeeklyOn returns a weekly rule anchored on an ISO weekday.
func WeeklyOn(weekday int) Rule {
	return Rule{Frequency: Weekly, Weekday: weekday}
}

// MonthlyOn returns a monthly rule anchored on a day of month.
func MonthlyOn(day int) Rule {
	return Rule{Frequency: Monthly, Day: day}
}

// YearlyOn returns a yearly rule anchored on a month and day.
func YearlyOn(month, day int) Rule {
	return Rule{Frequency: Yearly, Month: month, Day: day}
}

// Validate reports whether the anchor fields are in range for the frequency.
func (r Rule) Validate() error {
	switch r.Frequency {
	case Weekly:
		if r.Weekday < 1 || r.Weekday > 7 {
			return fmt.Errorf("%w: %d", ErrWeekdayOutOfRange, r.Weekday)
		}
	case Monthly:
		if r.Day < 1 || r.Day > MaxAnchorDay {
			return fmt.Errorf("%w: %d", ErrDayOutOfRange, r.Day)
		}
	case Yearly:
		if r.Month < 1 || r.Month > 12 {
			return fmt.Errorf("%w: %d", ErrMonthOutOfRange, r.Month)
		}
		if r.Day < 1 || r.Day > MaxAnchorDay {
			return fmt.Errorf("%w: %d", ErrDayOutOfRange, r.Day)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, r.Frequency)
	}
	return nil
}

// IsValid reports whether f is one of the supported frequencies.
func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Day strips the clock from t, keeping its calendar date in t's location, and
// returns that date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC day from its parts.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
