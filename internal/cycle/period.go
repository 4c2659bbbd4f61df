package cycle

import "time"

// Period is an inclusive range of days.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar day of d lies within the period.
func (p Period) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of days in the period, both ends included.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// String formats the period as "start..end".
func (p Period) String() string {
	return p.Start.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

// Compute returns the period of rule that contains ref.
//
// Weekly periods start on the most recent anchor weekday at or before ref and
// last seven days. Monthly and yearly periods start on this month's (year's)
// anchor when ref has reached it, otherwise on the previous one, and end the
// day before the following anchor.
func Compute(rule Rule, ref time.Time) (Period, error) {
	if err := rule.Validate(); err != nil {
		return Period{}, err
	}
	ref = Day(ref)

	switch rule.Frequency {
	case Weekly:
		offset := (ISOWeekday(ref) - rule.Weekday + 7) % 7
		start := ref.AddDate(0, 0, -offset)
		return Period{Start: start, End: start.AddDate(0, 0, 6)}, nil

	case Monthly:
		start := Date(ref.Year(), ref.Month(), rule.Day)
		if ref.Before(start) {
			start = start.AddDate(0, -1, 0)
		}
		return Period{Start: start, End: start.AddDate(0, 1, -1)}, nil

	default: // Yearly
		start := Date(ref.Year(), time.Month(rule.Month), rule.Day)
		if ref.Before(start) {
			start = start.AddDate(-1, 0, 0)
		}
		return Period{Start: start, End: start.AddDate(1, 0, -1)}, nil
	}
}

// Occurrences lists, in ascending order, every day in p on which rule fires.
//
// Weekly rules are scanned day by day. Monthly and yearly rules walk the
// calendar months (years) overlapping p, so a period straddling a boundary
// yields the anchor that actually falls inside it, or nothing.
func Occurrences(rule Rule, p Period) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	start, end := Day(p.Start), Day(p.End)
	p = Period{Start: start, End: end}

	var dates []time.Time
	switch rule.Frequency {
	case Weekly:
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if ISOWeekday(d) == rule.Weekday {
				dates = append(dates, d)
			}
		}

	case Monthly:
		for month := Date(start.Year(), start.Month(), 1); !month.After(end); month = month.AddDate(0, 1, 0) {
			candidate := Date(month.Year(), month.Month(), rule.Day)
			if p.Contains(candidate) {
				dates = append(dates, candidate)
			}
		}

	case Yearly:
		for year := start.Year(); year <= end.Year(); year++ {
			candidate := Date(year, time.Month(rule.Month), rule.Day)
			if p.Contains(candidate) {
				dates = append(dates, candidate)
			}
		}
	}
	return dates, nil
}
