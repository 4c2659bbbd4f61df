package cycle

import (
	"errors"
	"testing"
	"time"
)

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateLayout)
	}
	return out
}

func TestOccurrences(t *testing.T) {
	tests := []struct {
		name   string
		rule   Rule
		period Period
		want   []string
	}{
		{
			name:   "monthly_inside_monthly_cycle",
			rule:   MonthlyOn(10),
			period: Period{Start: Date(2024, time.March, 1), End: Date(2024, time.March, 31)},
			want:   []string{"2024-03-10"},
		},
		{
			name:   "monthly_cross_boundary_picks_second_month",
			rule:   MonthlyOn(15),
			period: Period{Start: Date(2025, time.January, 20), End: Date(2025, time.February, 19)},
			want:   []string{"2025-02-15"},
		},
		{
			name:   "monthly_cross_boundary_picks_first_month",
			rule:   MonthlyOn(25),
			period: Period{Start: Date(2025, time.January, 20), End: Date(2025, time.February, 19)},
			want:   []string{"2025-01-25"},
		},
		{
			name:   "monthly_on_cycle_start",
			rule:   MonthlyOn(20),
			period: Period{Start: Date(2025, time.January, 20), End: Date(2025, time.February, 19)},
			want:   []string{"2025-01-20"},
		},
		{
			name:   "monthly_misses_weekly_cycle",
			rule:   MonthlyOn(1),
			period: Period{Start: Date(2024, time.March, 11), End: Date(2024, time.March, 17)},
			want:   []string{},
		},
		{
			name:   "monthly_inside_yearly_cycle",
			rule:   MonthlyOn(5),
			period: Period{Start: Date(2024, time.April, 6), End: Date(2025, time.April, 5)},
			want: []string{
				"2024-05-05", "2024-06-05", "2024-07-05", "2024-08-05", "2024-09-05", "2024-10-05",
				"2024-11-05", "2024-12-05", "2025-01-05", "2025-02-05", "2025-03-05", "2025-04-05",
			},
		},
		{
			name:   "weekly_inside_weekly_cycle",
			rule:   WeeklyOn(5),
			period: Period{Start: Date(2024, time.March, 11), End: Date(2024, time.March, 17)},
			want:   []string{"2024-03-15"},
		},
		{
			name:   "weekly_wednesdays_april_2024",
			rule:   WeeklyOn(3),
			period: Period{Start: Date(2024, time.April, 1), End: Date(2024, time.April, 30)},
			want:   []string{"2024-04-03", "2024-04-10", "2024-04-17", "2024-04-24"},
		},
		{
			name:   "weekly_wednesdays_november_2023",
			rule:   WeeklyOn(3),
			period: Period{Start: Date(2023, time.November, 1), End: Date(2023, time.November, 30)},
			want:   []string{"2023-11-01", "2023-11-08", "2023-11-15", "2023-11-22", "2023-11-29"},
		},
		{
			name:   "yearly_inside_straddling_monthly_cycle",
			rule:   YearlyOn(12, 25),
			period: Period{Start: Date(2024, time.December, 20), End: Date(2025, time.January, 19)},
			want:   []string{"2024-12-25"},
		},
		{
			name:   "yearly_second_year_of_straddle",
			rule:   YearlyOn(1, 2),
			period: Period{Start: Date(2024, time.December, 20), End: Date(2025, time.January, 19)},
			want:   []string{"2025-01-02"},
		},
		{
			name:   "yearly_outside_cycle",
			rule:   YearlyOn(6, 1),
			period: Period{Start: Date(2024, time.March, 1), End: Date(2024, time.March, 31)},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Occurrences(tt.rule, tt.period)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			gotStr := formatDates(got)
			if len(gotStr) != len(tt.want) {
				t.Fatalf("got %v, want %v", gotStr, tt.want)
			}
			for i := range gotStr {
				if gotStr[i] != tt.want[i] {
					t.Errorf("occurrence %d = %s, want %s", i, gotStr[i], tt.want[i])
				}
			}
		})
	}
}

func TestOccurrences_WeeklyInThirtyDayCycles(t *testing.T) {
	for start := Date(2024, time.January, 1); start.Before(Date(2025, time.January, 1)); start = start.AddDate(0, 0, 1) {
		p := Period{Start: start, End: start.AddDate(0, 0, 29)}
		got, err := Occurrences(WeeklyOn(3), p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 4 && len(got) != 5 {
			t.Fatalf("period %s produced %d Wednesdays", p, len(got))
		}
		for _, d := range got {
			if d.Weekday() != time.Wednesday || !p.Contains(d) {
				t.Fatalf("period %s produced %s which is not an in-range Wednesday", p, d.Format(DateLayout))
			}
		}
	}
}

func TestOccurrences_AlwaysInsidePeriod(t *testing.T) {
	rules := []Rule{WeeklyOn(1), WeeklyOn(7), MonthlyOn(1), MonthlyOn(28), YearlyOn(2, 28), YearlyOn(12, 28)}
	budgets := []Rule{WeeklyOn(2), MonthlyOn(20), YearlyOn(7, 1)}

	for _, budget := range budgets {
		for d := Date(2024, time.January, 1); d.Before(Date(2025, time.January, 1)); d = d.AddDate(0, 0, 11) {
			p, err := Compute(budget, d)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, rule := range rules {
				got, err := Occurrences(rule, p)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				seen := make(map[string]bool)
				for _, occ := range got {
					key := occ.Format(DateLayout)
					if !p.Contains(occ) {
						t.Fatalf("rule %+v produced %s outside %s", rule, key, p)
					}
					if seen[key] {
						t.Fatalf("rule %+v produced %s twice in %s", rule, key, p)
					}
					seen[key] = true
				}
			}
		}
	}
}

func TestOccurrences_InvalidRule(t *testing.T) {
	p := Period{Start: Date(2024, time.March, 1), End: Date(2024, time.March, 31)}
	_, err := Occurrences(MonthlyOn(31), p)
	if !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("expected ErrDayOutOfRange, got %v", err)
	}
}
