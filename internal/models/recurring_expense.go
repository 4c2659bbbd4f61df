package models

import "budgetly/internal/cycle"

// RecurringExpense is a charge with its own weekly, monthly or yearly
// schedule, independent of the budget's cycle cadence.
type RecurringExpense struct {
	Base
	BudgetID    string          `gorm:"type:uuid;not null;index" json:"budget_id"`
	CategoryID  *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Name        string          `gorm:"not null" json:"name"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Description string          `json:"description"`
	Frequency   cycle.Frequency `gorm:"not null" json:"frequency"`
	DayOfWeek   *int            `gorm:"column:day_of_week" json:"day_of_week,omitempty"`
	DayOfMonth  *int            `gorm:"column:day_of_month" json:"day_of_month,omitempty"`
	MonthOfYear *int            `gorm:"column:month_of_year" json:"month_of_year,omitempty"`
}

// Schedule converts the stored schedule columns into a cycle.Rule. The result
// is not validated.
func (r *RecurringExpense) Schedule() cycle.Rule {
	return cycle.Rule{
		Frequency: r.Frequency,
		Weekday:   intValue(r.DayOfWeek),
		Day:       intValue(r.DayOfMonth),
		Month:     intValue(r.MonthOfYear),
	}
}

// SetSchedule stores rule, clearing columns the frequency does not use.
func (r *RecurringExpense) SetSchedule(rule cycle.Rule) {
	r.Frequency = rule.Frequency
	r.DayOfWeek, r.DayOfMonth, r.MonthOfYear = nil, nil, nil
	switch rule.Frequency {
	case cycle.Weekly:
		r.DayOfWeek = &rule.Weekday
	case cycle.Monthly:
		r.DayOfMonth = &rule.Day
	case cycle.Yearly:
		r.MonthOfYear = &rule.Month
		r.DayOfMonth = &rule.Day
	}
}
