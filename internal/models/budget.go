package models

import "budgetly/internal/cycle"

// Budget is a user's spending plan. Its reset rule slices time into cycles;
// which anchor columns are set depends on ResetType.
type Budget struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	ResetType   cycle.Frequency `gorm:"column:reset_type;not null" json:"reset_type"`
	ResetDOW    *int            `gorm:"column:reset_dow" json:"reset_dow,omitempty"`
	ResetDOM    *int            `gorm:"column:reset_dom" json:"reset_dom,omitempty"`
	ResetMonth  *int            `gorm:"column:reset_month" json:"reset_month,omitempty"`
}

// ResetRule converts the stored anchor columns into a cycle.Rule. The result
// is not validated.
func (b *Budget) ResetRule() cycle.Rule {
	return cycle.Rule{
		Frequency: b.ResetType,
		Weekday:   intValue(b.ResetDOW),
		Day:       intValue(b.ResetDOM),
		Month:     intValue(b.ResetMonth),
	}
}

// SetResetRule stores rule, clearing anchor columns the frequency does not use.
func (b *Budget) SetResetRule(rule cycle.Rule) {
	b.ResetType = rule.Frequency
	b.ResetDOW, b.ResetDOM, b.ResetMonth = nil, nil, nil
	switch rule.Frequency {
	case cycle.Weekly:
		b.ResetDOW = &rule.Weekday
	case cycle.Monthly:
		b.ResetDOM = &rule.Day
	case cycle.Yearly:
		b.ResetMonth = &rule.Month
		b.ResetDOM = &rule.Day
	}
}
