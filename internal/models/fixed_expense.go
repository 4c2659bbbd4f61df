package models

// FixedExpense is a charge posted once per cycle, on the cycle's start date.
type FixedExpense struct {
	Base
	BudgetID    string  `gorm:"type:uuid;not null;index" json:"budget_id"`
	CategoryID  *string `gorm:"type:uuid" json:"category_id,omitempty"`
	Name        string  `gorm:"not null" json:"name"`
	Amount      int64   `gorm:"type:bigint;not null" json:"amount"`
	Description string  `json:"description"`
}
