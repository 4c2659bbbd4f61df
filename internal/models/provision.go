package models

// Provision is the amount a budget plans to spend on a category each cycle.
type Provision struct {
	Base
	BudgetID   string    `gorm:"type:uuid;not null;index" json:"budget_id"`
	CategoryID string    `gorm:"type:uuid;not null" json:"category_id"`
	Amount     int64     `gorm:"type:bigint;not null" json:"amount"`
	Notes      string    `json:"notes"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
