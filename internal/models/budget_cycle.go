package models

import (
	"encoding/json"
	"time"

	"budgetly/internal/cycle"
	"budgetly/internal/uuid"

	"gorm.io/gorm"
)

// BudgetCycle is one concrete billing period of a budget.
// Cycles are append-only: no soft deletes and no updates.
type BudgetCycle struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	BudgetID  string    `gorm:"type:uuid;not null;uniqueIndex:uq_budget_cycles_budget_start,priority:1" json:"budget_id"`
	StartDate time.Time `gorm:"not null;uniqueIndex:uq_budget_cycles_budget_start,priority:2" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (c *BudgetCycle) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New()
	}
	return nil
}

// Period returns the cycle's inclusive date range.
func (c *BudgetCycle) Period() cycle.Period {
	return cycle.Period{Start: cycle.Day(c.StartDate.UTC()), End: cycle.Day(c.EndDate.UTC())}
}

// MarshalJSON renders the boundaries as plain dates.
func (c BudgetCycle) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string `json:"id"`
		BudgetID  string `json:"budget_id"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}{
		ID:        c.ID,
		BudgetID:  c.BudgetID,
		StartDate: c.StartDate.UTC().Format(cycle.DateLayout),
		EndDate:   c.EndDate.UTC().Format(cycle.DateLayout),
	})
}
