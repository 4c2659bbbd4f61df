package models

import (
	"time"

	"budgetly/internal/cycle"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionSource records how a ledger entry came to exist.
type TransactionSource string

const (
	TransactionSourceFixed     TransactionSource = "fixed"
	TransactionSourceRecurring TransactionSource = "recurring"
	TransactionSourceManual    TransactionSource = "manual"
)

// Transaction is a ledger entry inside one budget cycle.
//
// Materialized entries carry a UniqueKey derived from (definition, cycle,
// date); the unique index on it is what makes materialization idempotent.
// Manual entries leave it NULL.
type Transaction struct {
	Base
	UserID       string            `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetID     string            `gorm:"type:uuid;not null;index" json:"budget_id"`
	CycleID      string            `gorm:"type:uuid;not null;index" json:"cycle_id"`
	CategoryID   *string           `gorm:"type:uuid" json:"category_id,omitempty"`
	DefinitionID *string           `gorm:"type:uuid" json:"definition_id,omitempty"`
	Type         TransactionType   `gorm:"not null" json:"type"`
	Source       TransactionSource `gorm:"not null;default:'manual'" json:"source"`
	Amount       int64             `gorm:"type:bigint;not null" json:"amount"`
	Description  string            `json:"description"`
	Date         time.Time         `gorm:"not null;index" json:"date"`
	UniqueKey    *string           `gorm:"uniqueIndex:uq_transactions_unique_key" json:"-"`
}

// MaterializationKey builds the uniqueness key for a fixed or recurring
// occurrence.
func MaterializationKey(source TransactionSource, definitionID, cycleID string, date time.Time) string {
	return string(source) + ":" + definitionID + ":" + cycleID + ":" + date.UTC().Format(cycle.DateLayout)
}
