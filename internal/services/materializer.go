package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/logger"
	"budgetly/internal/models"
)

// Materializer turns fixed and recurring expense definitions into ledger
// transactions for one cycle. It only ever inserts: a row whose unique key
// already exists is left untouched, so repeated runs are harmless.
type Materializer struct {
	db *gorm.DB
}

// NewMaterializer creates a Materializer.
func NewMaterializer(db *gorm.DB) *Materializer {
	return &Materializer{db: db}
}

// MaterializeFixed posts every fixed expense of the budget once, dated on the
// cycle's start. It returns the rows inserted by this call.
func (m *Materializer) MaterializeFixed(budget *models.Budget, c *models.BudgetCycle) ([]models.Transaction, error) {
	var defs []models.FixedExpense
	if err := m.db.Where("budget_id = ?", budget.ID).Order("created_at ASC").Find(&defs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	date := cycle.Day(c.StartDate.UTC())
	var inserted []models.Transaction
	for i := range defs {
		def := &defs[i]
		tx := newMaterializedTransaction(budget, c, models.TransactionSourceFixed, def.ID, def.CategoryID, def.Amount, def.Name, date)
		ok, err := m.insertIfAbsent(tx)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted = append(inserted, *tx)
		}
	}
	return inserted, nil
}

// MaterializeRecurring posts one transaction per occurrence of each recurring
// expense inside the cycle. Definitions with a malformed schedule are logged
// and skipped.
func (m *Materializer) MaterializeRecurring(budget *models.Budget, c *models.BudgetCycle) ([]models.Transaction, error) {
	var defs []models.RecurringExpense
	if err := m.db.Where("budget_id = ?", budget.ID).Order("created_at ASC").Find(&defs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	period := c.Period()
	var inserted []models.Transaction
	for i := range defs {
		def := &defs[i]
		dates, err := cycle.Occurrences(def.Schedule(), period)
		if err != nil {
			logger.Named("materializer").Warnw("skipping recurring expense with invalid schedule",
				"recurring_expense_id", def.ID,
				"budget_id", budget.ID,
				"error", err,
			)
			continue
		}

		for _, date := range dates {
			tx := newMaterializedTransaction(budget, c, models.TransactionSourceRecurring, def.ID, def.CategoryID, def.Amount, def.Name, date)
			ok, err := m.insertIfAbsent(tx)
			if err != nil {
				return inserted, err
			}
			if ok {
				inserted = append(inserted, *tx)
			}
		}
	}
	return inserted, nil
}

// insertIfAbsent reports whether tx was inserted. A conflict on unique_key
// means the occurrence is already in the ledger.
func (m *Materializer) insertIfAbsent(tx *models.Transaction) (bool, error) {
	result := m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "unique_key"}},
		DoNothing: true,
	}).Create(tx)
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func newMaterializedTransaction(
	budget *models.Budget,
	c *models.BudgetCycle,
	source models.TransactionSource,
	definitionID string,
	categoryID *string,
	amount int64,
	description string,
	date time.Time,
) *models.Transaction {
	key := models.MaterializationKey(source, definitionID, c.ID, date)
	defID := definitionID
	return &models.Transaction{
		UserID:       budget.UserID,
		BudgetID:     budget.ID,
		CycleID:      c.ID,
		CategoryID:   categoryID,
		DefinitionID: &defID,
		Type:         models.TransactionTypeExpense,
		Source:       source,
		Amount:       amount,
		Description:  description,
		Date:         date,
		UniqueKey:    &key,
	}
}
