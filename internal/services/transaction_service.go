package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
	"budgetly/internal/pagination"
)

// transactionService handles manual ledger entries and ledger queries.
type transactionService struct {
	db     *gorm.DB
	sync   CycleSynchronizer
	cycles CycleRepository
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, sync CycleSynchronizer) TransactionServicer {
	return &transactionService{db: db, sync: sync, cycles: NewCycleRepository(db)}
}

// CreateTransaction records a manual income or expense. The budget is synced
// first so the current cycle exists; the entry then joins whichever cycle
// contains its date.
func (s *transactionService) CreateTransaction(
	userID, budgetID string,
	transactionType models.TransactionType,
	categoryID *string,
	amount int64,
	description string,
	date *time.Time,
) (*models.Transaction, *models.BudgetCycle, error) {
	if amount <= 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type must be income or expense")
	}

	current, err := s.sync.Sync(userID, budgetID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkCategoryRef(s.db, userID, categoryID); err != nil {
		return nil, nil, err
	}

	day := s.sync.Today()
	if date != nil {
		day = cycle.Day(*date)
	}

	target := current
	if !current.Period().Contains(day) {
		target, err = s.cycles.FindCycleContaining(budgetID, day)
		if err != nil {
			if errors.Is(err, apperrors.ErrCycleNotFound) {
				return nil, nil, apperrors.ErrDateOutsideCycle
			}
			return nil, nil, err
		}
	}

	tx := &models.Transaction{
		UserID:      userID,
		BudgetID:    budgetID,
		CycleID:     target.ID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Source:      models.TransactionSourceManual,
		Amount:      amount,
		Description: description,
		Date:        day,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return tx, target, nil
}

// GetBudgetTransactions lists one cycle of a budget's ledger, newest first.
func (s *transactionService) GetBudgetTransactions(userID, budgetID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	current, err := s.sync.Sync(userID, budgetID)
	if err != nil {
		return nil, err
	}

	cycleID := current.ID
	if filter.CycleID != nil && *filter.CycleID != current.ID {
		c, err := s.cycles.GetCycle(budgetID, *filter.CycleID)
		if err != nil {
			return nil, err
		}
		cycleID = c.ID
	}

	base := s.db.Model(&models.Transaction{}).Where("budget_id = ? AND cycle_id = ?", budgetID, cycleID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", cycle.Day(*filter.FromDate))
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", cycle.Day(*filter.ToDate))
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.Source != nil {
		base = base.Where("source = ?", *filter.Source)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}

	result, err := pagination.Find[models.Transaction](base, page, "date DESC, created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetTransactionByID retrieves a transaction owned by the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tx, nil
}

// DeleteTransaction soft-deletes a manual entry. Materialized rows belong to
// their definitions and cannot be removed.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	tx, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if tx.Source != models.TransactionSourceManual {
		return apperrors.ErrTransactionNotEditable
	}

	if err := s.db.Delete(tx).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
