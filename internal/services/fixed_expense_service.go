package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// fixedExpenseService manages fixed expense definitions. Changes apply to
// cycles materialized afterwards; posted transactions are never rewritten.
type fixedExpenseService struct {
	db *gorm.DB
}

// NewFixedExpenseService creates a new FixedExpenseServicer.
func NewFixedExpenseService(db *gorm.DB) FixedExpenseServicer {
	return &fixedExpenseService{db: db}
}

func (s *fixedExpenseService) CreateFixedExpense(userID, budgetID string, categoryID *string, name string, amount int64, description string) (*models.FixedExpense, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}
	if err := checkCategoryRef(s.db, userID, categoryID); err != nil {
		return nil, err
	}

	expense := &models.FixedExpense{
		BudgetID:    budgetID,
		CategoryID:  categoryID,
		Name:        name,
		Amount:      amount,
		Description: description,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

func (s *fixedExpenseService) GetBudgetFixedExpenses(userID, budgetID string) ([]models.FixedExpense, error) {
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	expenses := []models.FixedExpense{}
	if err := s.db.Where("budget_id = ?", budgetID).Order("created_at ASC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

func (s *fixedExpenseService) UpdateFixedExpense(userID, budgetID, expenseID string, categoryID, name *string, amount *int64, description *string) (*models.FixedExpense, error) {
	expense, err := s.getFixedExpense(userID, budgetID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if categoryID != nil {
		if err := checkCategoryRef(s.db, userID, categoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *categoryID
	}
	if name != nil {
		if *name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		updates["name"] = *name
	}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
		}
		updates["amount"] = *amount
	}
	if description != nil {
		updates["description"] = *description
	}

	if len(updates) > 0 {
		if err := s.db.Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return expense, nil
}

func (s *fixedExpenseService) DeleteFixedExpense(userID, budgetID, expenseID string) error {
	expense, err := s.getFixedExpense(userID, budgetID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *fixedExpenseService) getFixedExpense(userID, budgetID, expenseID string) (*models.FixedExpense, error) {
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var expense models.FixedExpense
	if err := s.db.Where("id = ? AND budget_id = ?", expenseID, budgetID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFixedExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}
