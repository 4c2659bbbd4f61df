package services

import (
	"errors"

	"gorm.io/gorm"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// recurringExpenseService manages recurring expense definitions.
type recurringExpenseService struct {
	db *gorm.DB
}

// NewRecurringExpenseService creates a new RecurringExpenseServicer.
func NewRecurringExpenseService(db *gorm.DB) RecurringExpenseServicer {
	return &recurringExpenseService{db: db}
}

func (s *recurringExpenseService) CreateRecurringExpense(userID, budgetID string, categoryID *string, name string, amount int64, description string, schedule cycle.Rule) (*models.RecurringExpense, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if err := schedule.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidSchedule, err.Error())
	}
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}
	if err := checkCategoryRef(s.db, userID, categoryID); err != nil {
		return nil, err
	}

	expense := &models.RecurringExpense{
		BudgetID:    budgetID,
		CategoryID:  categoryID,
		Name:        name,
		Amount:      amount,
		Description: description,
	}
	expense.SetSchedule(schedule)
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

func (s *recurringExpenseService) GetBudgetRecurringExpenses(userID, budgetID string) ([]models.RecurringExpense, error) {
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	expenses := []models.RecurringExpense{}
	if err := s.db.Where("budget_id = ?", budgetID).Order("created_at ASC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

func (s *recurringExpenseService) UpdateRecurringExpense(userID, budgetID, expenseID string, categoryID, name *string, amount *int64, description *string, schedule *cycle.Rule) (*models.RecurringExpense, error) {
	expense, err := s.getRecurringExpense(userID, budgetID, expenseID)
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
	if schedule != nil {
		if err := schedule.Validate(); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidSchedule, err.Error())
		}
		expense.SetSchedule(*schedule)
		updates["frequency"] = expense.Frequency
		updates["day_of_week"] = expense.DayOfWeek
		updates["day_of_month"] = expense.DayOfMonth
		updates["month_of_year"] = expense.MonthOfYear
	}

	if len(updates) > 0 {
		if err := s.db.Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return expense, nil
}

func (s *recurringExpenseService) DeleteRecurringExpense(userID, budgetID, expenseID string) error {
	expense, err := s.getRecurringExpense(userID, budgetID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *recurringExpenseService) getRecurringExpense(userID, budgetID, expenseID string) (*models.RecurringExpense, error) {
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var expense models.RecurringExpense
	if err := s.db.Where("id = ? AND budget_id = ?", expenseID, budgetID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}
