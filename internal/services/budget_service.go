package services

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
	"budgetly/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db     *gorm.DB
	cycles CycleRepository
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, cycles: NewCycleRepository(db)}
}

// CreateBudget creates a new budget with the given reset rule. No cycle is
// created here; the first sync does that.
func (s *budgetService) CreateBudget(userID, name, description string, rule cycle.Rule) (*models.Budget, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if err := rule.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidResetRule, err.Error())
	}

	budget := &models.Budget{
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	budget.SetResetRule(rule)

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	query := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	result, err := pagination.Find[models.Budget](query, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBudgetByID returns a budget owned by the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return findOwnedBudget(s.db, userID, budgetID)
}

// UpdateBudget applies the provided fields. A new reset rule only affects
// cycles created after the change; existing cycles are never rewritten.
func (s *budgetService) UpdateBudget(userID, budgetID string, name, description *string, rule *cycle.Rule) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		if *name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name cannot be empty")
		}
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if rule != nil {
		if err := rule.Validate(); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidResetRule, err.Error())
		}
		budget.SetResetRule(*rule)
		updates["reset_type"] = budget.ResetType
		updates["reset_dow"] = budget.ResetDOW
		updates["reset_dom"] = budget.ResetDOM
		updates["reset_month"] = budget.ResetMonth
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetCycles returns the budget's cycle history, newest first.
func (s *budgetService) GetBudgetCycles(userID, budgetID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCycle], error) {
	if _, err := s.GetBudgetByID(userID, budgetID); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.BudgetCycle{}).Where("budget_id = ?", budgetID)
	result, err := pagination.Find[models.BudgetCycle](query, page, "start_date DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

type cycleTotalRow struct {
	CategoryID *string
	Type       models.TransactionType
	Total      int64
}

// GetCycleSummary compares provisions with actual spending in one cycle.
func (s *budgetService) GetCycleSummary(userID, budgetID, cycleID string) (*BudgetSummary, error) {
	if _, err := s.GetBudgetByID(userID, budgetID); err != nil {
		return nil, err
	}
	c, err := s.cycles.GetCycle(budgetID, cycleID)
	if err != nil {
		return nil, err
	}

	var provisions []models.Provision
	if err := s.db.Preload("Category").Where("budget_id = ?", budgetID).Find(&provisions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []cycleTotalRow
	if err := s.db.Model(&models.Transaction{}).
		Select("category_id, type, CAST(COALESCE(SUM(amount), 0) AS BIGINT) AS total").
		Where("cycle_id = ?", c.ID).
		Group("category_id, type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &BudgetSummary{BudgetID: budgetID, Cycle: c}
	byCategory := make(map[string]*CategorySummary)
	var uncategorized *CategorySummary

	for _, p := range provisions {
		cs := &CategorySummary{CategoryID: stringPtr(p.CategoryID), Provisioned: p.Amount}
		if p.Category != nil {
			cs.CategoryName = p.Category.Name
		}
		byCategory[p.CategoryID] = cs
		summary.TotalProvisioned += p.Amount
	}

	var missingNames []string
	for _, row := range rows {
		if row.Type == models.TransactionTypeIncome {
			summary.TotalIncome += row.Total
			continue
		}
		summary.TotalExpense += row.Total

		if row.CategoryID == nil {
			if uncategorized == nil {
				uncategorized = &CategorySummary{CategoryName: "Uncategorized"}
			}
			uncategorized.Spent += row.Total
			continue
		}
		cs, ok := byCategory[*row.CategoryID]
		if !ok {
			cs = &CategorySummary{CategoryID: stringPtr(*row.CategoryID)}
			byCategory[*row.CategoryID] = cs
			missingNames = append(missingNames, *row.CategoryID)
		}
		cs.Spent += row.Total
	}

	if len(missingNames) > 0 {
		var categories []models.Category
		if err := s.db.Unscoped().Where("id IN ?", missingNames).Find(&categories).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, cat := range categories {
			byCategory[cat.ID].CategoryName = cat.Name
		}
	}

	summary.Categories = make([]CategorySummary, 0, len(byCategory)+1)
	for _, cs := range byCategory {
		cs.Remaining = cs.Provisioned - cs.Spent
		summary.Categories = append(summary.Categories, *cs)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].CategoryName < summary.Categories[j].CategoryName
	})
	if uncategorized != nil {
		uncategorized.Remaining = -uncategorized.Spent
		summary.Categories = append(summary.Categories, *uncategorized)
	}
	summary.Remaining = summary.TotalIncome - summary.TotalExpense

	return summary, nil
}

// findOwnedBudget loads a budget that belongs to userID.
func findOwnedBudget(db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

func stringPtr(s string) *string {
	return &s
}
