package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// provisionService handles per-category allocations of a budget.
type provisionService struct {
	db *gorm.DB
}

// NewProvisionService creates a new ProvisionServicer.
func NewProvisionService(db *gorm.DB) ProvisionServicer {
	return &provisionService{db: db}
}

// CreateProvision plans amount for a category. Each category can be
// provisioned once per budget.
func (s *provisionService) CreateProvision(userID, budgetID, categoryID string, amount int64, notes string) (*models.Provision, error) {
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}
	category, err := findOwnedCategory(s.db, userID, categoryID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Provision{}).
		Where("budget_id = ? AND category_id = ?", budgetID, categoryID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateProvision
	}

	provision := &models.Provision{
		BudgetID:   budgetID,
		CategoryID: categoryID,
		Amount:     amount,
		Notes:      notes,
	}
	if err := s.db.Create(provision).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	provision.Category = category

	return provision, nil
}

// GetBudgetProvisions lists a budget's provisions with their categories.
func (s *provisionService) GetBudgetProvisions(userID, budgetID string) ([]models.Provision, error) {
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	provisions := []models.Provision{}
	if err := s.db.Preload("Category").Where("budget_id = ?", budgetID).Order("created_at ASC").Find(&provisions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return provisions, nil
}

// UpdateProvision changes the amount and/or notes.
func (s *provisionService) UpdateProvision(userID, budgetID, provisionID string, amount *int64, notes *string) (*models.Provision, error) {
	provision, err := s.getProvision(userID, budgetID, provisionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if amount != nil {
		if *amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
		}
		updates["amount"] = *amount
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(provision).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return provision, nil
}

// DeleteProvision removes a provision.
func (s *provisionService) DeleteProvision(userID, budgetID, provisionID string) error {
	provision, err := s.getProvision(userID, budgetID, provisionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(provision).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *provisionService) getProvision(userID, budgetID, provisionID string) (*models.Provision, error) {
	if _, err := findOwnedBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}

	var provision models.Provision
	if err := s.db.Preload("Category").Where("id = ? AND budget_id = ?", provisionID, budgetID).First(&provision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProvisionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &provision, nil
}
