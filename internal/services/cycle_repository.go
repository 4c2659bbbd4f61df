package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// cycleRepository stores budget cycles in the budget_cycles table.
type cycleRepository struct {
	db *gorm.DB
}

// NewCycleRepository creates a new CycleRepository.
func NewCycleRepository(db *gorm.DB) CycleRepository {
	return &cycleRepository{db: db}
}

func (r *cycleRepository) FindCycleContaining(budgetID string, date time.Time) (*models.BudgetCycle, error) {
	day := cycle.Day(date)
	var c models.BudgetCycle
	err := r.db.
		Where("budget_id = ? AND start_date <= ? AND end_date >= ?", budgetID, day, day).
		Order("start_date DESC").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &c, nil
}

func (r *cycleRepository) CreateCycle(budgetID string, p cycle.Period) (*models.BudgetCycle, error) {
	c := &models.BudgetCycle{
		BudgetID:  budgetID,
		StartDate: cycle.Day(p.Start),
		EndDate:   cycle.Day(p.End),
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "budget_id"}, {Name: "start_date"}},
		DoNothing: true,
	}).Create(c)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 1 {
		return c, nil
	}

	// Lost the race: another sync stored this cycle first.
	var existing models.BudgetCycle
	if err := r.db.Where("budget_id = ? AND start_date = ?", budgetID, c.StartDate).First(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &existing, nil
}

func (r *cycleRepository) Neighbors(budgetID string, date time.Time) (prev, next *models.BudgetCycle, err error) {
	day := cycle.Day(date)

	var before []models.BudgetCycle
	if err := r.db.Where("budget_id = ? AND start_date < ?", budgetID, day).
		Order("start_date DESC").Limit(1).Find(&before).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var after []models.BudgetCycle
	if err := r.db.Where("budget_id = ? AND start_date > ?", budgetID, day).
		Order("start_date ASC").Limit(1).Find(&after).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(before) > 0 {
		prev = &before[0]
	}
	if len(after) > 0 {
		next = &after[0]
	}
	return prev, next, nil
}

func (r *cycleRepository) GetCycle(budgetID, cycleID string) (*models.BudgetCycle, error) {
	var c models.BudgetCycle
	if err := r.db.Where("id = ? AND budget_id = ?", cycleID, budgetID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &c, nil
}
