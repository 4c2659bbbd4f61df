package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetly/internal/cycle"
	"budgetly/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates a budget that resets on the first of every month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithRule(t, db, userID, cycle.MonthlyOn(1))
}

// CreateTestBudgetWithRule creates a budget with the given reset rule. The
// rule is stored as-is, so malformed rules can be used to exercise error paths.
func CreateTestBudgetWithRule(t *testing.T, db *gorm.DB, userID string, rule cycle.Rule) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID: userID,
		Name:   fmt.Sprintf("Test Budget %d", nextID()),
	}
	budget.SetResetRule(rule)
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCycle stores a cycle directly, bypassing the synchronizer.
func CreateTestCycle(t *testing.T, db *gorm.DB, budgetID string, start, end time.Time) *models.BudgetCycle {
	t.Helper()

	c := &models.BudgetCycle{
		BudgetID:  budgetID,
		StartDate: cycle.Day(start),
		EndDate:   cycle.Day(end),
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to create test cycle: %v", err)
	}
	return c
}

// CreateTestFixedExpense creates a fixed expense definition (amount in cents).
func CreateTestFixedExpense(t *testing.T, db *gorm.DB, budgetID, name string, amount int64) *models.FixedExpense {
	t.Helper()

	fe := &models.FixedExpense{
		BudgetID: budgetID,
		Name:     name,
		Amount:   amount,
	}
	if err := db.Create(fe).Error; err != nil {
		t.Fatalf("failed to create test fixed expense: %v", err)
	}
	return fe
}

// CreateTestRecurringExpense creates a recurring expense definition. Like
// CreateTestBudgetWithRule it does not validate the schedule.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, budgetID, name string, amount int64, schedule cycle.Rule) *models.RecurringExpense {
	t.Helper()

	re := &models.RecurringExpense{
		BudgetID: budgetID,
		Name:     name,
		Amount:   amount,
	}
	re.SetSchedule(schedule)
	if err := db.Create(re).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return re
}

// CreateTestProvision creates a provision for a category.
func CreateTestProvision(t *testing.T, db *gorm.DB, budgetID, categoryID string, amount int64) *models.Provision {
	t.Helper()

	p := &models.Provision{
		BudgetID:   budgetID,
		CategoryID: categoryID,
		Amount:     amount,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test provision: %v", err)
	}
	return p
}

// CreateTestTransaction creates a manual transaction in the given cycle.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, c *models.BudgetCycle, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		BudgetID: c.BudgetID,
		CycleID:  c.ID,
		Type:     txType,
		Source:   models.TransactionSourceManual,
		Amount:   amount,
		Date:     c.StartDate,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// MustDay parses a YYYY-MM-DD date or fails the test.
func MustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := cycle.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

// BudgetTransactions loads a budget's whole ledger ordered by date, then source.
func BudgetTransactions(t *testing.T, db *gorm.DB, budgetID string) []models.Transaction {
	t.Helper()
	var txs []models.Transaction
	if err := db.Where("budget_id = ?", budgetID).Order("date ASC, source ASC").Find(&txs).Error; err != nil {
		t.Fatalf("failed to load transactions: %v", err)
	}
	return txs
}

// CountCycles returns how many cycles are stored for a budget.
func CountCycles(t *testing.T, db *gorm.DB, budgetID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.BudgetCycle{}).Where("budget_id = ?", budgetID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count cycles: %v", err)
	}
	return n
}
