package services

import (
	"time"

	"budgetly/internal/cycle"
	"budgetly/internal/models"
	"budgetly/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name, description, icon, color *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// CategorySummary compares planned and actual spending for one category in a
// cycle. Uncategorized spending is reported with a nil CategoryID.
type CategorySummary struct {
	CategoryID   *string `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Provisioned  int64   `json:"provisioned"`
	Spent        int64   `json:"spent"`
	Remaining    int64   `json:"remaining"`
}

// BudgetSummary aggregates one cycle of a budget.
type BudgetSummary struct {
	BudgetID         string              `json:"budget_id"`
	Cycle            *models.BudgetCycle `json:"cycle"`
	TotalIncome      int64               `json:"total_income"`
	TotalExpense     int64               `json:"total_expense"`
	TotalProvisioned int64               `json:"total_provisioned"`
	Remaining        int64               `json:"remaining"`
	Categories       []CategorySummary   `json:"categories"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, name, description string, rule cycle.Rule) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, name, description *string, rule *cycle.Rule) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetCycles(userID, budgetID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCycle], error)
	GetCycleSummary(userID, budgetID, cycleID string) (*BudgetSummary, error)
}

// CycleRepository persists budget cycles. Cycles are only ever inserted.
type CycleRepository interface {
	// FindCycleContaining returns the cycle whose range includes date,
	// preferring the most recent start, or ErrCycleNotFound.
	FindCycleContaining(budgetID string, date time.Time) (*models.BudgetCycle, error)
	// CreateCycle inserts a cycle for p. If another caller already stored a
	// cycle with the same start, that row is returned instead.
	CreateCycle(budgetID string, p cycle.Period) (*models.BudgetCycle, error)
	// Neighbors returns the closest cycles starting before and after date;
	// either may be nil.
	Neighbors(budgetID string, date time.Time) (prev, next *models.BudgetCycle, err error)
	GetCycle(budgetID, cycleID string) (*models.BudgetCycle, error)
}

// CycleSynchronizer resolves the current cycle of a budget and materializes
// its fixed and recurring transactions.
type CycleSynchronizer interface {
	// Sync resolves the cycle containing today.
	Sync(userID, budgetID string) (*models.BudgetCycle, error)
	// SyncAt resolves the cycle containing ref's calendar day.
	SyncAt(userID, budgetID string, ref time.Time) (*models.BudgetCycle, error)
	// Today returns the current calendar day as the synchronizer sees it.
	Today() time.Time
}

// ProvisionServicer defines the contract for per-category budget allocations.
type ProvisionServicer interface {
	CreateProvision(userID, budgetID, categoryID string, amount int64, notes string) (*models.Provision, error)
	GetBudgetProvisions(userID, budgetID string) ([]models.Provision, error)
	UpdateProvision(userID, budgetID, provisionID string, amount *int64, notes *string) (*models.Provision, error)
	DeleteProvision(userID, budgetID, provisionID string) error
}

// FixedExpenseServicer defines the contract for fixed expense definitions.
type FixedExpenseServicer interface {
	CreateFixedExpense(userID, budgetID string, categoryID *string, name string, amount int64, description string) (*models.FixedExpense, error)
	GetBudgetFixedExpenses(userID, budgetID string) ([]models.FixedExpense, error)
	UpdateFixedExpense(userID, budgetID, expenseID string, categoryID, name *string, amount *int64, description *string) (*models.FixedExpense, error)
	DeleteFixedExpense(userID, budgetID, expenseID string) error
}

// RecurringExpenseServicer defines the contract for recurring expense definitions.
type RecurringExpenseServicer interface {
	CreateRecurringExpense(userID, budgetID string, categoryID *string, name string, amount int64, description string, schedule cycle.Rule) (*models.RecurringExpense, error)
	GetBudgetRecurringExpenses(userID, budgetID string) ([]models.RecurringExpense, error)
	UpdateRecurringExpense(userID, budgetID, expenseID string, categoryID, name *string, amount *int64, description *string, schedule *cycle.Rule) (*models.RecurringExpense, error)
	DeleteRecurringExpense(userID, budgetID, expenseID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
// A nil CycleID means the budget's current cycle.
type TransactionFilter struct {
	CycleID    *string
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	Source     *models.TransactionSource
	CategoryID *string
}

// TransactionServicer defines the contract for ledger entries.
type TransactionServicer interface {
	// CreateTransaction records a manual entry. A nil date means today. The
	// entry joins the cycle containing its date.
	CreateTransaction(userID, budgetID string, transactionType models.TransactionType, categoryID *string, amount int64, description string, date *time.Time) (*models.Transaction, *models.BudgetCycle, error)
	GetBudgetTransactions(userID, budgetID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}
