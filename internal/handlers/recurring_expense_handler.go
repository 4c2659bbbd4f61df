package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/services"
)

// RecurringExpenseHandler handles recurring expense definitions.
type RecurringExpenseHandler struct {
	recurringExpenseService services.RecurringExpenseServicer
	sync                    services.CycleSynchronizer
}

// NewRecurringExpenseHandler creates a new RecurringExpenseHandler.
func NewRecurringExpenseHandler(recurringExpenseService services.RecurringExpenseServicer, sync services.CycleSynchronizer) *RecurringExpenseHandler {
	return &RecurringExpenseHandler{recurringExpenseService: recurringExpenseService, sync: sync}
}

// CreateRecurringExpenseRequest represents the request payload for a recurring
// expense. weekly needs day_of_week, monthly needs day_of_month, yearly needs
// month_of_year and day_of_month.
type CreateRecurringExpenseRequest struct {
	CategoryID  *string         `json:"category_id" binding:"omitempty,uuid"`
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Amount      int64           `json:"amount" binding:"required,gt=0"`
	Description string          `json:"description" binding:"max=500"`
	Frequency   cycle.Frequency `json:"frequency" binding:"required,frequency"`
	DayOfWeek   *int            `json:"day_of_week" binding:"omitempty,weekday"`
	DayOfMonth  *int            `json:"day_of_month" binding:"omitempty,anchor_day"`
	MonthOfYear *int            `json:"month_of_year" binding:"omitempty,month"`
}

// UpdateRecurringExpenseRequest represents the request payload for updating a
// recurring expense. Sending frequency replaces the whole schedule.
type UpdateRecurringExpenseRequest struct {
	CategoryID  *string          `json:"category_id" binding:"omitempty,uuid"`
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Amount      *int64           `json:"amount" binding:"omitempty,gt=0"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Frequency   *cycle.Frequency `json:"frequency" binding:"omitempty,frequency"`
	DayOfWeek   *int             `json:"day_of_week" binding:"omitempty,weekday"`
	DayOfMonth  *int             `json:"day_of_month" binding:"omitempty,anchor_day"`
	MonthOfYear *int             `json:"month_of_year" binding:"omitempty,month"`
}

// CreateRecurringExpense handles defining a new recurring expense.
// @Summary     Create a recurring expense
// @Description Define a charge with its own weekly, monthly or yearly schedule. Occurrences inside the current cycle are posted immediately.
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                        true "Budget ID"
// @Param       request body CreateRecurringExpenseRequest true "Recurring expense details"
// @Success     201 {object} models.RecurringExpense "Recurring expense created"
// @Failure     400 {object} ErrorResponse "Invalid input or schedule"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/recurring-expenses [post]
func (h *RecurringExpenseHandler) CreateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	schedule := ruleFromFields(req.Frequency, req.DayOfWeek, req.DayOfMonth, req.MonthOfYear)
	expense, err := h.recurringExpenseService.CreateRecurringExpense(userID, budgetID, req.CategoryID, req.Name, req.Amount, req.Description, schedule)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.sync.Sync(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_expense": expense})
}

// GetRecurringExpenses handles listing a budget's recurring expenses.
// @Summary     Get recurring expenses
// @Description List the recurring expense definitions of a budget
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array} models.RecurringExpense "Recurring expenses"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/recurring-expenses [get]
func (h *RecurringExpenseHandler) GetRecurringExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.recurringExpenseService.GetBudgetRecurringExpenses(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expenses": expenses})
}

// UpdateRecurringExpense handles editing a recurring expense.
// @Summary     Update recurring expense
// @Description Edit a recurring expense definition. Transactions already posted keep their original values.
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path string                        true "Budget ID"
// @Param       expenseId path string                        true "Recurring expense ID"
// @Param       request   body UpdateRecurringExpenseRequest true "Updated fields"
// @Success     200 {object} models.RecurringExpense "Updated recurring expense"
// @Failure     400 {object} ErrorResponse "Invalid input or schedule"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or recurring expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/recurring-expenses/{expenseId} [put]
func (h *RecurringExpenseHandler) UpdateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "expenseId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var schedule *cycle.Rule
	if req.Frequency != nil {
		r := ruleFromFields(*req.Frequency, req.DayOfWeek, req.DayOfMonth, req.MonthOfYear)
		schedule = &r
	} else if req.DayOfWeek != nil || req.DayOfMonth != nil || req.MonthOfYear != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency is required when changing the schedule"))
		return
	}

	expense, err := h.recurringExpenseService.UpdateRecurringExpense(userID, budgetID, expenseID, req.CategoryID, req.Name, req.Amount, req.Description, schedule)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.sync.Sync(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": expense})
}

// DeleteRecurringExpense handles removing a recurring expense.
// @Summary     Delete recurring expense
// @Description Remove a recurring expense definition. Transactions already posted are kept.
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path string true "Budget ID"
// @Param       expenseId path string true "Recurring expense ID"
// @Success     200 {object} map[string]string "Recurring expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or recurring expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/recurring-expenses/{expenseId} [delete]
func (h *RecurringExpenseHandler) DeleteRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "expenseId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringExpenseService.DeleteRecurringExpense(userID, budgetID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted successfully"})
}
