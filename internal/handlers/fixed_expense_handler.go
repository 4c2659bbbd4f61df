package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/services"
)

// FixedExpenseHandler handles fixed expense definitions.
type FixedExpenseHandler struct {
	fixedExpenseService services.FixedExpenseServicer
	sync                services.CycleSynchronizer
}

// NewFixedExpenseHandler creates a new FixedExpenseHandler.
func NewFixedExpenseHandler(fixedExpenseService services.FixedExpenseServicer, sync services.CycleSynchronizer) *FixedExpenseHandler {
	return &FixedExpenseHandler{fixedExpenseService: fixedExpenseService, sync: sync}
}

// CreateFixedExpenseRequest represents the request payload for a fixed expense.
type CreateFixedExpenseRequest struct {
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Amount      int64   `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"max=500"`
}

// UpdateFixedExpenseRequest represents the request payload for updating a fixed expense.
type UpdateFixedExpenseRequest struct {
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Amount      *int64  `json:"amount" binding:"omitempty,gt=0"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// CreateFixedExpense handles defining a new fixed expense.
// @Summary     Create a fixed expense
// @Description Define a charge posted once per cycle on its start date. The current cycle is populated immediately.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Budget ID"
// @Param       request body CreateFixedExpenseRequest true "Fixed expense details"
// @Success     201 {object} models.FixedExpense "Fixed expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/fixed-expenses [post]
func (h *FixedExpenseHandler) CreateFixedExpense(c *gin.Context) {
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

	var req CreateFixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.fixedExpenseService.CreateFixedExpense(userID, budgetID, req.CategoryID, req.Name, req.Amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.sync.Sync(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"fixed_expense": expense})
}

// GetFixedExpenses handles listing a budget's fixed expenses.
// @Summary     Get fixed expenses
// @Description List the fixed expense definitions of a budget
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array} models.FixedExpense "Fixed expenses"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/fixed-expenses [get]
func (h *FixedExpenseHandler) GetFixedExpenses(c *gin.Context) {
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

	expenses, err := h.fixedExpenseService.GetBudgetFixedExpenses(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fixed_expenses": expenses})
}

// UpdateFixedExpense handles editing a fixed expense.
// @Summary     Update fixed expense
// @Description Edit a fixed expense definition. Transactions already posted keep their original values.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path string                    true "Budget ID"
// @Param       expenseId path string                    true "Fixed expense ID"
// @Param       request   body UpdateFixedExpenseRequest true "Updated fields"
// @Success     200 {object} models.FixedExpense "Updated fixed expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or fixed expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/fixed-expenses/{expenseId} [put]
func (h *FixedExpenseHandler) UpdateFixedExpense(c *gin.Context) {
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

	var req UpdateFixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.fixedExpenseService.UpdateFixedExpense(userID, budgetID, expenseID, req.CategoryID, req.Name, req.Amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.sync.Sync(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fixed_expense": expense})
}

// DeleteFixedExpense handles removing a fixed expense.
// @Summary     Delete fixed expense
// @Description Remove a fixed expense definition. Transactions already posted are kept.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path string true "Budget ID"
// @Param       expenseId path string true "Fixed expense ID"
// @Success     200 {object} map[string]string "Fixed expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or fixed expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/fixed-expenses/{expenseId} [delete]
func (h *FixedExpenseHandler) DeleteFixedExpense(c *gin.Context) {
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

	if err := h.fixedExpenseService.DeleteFixedExpense(userID, budgetID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fixed expense deleted successfully"})
}
