package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
	"budgetly/internal/pagination"
	"budgetly/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	sync          services.CycleSynchronizer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, sync services.CycleSynchronizer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, sync: sync}
}

// CreateBudgetRequest represents the request payload for creating a budget.
// Which anchor fields are required depends on reset_type: weekly needs
// reset_dow, monthly needs reset_dom, yearly needs reset_month and reset_dom.
type CreateBudgetRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" binding:"max=500"`
	ResetType   cycle.Frequency `json:"reset_type" binding:"required,frequency"`
	ResetDOW    *int            `json:"reset_dow" binding:"omitempty,weekday"`
	ResetDOM    *int            `json:"reset_dom" binding:"omitempty,anchor_day"`
	ResetMonth  *int            `json:"reset_month" binding:"omitempty,month"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
// Sending reset_type replaces the whole reset rule.
type UpdateBudgetRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	ResetType   *cycle.Frequency `json:"reset_type" binding:"omitempty,frequency"`
	ResetDOW    *int             `json:"reset_dow" binding:"omitempty,weekday"`
	ResetDOM    *int             `json:"reset_dom" binding:"omitempty,anchor_day"`
	ResetMonth  *int             `json:"reset_month" binding:"omitempty,month"`
}

// BudgetResponse pairs a budget with its current cycle.
type BudgetResponse struct {
	Budget *models.Budget      `json:"budget"`
	Cycle  *models.BudgetCycle `json:"cycle"`
}

// ruleFromFields builds a reset rule from the request anchor fields.
// Missing anchors become zero, which Validate rejects.
func ruleFromFields(frequency cycle.Frequency, weekday, day, month *int) cycle.Rule {
	deref := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	return cycle.Rule{Frequency: frequency, Weekday: deref(weekday), Day: deref(day), Month: deref(month)}
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a budget with a weekly, monthly or yearly reset rule. The current cycle is resolved immediately.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} BudgetResponse "Budget created with its current cycle"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Invalid reset rule"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule := ruleFromFields(req.ResetType, req.ResetDOW, req.ResetDOM, req.ResetMonth)
	budget, err := h.budgetService.CreateBudget(userID, req.Name, req.Description, rule)
	if err != nil {
		respondWithError(c, err)
		return
	}

	current, err := h.sync.Sync(userID, budget.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BudgetResponse{Budget: budget, Cycle: current})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets for the authenticated user
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a budget and its current cycle. Resolving the cycle materializes any pending fixed and recurring expenses.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} BudgetResponse "Budget with current cycle"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     422 {object} ErrorResponse "Invalid reset rule"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
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

	current, err := h.sync.Sync(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Budget: budget, Cycle: current})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Update a budget's name, description or reset rule. A new reset rule applies from the next cycle; past cycles are never rewritten.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} BudgetResponse "Updated budget with current cycle"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     422 {object} ErrorResponse "Invalid reset rule"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
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

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var rule *cycle.Rule
	if req.ResetType != nil {
		r := ruleFromFields(*req.ResetType, req.ResetDOW, req.ResetDOM, req.ResetMonth)
		rule = &r
	} else if req.ResetDOW != nil || req.ResetDOM != nil || req.ResetMonth != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "reset_type is required when changing the reset rule"))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, req.Name, req.Description, rule)
	if err != nil {
		respondWithError(c, err)
		return
	}

	current, err := h.sync.Sync(userID, budget.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Budget: budget, Cycle: current})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
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

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBudgetCycles handles listing a budget's cycle history.
// @Summary     Get budget cycles
// @Description Get a paginated list of the budget's cycles, newest first
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Budget ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetCycle] "Paginated cycles"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/cycles [get]
func (h *BudgetHandler) GetBudgetCycles(c *gin.Context) {
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

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetBudgetCycles(userID, budgetID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetSummary handles the provisioned-versus-spent report.
// @Summary     Get budget summary
// @Description Compare provisions with actual spending for a cycle. Defaults to the current cycle.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id       path  string true  "Budget ID"
// @Param       cycle_id query string false "Cycle ID (default: current cycle)"
// @Success     200 {object} services.BudgetSummary "Cycle summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/summary [get]
func (h *BudgetHandler) GetBudgetSummary(c *gin.Context) {
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

	requested, err := parseOptionalID(queryPtr(c, "cycle_id"), "cycle_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	current, err := h.sync.Sync(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycleID := current.ID
	if requested != nil {
		cycleID = *requested
	}

	summary, err := h.budgetService.GetCycleSummary(userID, budgetID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func queryPtr(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}
