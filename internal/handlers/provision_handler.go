package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/services"
)

// ProvisionHandler handles per-category budget allocations.
type ProvisionHandler struct {
	provisionService services.ProvisionServicer
}

// NewProvisionHandler creates a new ProvisionHandler.
func NewProvisionHandler(provisionService services.ProvisionServicer) *ProvisionHandler {
	return &ProvisionHandler{provisionService: provisionService}
}

// CreateProvisionRequest represents the request payload for creating a provision.
type CreateProvisionRequest struct {
	CategoryID string `json:"category_id" binding:"required,uuid"`
	Amount     int64  `json:"amount" binding:"min=0"`
	Notes      string `json:"notes" binding:"max=500"`
}

// UpdateProvisionRequest represents the request payload for updating a provision.
type UpdateProvisionRequest struct {
	Amount *int64  `json:"amount" binding:"omitempty,min=0"`
	Notes  *string `json:"notes" binding:"omitempty,max=500"`
}

// CreateProvision handles planning an amount for a category.
// @Summary     Create a provision
// @Description Plan how much a budget may spend on a category each cycle
// @Tags        provisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Budget ID"
// @Param       request body CreateProvisionRequest true "Provision details"
// @Success     201 {object} models.Provision "Provision created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or category not found"
// @Failure     409 {object} ErrorResponse "Category already provisioned"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/provisions [post]
func (h *ProvisionHandler) CreateProvision(c *gin.Context) {
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

	var req CreateProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	provision, err := h.provisionService.CreateProvision(userID, budgetID, req.CategoryID, req.Amount, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"provision": provision})
}

// GetProvisions handles listing a budget's provisions.
// @Summary     Get provisions
// @Description List the provisions of a budget
// @Tags        provisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array} models.Provision "Provisions"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/provisions [get]
func (h *ProvisionHandler) GetProvisions(c *gin.Context) {
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

	provisions, err := h.provisionService.GetBudgetProvisions(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"provisions": provisions})
}

// UpdateProvision handles changing a provision.
// @Summary     Update provision
// @Description Change the amount or notes of a provision
// @Tags        provisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id          path string                 true "Budget ID"
// @Param       provisionId path string                 true "Provision ID"
// @Param       request     body UpdateProvisionRequest true "Updated provision"
// @Success     200 {object} models.Provision "Updated provision"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or provision not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/provisions/{provisionId} [put]
func (h *ProvisionHandler) UpdateProvision(c *gin.Context) {
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

	provisionID, err := parsePathID(c, "provisionId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	provision, err := h.provisionService.UpdateProvision(userID, budgetID, provisionID, req.Amount, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"provision": provision})
}

// DeleteProvision handles removing a provision.
// @Summary     Delete provision
// @Description Remove a provision from a budget
// @Tags        provisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id          path string true "Budget ID"
// @Param       provisionId path string true "Provision ID"
// @Success     200 {object} map[string]string "Provision deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or provision not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/provisions/{provisionId} [delete]
func (h *ProvisionHandler) DeleteProvision(c *gin.Context) {
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

	provisionID, err := parsePathID(c, "provisionId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.provisionService.DeleteProvision(userID, budgetID, provisionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Provision deleted successfully"})
}
