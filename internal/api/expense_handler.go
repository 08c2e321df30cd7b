package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/core"
	"github.com/example/expense-tracker/internal/middleware"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/session"
)

// ExpenseHandler handles API endpoints related to expenses.
type ExpenseHandler struct {
	errorMapper
	expenseService core.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(es core.ExpenseService, sessions *session.Store, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{errorMapper: errorMapper{sessions: sessions, logger: logger}, expenseService: es}
}

func (h *ExpenseHandler) listResponse(userID string, records []models.Expense) ExpenseListResponse {
	summary := h.expenseService.Summary(userID)
	return ExpenseListResponse{
		Expenses: newExpenseViews(records),
		Total:    summary.Total.StringFixed(2),
		State:    summary.State,
		Pending:  summary.Pending,
	}
}

// ListExpenses handles GET /expenses
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	user, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}

	records, err := h.expenseService.List(c.Request.Context(), user.ID, idToken)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listResponse(user.ID, records))
}

// CreateExpense handles POST /expenses
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	user, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}

	var req models.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	record, err := h.expenseService.Create(c.Request.Context(), user.ID, idToken, req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, newExpenseView(*record))
}

// UpdateExpense handles PUT /expenses/:id
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	user, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}
	expenseID := c.Param("id")
	if expenseID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Expense ID is required"})
		return
	}

	var req models.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	record, err := h.expenseService.Update(c.Request.Context(), user.ID, idToken, expenseID, req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, newExpenseView(*record))
}

// DeleteExpense handles DELETE /expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	user, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}
	expenseID := c.Param("id")
	if expenseID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Expense ID is required"})
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), user.ID, idToken, expenseID); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
