package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// ExpenseHandler handles expense requests
type ExpenseHandler struct {
	expenseService ports.ExpenseService
	logger         *logger.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService ports.ExpenseService, logger *logger.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// ListExpenses godoc
// @Summary List expenses
// @Tags expenses
// @Produce json
// @Success 200 {array} entities.Expense
// @Router /expenses [get]
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	expenses, err := h.expenseService.ListExpenses(c.Request().Context())
	if err != nil {
		return httpError(h.logger, "List expenses", err)
	}
	return c.JSON(http.StatusOK, expenses)
}

// GetExpense godoc
// @Summary Get expense by ID
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} entities.Expense
// @Failure 404 {object} ports.ErrorResponse
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	expense, err := h.expenseService.GetExpense(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(h.logger, "Get expense", err)
	}
	return c.JSON(http.StatusOK, expense)
}

// CreateExpense godoc
// @Summary Record an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body ports.CreateExpenseRequest true "Expense data"
// @Success 201 {object} ports.ExpenseCreatedResponse
// @Failure 400 {object} ports.ErrorResponse
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	var req ports.CreateExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	expense, err := h.expenseService.CreateExpense(c.Request().Context(), req)
	if err != nil {
		return httpError(h.logger, "Create expense", err)
	}

	return c.JSON(http.StatusCreated, ports.ExpenseCreatedResponse{OK: true, Expense: expense})
}

// UpdateExpense godoc
// @Summary Update an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body ports.UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} ports.UpdatedResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	var req ports.UpdateExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	expense, err := h.expenseService.UpdateExpense(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(h.logger, "Update expense", err)
	}

	return c.JSON(http.StatusOK, ports.UpdatedResponse{OK: true, Updated: expense})
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} ports.OKResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	if err := h.expenseService.DeleteExpense(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(h.logger, "Delete expense", err)
	}
	return c.JSON(http.StatusOK, ports.OKResponse{OK: true})
}
