package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/model"
	"github.com/iliyamo/gym-management/internal/permission"
	"github.com/iliyamo/gym-management/internal/repository"
)

// ExpenseHandler records and lists operating costs of a gym.
type ExpenseHandler struct {
	Admins   *repository.AdminRepo
	Staff    *repository.StaffRepo
	Expenses *repository.ExpenseRepo
}

func NewExpenseHandler(a *repository.AdminRepo, s *repository.StaffRepo, e *repository.ExpenseRepo) *ExpenseHandler {
	return &ExpenseHandler{Admins: a, Staff: s, Expenses: e}
}

type addExpenseReq struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
	CreatedBy   uint64 `json:"createdBy"`
	CurrentUser string `json:"currentUser"`
}

type deleteExpenseReq struct {
	ExpenseID   uint64 `json:"expenseId"`
	UserID      uint64 `json:"userId"`
	CurrentUser string `json:"currentUser"`
}

type expensePart struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Amount    int64   `json:"amount"`
	Date      string  `json:"date"`
	Notes     string  `json:"notes,omitempty"`
	CreatedBy uint64  `json:"createdBy"`
	StaffID   *uint64 `json:"staffId,omitempty"`
}

func toExpensePart(e model.Expense) expensePart {
	return expensePart{
		ID: e.ID, Name: e.Name, Category: string(e.Category),
		Amount: e.Amount, Date: e.ExpenseDate.UTC().Format("2006-01-02"),
		Notes: e.Notes, CreatedBy: e.CreatedBy, StaffID: e.StaffID,
	}
}

// Add handles POST /expense/addExpense. The category must come from the
// fixed allow-list; an identical tuple for the same owner is rejected.
func (h *ExpenseHandler) Add(c echo.Context) error {
	var req addExpenseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CreatedBy == 0 || req.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/date/createdBy required"})
	}
	if !model.ValidExpenseCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown expense category"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.CreatedBy, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if !actor.Can(permission.ActionAdd) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	exp := model.Expense{
		CreatedBy:   actor.Owner(),
		StaffID:     actor.StaffID(),
		Name:        req.Name,
		Category:    model.ExpenseCategory(req.Category),
		Amount:      req.Amount,
		ExpenseDate: date,
		Notes:       req.Notes,
	}
	if err := h.Expenses.Create(ctx, &exp); err != nil {
		if err == repository.ErrExpenseExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "identical expense already recorded"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create expense failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "expense recorded", "expense": toExpensePart(exp)})
}

// Delete handles DELETE /expense/deleteExpense.
func (h *ExpenseHandler) Delete(c echo.Context) error {
	var req deleteExpenseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ExpenseID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expenseId/userId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.UserID, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if !actor.Can(permission.ActionDelete) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	if err := h.Expenses.DeleteByIDAndOwner(ctx, req.ExpenseID, actor.Owner()); err != nil {
		if err == repository.ErrExpenseNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "expense not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete expense failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "expense deleted", "deletedExpenseId": req.ExpenseID})
}

// List handles GET /expense/getExpenses/:adminId.
func (h *ExpenseHandler) List(c echo.Context) error {
	adminID, err := parseIDParam(c, "adminId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Expenses.ListByAdmin(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]expensePart, 0, len(rows))
	for _, e := range rows {
		out = append(out, toExpensePart(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"expenses": out})
}
