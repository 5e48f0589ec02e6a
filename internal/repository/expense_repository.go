package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gym-management/internal/model"
)

// ErrExpenseExists is returned when an identical expense tuple was
// already recorded for the owner.
var ErrExpenseExists = errors.New("identical expense already recorded")

// ErrExpenseNotFound is returned when an expense lookup misses.
var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseRepo persists operating costs recorded by an admin or its staff.
type ExpenseRepo struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

// Create inserts an expense after rejecting an identical
// (name, category, expense_date, amount) tuple for the same owner.
func (r *ExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	var existing uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM expenses WHERE created_by=? AND name=? AND category=? AND expense_date=? AND amount=? LIMIT 1`,
		e.CreatedBy, e.Name, e.Category, e.ExpenseDate, e.Amount).Scan(&existing)
	if err == nil {
		return ErrExpenseExists
	}
	if err != sql.ErrNoRows {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (created_by, staff_id, name, category, amount, expense_date, notes) VALUES (?,?,?,?,?,?,?)",
		e.CreatedBy, e.StaffID, e.Name, e.Category, e.Amount, e.ExpenseDate, e.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM expenses WHERE id=?", e.ID).Scan(&e.CreatedAt)
}

// ListByAdmin returns the admin's expenses, newest first.
func (r *ExpenseRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_by, staff_id, name, category, amount, expense_date, notes, created_at
		 FROM expenses WHERE created_by=? ORDER BY expense_date DESC, id DESC`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Expense, 0)
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.CreatedBy, &e.StaffID, &e.Name, &e.Category,
			&e.Amount, &e.ExpenseDate, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteByIDAndOwner removes an expense owned by the admin.
func (r *ExpenseRepo) DeleteByIDAndOwner(ctx context.Context, expenseID, adminID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id=? AND created_by=?", expenseID, adminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
