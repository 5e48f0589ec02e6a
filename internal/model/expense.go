package model

import "time"

// ExpenseCategory is the fixed allow-list for expense classification.
type ExpenseCategory string

const (
	ExpenseEquipment     ExpenseCategory = "equipment"
	ExpenseMaintenance   ExpenseCategory = "maintenance"
	ExpenseSalary        ExpenseCategory = "salary"
	ExpenseUtilities     ExpenseCategory = "utilities"
	ExpenseRent          ExpenseCategory = "rent"
	ExpenseMarketing     ExpenseCategory = "marketing"
	ExpenseMiscellaneous ExpenseCategory = "miscellaneous"
)

// ValidExpenseCategory reports whether s is in the allow-list.
func ValidExpenseCategory(s string) bool {
	switch ExpenseCategory(s) {
	case ExpenseEquipment, ExpenseMaintenance, ExpenseSalary,
		ExpenseUtilities, ExpenseRent, ExpenseMarketing, ExpenseMiscellaneous:
		return true
	}
	return false
}

// Expense is an operating cost recorded by an admin, optionally
// attributed to the staff who entered it. An identical
// (created_by, name, category, expense_date, amount) tuple is rejected
// as a duplicate.
type Expense struct {
	ID          uint64          // expenses.id
	CreatedBy   uint64          // expenses.created_by
	StaffID     *uint64         // expenses.staff_id (nullable)
	Name        string          // expenses.name
	Category    ExpenseCategory // expenses.category
	Amount      int64           // expenses.amount
	ExpenseDate time.Time       // expenses.expense_date
	Notes       string          // expenses.notes
	CreatedAt   time.Time       // expenses.created_at
}
