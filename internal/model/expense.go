package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies an expense or invoice.
type ExpenseCategory string

// Expense categories offered by the entry form.
const (
	ExpenseOther     ExpenseCategory = "Other"
	ExpenseSupplies  ExpenseCategory = "Supplies"
	ExpenseUtilities ExpenseCategory = "Utilities"
	ExpenseRent      ExpenseCategory = "Rent"
	ExpenseWages     ExpenseCategory = "Wages"
)

// ExpenseCategories lists the categories in display order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseOther,
	ExpenseSupplies,
	ExpenseUtilities,
	ExpenseRent,
	ExpenseWages,
}

// ExpenseRecord is a logged expense for a day.
type ExpenseRecord struct {
	Amount      decimal.Decimal
	Description string
	Category    ExpenseCategory
	ID          int64
}

// NewExpense is the payload sent to create an expense.
type NewExpense struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Category    ExpenseCategory
	BusinessID  int64
	LocationID  int64
}
