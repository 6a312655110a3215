package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportPeriod is the span a financial report covers.
type ReportPeriod string

// Report periods.
const (
	PeriodDay   ReportPeriod = "day"
	PeriodMonth ReportPeriod = "month"
	PeriodYear  ReportPeriod = "year"
)

// EntryKind tells income lines from expense lines.
type EntryKind string

// Report entry kinds.
const (
	EntryIncome  EntryKind = "income"
	EntryExpense EntryKind = "expense"
)

// ReportEntry is one line of a financial report.
type ReportEntry struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Details     string
	Kind        EntryKind
}

// FinancialReport summarizes income and expenses for a period at a location.
type FinancialReport struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetProfit    decimal.Decimal
	BusinessName string
	LocationName string
	Entries      []ReportEntry
}

// WorkingDay is the opening schedule for one weekday.
// Weekday follows the backend numbering: Monday = 0 ... Sunday = 6.
type WorkingDay struct {
	Weekday int
	Opens   TimeOfDay
	Closes  TimeOfDay
	Closed  bool
}
