package components

import (
	"time"

	"github.com/Veraticus/frontdesk/internal/booking"
	"github.com/Veraticus/frontdesk/internal/calendar"
	"github.com/Veraticus/frontdesk/internal/daydetail"
	"github.com/Veraticus/frontdesk/internal/expense"
	"github.com/Veraticus/frontdesk/internal/hours"
	"github.com/Veraticus/frontdesk/internal/report"
)

// OpenDayMsg requests the day detail surface for Date.
type OpenDayMsg struct {
	Date time.Time
}

// CloseDayMsg requests to go back to the calendar.
type CloseDayMsg struct{}

// OpenWizardMsg requests the booking wizard.
type OpenWizardMsg struct {
	Date      time.Time
	FixedDate bool
}

// WizardClosedMsg is sent when the wizard is cancelled or has booked.
// BookedID is zero on cancel.
type WizardClosedMsg struct {
	BookedID int64
}

// OpenExpenseFormMsg requests the expense form for Date.
type OpenExpenseFormMsg struct {
	Date time.Time
}

// ExpenseFormClosedMsg is sent when the expense form is cancelled or saved.
type ExpenseFormClosedMsg struct {
	Saved bool
}

// BadgesLoadedMsg carries a month index response.
type BadgesLoadedMsg struct {
	Result calendar.BadgeResult
}

// DayAppointmentsMsg carries the appointments of a day.
type DayAppointmentsMsg struct {
	Result daydetail.AppointmentsResult
}

// DayExpensesMsg carries the expenses of a day.
type DayExpensesMsg struct {
	Result daydetail.ExpensesResult
}

// DeleteDoneMsg carries the outcome of a delete.
type DeleteDoneMsg struct {
	Result daydetail.DeleteResult
}

// CatalogLoadedMsg carries the service catalog.
type CatalogLoadedMsg struct {
	Result booking.CatalogResult
}

// AvailabilityLoadedMsg carries an availability response.
type AvailabilityLoadedMsg struct {
	Result booking.AvailabilityResult
}

// BookingDoneMsg carries the outcome of a booking.
type BookingDoneMsg struct {
	Result booking.SubmitResult
}

// ExpenseSavedMsg carries the outcome of an expense submission.
type ExpenseSavedMsg struct {
	Result expense.SubmitResult
}

// ReportLoadedMsg carries a financial report response.
type ReportLoadedMsg struct {
	Result report.Result
}

// HoursLoadedMsg carries the working hours of a location.
type HoursLoadedMsg struct {
	Result hours.Result
}

// TickMsg is the periodic clock signal driving time-dependent state.
type TickMsg time.Time
