// Package service defines the contracts of the external collaborators the
// front desk client talks to.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
)

// Scope identifies the business and location a read is for.
type Scope struct {
	BusinessID int64
	LocationID int64
}

// Locations lists the locations of a business.
type Locations interface {
	ListLocations(ctx context.Context, businessID int64) ([]model.Location, error)
}

// Appointments reads and mutates booked appointments.
type Appointments interface {
	ListAppointmentsByDay(ctx context.Context, scope Scope, date time.Time) ([]model.AppointmentSummary, error)
	ListAppointmentsByMonth(ctx context.Context, scope Scope, year int, month time.Month) ([]model.AppointmentSummary, error)
	CreateAppointment(ctx context.Context, appt model.NewAppointment) (int64, error)
	DeleteAppointment(ctx context.Context, id int64) error
}

// Expenses reads and mutates logged expenses.
type Expenses interface {
	ListExpensesByDay(ctx context.Context, scope Scope, date time.Time) ([]model.ExpenseRecord, error)
	CreateExpense(ctx context.Context, expense model.NewExpense) (int64, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// Catalog lists the services bookable at a location.
type Catalog interface {
	ListServices(ctx context.Context, scope Scope) ([]model.ServiceCatalogEntry, error)
}

// Availability reports free slots. The backend owns the slot algorithm.
type Availability interface {
	QueryAvailability(ctx context.Context, query model.AvailabilityQuery) ([]model.AvailabilitySlot, error)
}

// Reports produces financial summaries.
type Reports interface {
	GetReport(ctx context.Context, scope Scope, period model.ReportPeriod, base time.Time) (*model.FinancialReport, error)
}

// WorkingHours reads the opening schedule of a location.
type WorkingHours interface {
	GetWorkingHours(ctx context.Context, locationID int64) ([]model.WorkingDay, error)
}

// Backend bundles every collaborator.
type Backend interface {
	Locations
	Appointments
	Expenses
	Catalog
	Availability
	Reports
	WorkingHours
}

// Preferences persists the small amount of client-side session state.
type Preferences interface {
	ActiveLocation(ctx context.Context) (int64, bool, error)
	SetActiveLocation(ctx context.Context, id int64) error
	SidebarCollapsed(ctx context.Context) (bool, error)
	SetSidebarCollapsed(ctx context.Context, collapsed bool) error
}
