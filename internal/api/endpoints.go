package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Veraticus/frontdesk/internal/api/wire"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
)

var _ service.Backend = (*Client)(nil)

func scopeQuery(scope service.Scope) url.Values {
	q := url.Values{}
	q.Set("businessId", formatID(scope.BusinessID))
	q.Set("locationId", formatID(scope.LocationID))
	return q
}

// ListLocations returns the locations of a business.
func (c *Client) ListLocations(ctx context.Context, businessID int64) ([]model.Location, error) {
	var body []wire.Location
	if err := c.get(ctx, "businesses/"+formatID(businessID)+"/locations", nil, &body); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	out := make([]model.Location, 0, len(body))
	for _, l := range body {
		out = append(out, l.ToLocation())
	}
	return out, nil
}

// ListAppointmentsByDay returns the appointments on date at scope.
func (c *Client) ListAppointmentsByDay(ctx context.Context, scope service.Scope, date time.Time) ([]model.AppointmentSummary, error) {
	q := scopeQuery(scope)
	q.Set("date", date.Format(model.DateLayout))
	return c.listAppointments(ctx, "appointments/day", q)
}

// ListAppointmentsByMonth returns the appointments in a month at scope.
func (c *Client) ListAppointmentsByMonth(ctx context.Context, scope service.Scope, year int, month time.Month) ([]model.AppointmentSummary, error) {
	q := scopeQuery(scope)
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(int(month)))
	return c.listAppointments(ctx, "appointments/month", q)
}

func (c *Client) listAppointments(ctx context.Context, path string, q url.Values) ([]model.AppointmentSummary, error) {
	var body []wire.Appointment
	if err := c.get(ctx, path, q, &body); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	out := make([]model.AppointmentSummary, 0, len(body))
	for _, a := range body {
		s, err := a.ToSummary(c.loc)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CreateAppointment books an appointment and returns its id.
func (c *Client) CreateAppointment(ctx context.Context, appt model.NewAppointment) (int64, error) {
	var created wire.Created
	if err := c.send(ctx, http.MethodPost, "appointments", wire.FromNewAppointment(appt), &created); err != nil {
		return 0, fmt.Errorf("failed to create appointment: %w", err)
	}
	return created.ID, nil
}

// DeleteAppointment cancels an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id int64) error {
	if err := c.send(ctx, http.MethodDelete, "appointments/"+formatID(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete appointment %d: %w", id, err)
	}
	return nil
}

// ListExpensesByDay returns the expenses logged on date at scope.
func (c *Client) ListExpensesByDay(ctx context.Context, scope service.Scope, date time.Time) ([]model.ExpenseRecord, error) {
	q := scopeQuery(scope)
	q.Set("date", date.Format(model.DateLayout))

	var body []wire.Expense
	if err := c.get(ctx, "expenses/day", q, &body); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	out := make([]model.ExpenseRecord, 0, len(body))
	for _, e := range body {
		out = append(out, e.ToExpense())
	}
	return out, nil
}

// CreateExpense logs an expense and returns its id.
func (c *Client) CreateExpense(ctx context.Context, expense model.NewExpense) (int64, error) {
	var created wire.Created
	if err := c.send(ctx, http.MethodPost, "expenses", wire.FromNewExpense(expense), &created); err != nil {
		return 0, fmt.Errorf("failed to create expense: %w", err)
	}
	return created.ID, nil
}

// DeleteExpense removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	if err := c.send(ctx, http.MethodDelete, "expenses/"+formatID(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete expense %d: %w", id, err)
	}
	return nil
}

// ListServices returns the service catalog at scope.
func (c *Client) ListServices(ctx context.Context, scope service.Scope) ([]model.ServiceCatalogEntry, error) {
	var body []wire.Service
	if err := c.get(ctx, "catalog", scopeQuery(scope), &body); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	out := make([]model.ServiceCatalogEntry, 0, len(body))
	for _, s := range body {
		out = append(out, s.ToService())
	}
	return out, nil
}

// QueryAvailability returns the free slots matching query.
func (c *Client) QueryAvailability(ctx context.Context, query model.AvailabilityQuery) ([]model.AvailabilitySlot, error) {
	q := url.Values{}
	q.Set("locationId", formatID(query.LocationID))
	q.Set("date", query.Date.Format(model.DateLayout))
	q.Set("duration", strconv.Itoa(query.DurationMinutes))
	q.Set("earliest", query.Earliest.String())

	var body []wire.Slot
	if err := c.get(ctx, "availability", q, &body); err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	out := make([]model.AvailabilitySlot, 0, len(body))
	for _, s := range body {
		out = append(out, s.ToSlot())
	}
	return out, nil
}

// GetReport returns the financial report for period around base.
func (c *Client) GetReport(ctx context.Context, scope service.Scope, period model.ReportPeriod, base time.Time) (*model.FinancialReport, error) {
	q := scopeQuery(scope)
	q.Set("period", string(period))
	q.Set("baseDate", base.Format(model.DateLayout))

	var body wire.Report
	if err := c.get(ctx, "reports", q, &body); err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return body.ToReport(c.loc)
}

// GetWorkingHours returns the weekly schedule of a location.
func (c *Client) GetWorkingHours(ctx context.Context, locationID int64) ([]model.WorkingDay, error) {
	var body []wire.WorkingDay
	if err := c.get(ctx, "locations/"+formatID(locationID)+"/hours", nil, &body); err != nil {
		return nil, fmt.Errorf("failed to load working hours: %w", err)
	}
	out := make([]model.WorkingDay, 0, len(body))
	for _, d := range body {
		out = append(out, d.ToWorkingDay())
	}
	return out, nil
}
