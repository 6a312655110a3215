// Package daydetail aggregates the appointments and expenses of one day at
// one location and manages deletion from either list.
package daydetail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"golang.org/x/sync/errgroup"
)

// Tab selects which list of the day is shown.
type Tab int

// Tabs of the day detail.
const (
	TabAppointments Tab = iota
	TabExpenses
)

func (t Tab) String() string {
	if t == TabExpenses {
		return "Expenses"
	}
	return "Appointments"
}

// Notices shown when delete mode cannot be entered.
const (
	NoticeNoAppointments = "There are no appointments to delete on this day"
	NoticeNoExpenses     = "There are no expenses to delete on this day"
)

// DayRequest is a tagged load of one day.
type DayRequest struct {
	Date       time.Time
	Scope      service.Scope
	Generation uint64
}

// AppointmentsResult answers the appointment half of a DayRequest.
type AppointmentsResult struct {
	Err          error
	Appointments []model.AppointmentSummary
	DayRequest
}

// ExpensesResult answers the expense half of a DayRequest.
type ExpensesResult struct {
	Err      error
	Expenses []model.ExpenseRecord
	DayRequest
}

// Target names a record to delete.
type Target struct {
	Tab Tab
	ID  int64
}

// DeleteResult is the outcome of a deletion request.
type DeleteResult struct {
	Err error
	Target
}

// Aggregator holds the state of the day detail surface.
type Aggregator struct {
	date         time.Time
	appointments service.Appointments
	expenses     service.Expenses
	bus          *eventbus.Bus

	apptErr  error
	expErr   error
	apptList []model.AppointmentSummary
	expList  []model.ExpenseRecord
	notice   string

	scope      service.Scope
	generation uint64
	activeTab  Tab
	apptLoaded bool
	expLoaded  bool
	deleteMode bool
}

// New creates an aggregator. bus may be nil in tests that do not observe
// broadcasts.
func New(appointments service.Appointments, expenses service.Expenses, bus *eventbus.Bus) *Aggregator {
	return &Aggregator{
		appointments: appointments,
		expenses:     expenses,
		bus:          bus,
	}
}

// Begin starts loading date at scope. Both lists are cleared and delete
// mode is left. The returned request tags the two fetches.
func (a *Aggregator) Begin(date time.Time, scope service.Scope) DayRequest {
	a.generation++
	a.date = model.DateOnly(date)
	a.scope = scope
	a.apptList, a.expList = nil, nil
	a.apptErr, a.expErr = nil, nil
	a.apptLoaded, a.expLoaded = false, false
	a.deleteMode = false
	a.notice = ""

	return DayRequest{Date: a.date, Scope: scope, Generation: a.generation}
}

// FetchAppointments loads the appointment half of req.
func FetchAppointments(ctx context.Context, svc service.Appointments, req DayRequest) AppointmentsResult {
	list, err := svc.ListAppointmentsByDay(ctx, req.Scope, req.Date)
	if err != nil {
		err = fmt.Errorf("failed to load appointments for %s: %w", req.Date.Format(model.DateLayout), err)
	}
	return AppointmentsResult{DayRequest: req, Appointments: list, Err: err}
}

// FetchExpenses loads the expense half of req.
func FetchExpenses(ctx context.Context, svc service.Expenses, req DayRequest) ExpensesResult {
	list, err := svc.ListExpensesByDay(ctx, req.Scope, req.Date)
	if err != nil {
		err = fmt.Errorf("failed to load expenses for %s: %w", req.Date.Format(model.DateLayout), err)
	}
	return ExpensesResult{DayRequest: req, Expenses: list, Err: err}
}

// ApplyAppointments stores res if it answers the latest request.
func (a *Aggregator) ApplyAppointments(res AppointmentsResult) bool {
	if res.Generation != a.generation {
		slog.Debug("Dropping stale appointment list", "date", res.Date.Format(model.DateLayout))
		return false
	}
	a.apptLoaded = true
	a.apptErr = res.Err
	if res.Err != nil {
		a.apptList = nil
		return true
	}
	a.apptList = SortByTimeOfDay(res.Appointments)
	return true
}

// ApplyExpenses stores res if it answers the latest request.
func (a *Aggregator) ApplyExpenses(res ExpensesResult) bool {
	if res.Generation != a.generation {
		slog.Debug("Dropping stale expense list", "date", res.Date.Format(model.DateLayout))
		return false
	}
	a.expLoaded = true
	a.expErr = res.Err
	if res.Err != nil {
		a.expList = nil
		return true
	}
	a.expList = slices.Clone(res.Expenses)
	return true
}

// LoadDay loads both lists concurrently and waits for them. A failure of
// one list leaves the other intact; the returned error joins both.
func (a *Aggregator) LoadDay(ctx context.Context, date time.Time, scope service.Scope) error {
	req := a.Begin(date, scope)

	var (
		appts AppointmentsResult
		exps  ExpensesResult
		g     errgroup.Group
	)
	g.Go(func() error {
		appts = FetchAppointments(ctx, a.appointments, req)
		return nil
	})
	g.Go(func() error {
		exps = FetchExpenses(ctx, a.expenses, req)
		return nil
	})
	_ = g.Wait()

	a.ApplyAppointments(appts)
	a.ApplyExpenses(exps)
	return errors.Join(appts.Err, exps.Err)
}

// SortByTimeOfDay returns appts ordered by start time within the day.
func SortByTimeOfDay(appts []model.AppointmentSummary) []model.AppointmentSummary {
	sorted := slices.Clone(appts)
	slices.SortStableFunc(sorted, func(x, y model.AppointmentSummary) int {
		return int(model.TimeOfDayOf(x.Start)) - int(model.TimeOfDayOf(y.Start))
	})
	return sorted
}

// SetTab switches the visible list. Delete mode does not carry over.
func (a *Aggregator) SetTab(tab Tab) {
	if tab == a.activeTab {
		return
	}
	a.activeTab = tab
	a.deleteMode = false
}

// NextTab cycles between the two lists.
func (a *Aggregator) NextTab() {
	if a.activeTab == TabAppointments {
		a.SetTab(TabExpenses)
		return
	}
	a.SetTab(TabAppointments)
}

// ToggleDeleteMode flips delete mode. Entering it over an empty list is
// refused and a notice explains why.
func (a *Aggregator) ToggleDeleteMode() bool {
	if a.deleteMode {
		a.deleteMode = false
		return true
	}

	if a.activeLen() == 0 {
		if a.activeTab == TabExpenses {
			a.notice = NoticeNoExpenses
		} else {
			a.notice = NoticeNoAppointments
		}
		return false
	}

	a.deleteMode = true
	a.notice = ""
	return true
}

func (a *Aggregator) activeLen() int {
	if a.activeTab == TabExpenses {
		return len(a.expList)
	}
	return len(a.apptList)
}

// PerformDelete issues the deletion request for target.
func PerformDelete(ctx context.Context, appts service.Appointments, exps service.Expenses, target Target) DeleteResult {
	var err error
	switch target.Tab {
	case TabAppointments:
		err = appts.DeleteAppointment(ctx, target.ID)
	case TabExpenses:
		err = exps.DeleteExpense(ctx, target.ID)
	}
	return DeleteResult{Target: target, Err: err}
}

// ApplyDelete applies a confirmed deletion. On failure the lists are left
// untouched and a notice carries the reason.
func (a *Aggregator) ApplyDelete(res DeleteResult) error {
	if res.Err != nil {
		what := "appointment"
		if res.Tab == TabExpenses {
			what = "expense"
		}
		a.notice = common.UserMessage(res.Err, "Could not delete the "+what+". Please try again.")
		common.LogError(res.Err, "Delete failed", common.Fields{"kind": what, "id": res.ID})
		return res.Err
	}

	topic := eventbus.AppointmentChanged
	if res.Tab == TabExpenses {
		topic = eventbus.ExpenseChanged
		a.expList = slices.DeleteFunc(a.expList, func(e model.ExpenseRecord) bool { return e.ID == res.ID })
	} else {
		a.apptList = slices.DeleteFunc(a.apptList, func(ap model.AppointmentSummary) bool { return ap.ID == res.ID })
	}

	a.deleteMode = false
	a.notice = ""
	if a.bus != nil {
		a.bus.Publish(topic)
	}
	return nil
}

// DeleteAppointment deletes an appointment and waits for the server.
func (a *Aggregator) DeleteAppointment(ctx context.Context, id int64) error {
	return a.ApplyDelete(PerformDelete(ctx, a.appointments, a.expenses, Target{Tab: TabAppointments, ID: id}))
}

// DeleteExpense deletes an expense and waits for the server.
func (a *Aggregator) DeleteExpense(ctx context.Context, id int64) error {
	return a.ApplyDelete(PerformDelete(ctx, a.appointments, a.expenses, Target{Tab: TabExpenses, ID: id}))
}

// GenerateSummary summarises the loaded appointments.
func (a *Aggregator) GenerateSummary() Summary {
	return Summarize(a.date, a.apptList)
}

// Date returns the loaded day.
func (a *Aggregator) Date() time.Time { return a.date }

// Scope returns the business and location of the loaded day.
func (a *Aggregator) Scope() service.Scope { return a.scope }

// Tab returns the visible list.
func (a *Aggregator) Tab() Tab { return a.activeTab }

// DeleteMode reports whether delete mode is on.
func (a *Aggregator) DeleteMode() bool { return a.deleteMode }

// Notice returns the pending user notice, if any.
func (a *Aggregator) Notice() string { return a.notice }

// ClearNotice dismisses the pending notice.
func (a *Aggregator) ClearNotice() { a.notice = "" }

// Appointments returns the loaded appointments in time order.
func (a *Aggregator) Appointments() []model.AppointmentSummary { return a.apptList }

// Expenses returns the loaded expenses.
func (a *Aggregator) Expenses() []model.ExpenseRecord { return a.expList }

// AppointmentsState reports whether the appointment list has loaded and
// the error it failed with, if any.
func (a *Aggregator) AppointmentsState() (bool, error) { return a.apptLoaded, a.apptErr }

// ExpensesState reports whether the expense list has loaded and the error
// it failed with, if any.
func (a *Aggregator) ExpensesState() (bool, error) { return a.expLoaded, a.expErr }
