package calendar

import (
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
)

// Engine tracks the visible month and the selected date.
type Engine struct {
	selected     time.Time
	loc          *time.Location
	visibleYear  int
	visibleMonth time.Month
	hasSelection bool
}

// NewEngine creates an engine showing the month of today with today selected.
func NewEngine(today time.Time) *Engine {
	e := &Engine{loc: today.Location()}
	e.visibleYear, e.visibleMonth = today.Year(), today.Month()
	e.selected = model.DateOnly(today)
	e.hasSelection = true
	return e
}

// Visible returns the visible year and month.
func (e *Engine) Visible() (int, time.Month) {
	return e.visibleYear, e.visibleMonth
}

// Grid returns the cells of the visible month.
func (e *Engine) Grid() []Cell {
	return ComputeGrid(e.visibleYear, e.visibleMonth, e.loc)
}

// Selected returns the selected date.
func (e *Engine) Selected() (time.Time, bool) {
	return e.selected, e.hasSelection
}

// IsSelected reports whether d is the selected date.
func (e *Engine) IsSelected(d time.Time) bool {
	return e.hasSelection && model.SameDay(e.selected, d)
}

// SelectDate selects d. Selecting a day outside the visible month moves the
// calendar to that month. It reports whether the visible month changed, in
// which case the month index must be refreshed.
func (e *Engine) SelectDate(d time.Time) bool {
	e.selected = model.DateOnly(d.In(e.loc))
	e.hasSelection = true
	return e.show(e.selected.Year(), e.selected.Month())
}

// Activation is the outcome of activating a day.
type Activation struct {
	Date         time.Time
	MonthChanged bool
	OpenDetail   bool
}

// ActivateDetail selects d like SelectDate and asks for the day detail
// surface to open.
func (e *Engine) ActivateDetail(d time.Time) Activation {
	changed := e.SelectDate(d)
	return Activation{Date: e.selected, MonthChanged: changed, OpenDetail: true}
}

// MoveSelection shifts the selection by days, following it across months.
func (e *Engine) MoveSelection(days int) bool {
	base := e.selected
	if !e.hasSelection {
		base = time.Date(e.visibleYear, e.visibleMonth, 1, 0, 0, 0, 0, e.loc)
	}
	return e.SelectDate(base.AddDate(0, 0, days))
}

// PrevMonth shows the previous month.
func (e *Engine) PrevMonth() bool {
	return e.show(normalize(e.visibleYear, e.visibleMonth-1))
}

// NextMonth shows the next month.
func (e *Engine) NextMonth() bool {
	return e.show(normalize(e.visibleYear, e.visibleMonth+1))
}

// JumpTo shows the given month.
func (e *Engine) JumpTo(year int, month time.Month) bool {
	return e.show(normalize(year, month))
}

func (e *Engine) show(year int, month time.Month) bool {
	if year == e.visibleYear && month == e.visibleMonth {
		return false
	}
	e.visibleYear, e.visibleMonth = year, month
	return true
}
