package components

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/calendar"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const calendarCellWidth = 10

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// CalendarModel renders the month grid with appointment badges.
type CalendarModel struct {
	theme   themes.Theme
	engine  *calendar.Engine
	badges  *calendar.BadgeIndex
	appts   service.Appointments
	scope   func() service.Scope
	now     func() time.Time
	timeout time.Duration
	width   int
}

// NewCalendarModel creates a calendar showing the month of now().
func NewCalendarModel(theme themes.Theme, appts service.Appointments, scope func() service.Scope, now func() time.Time, timeout time.Duration) CalendarModel {
	return CalendarModel{
		theme:   theme,
		engine:  calendar.NewEngine(now()),
		badges:  calendar.NewBadgeIndex(),
		appts:   appts,
		scope:   scope,
		now:     now,
		timeout: timeout,
	}
}

// Refresh starts a badge load for the visible month at the active location.
// Badges of the previous month or location disappear immediately.
func (m CalendarModel) Refresh() tea.Cmd {
	year, month := m.engine.Visible()
	scope := m.scope()
	req := m.badges.Begin(year, month, scope.LocationID)
	appts, timeout := m.appts, m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return BadgesLoadedMsg{Result: calendar.FetchBadges(ctx, appts, scope.BusinessID, req)}
	}
}

// Update handles messages.
func (m CalendarModel) Update(msg tea.Msg) (CalendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case BadgesLoadedMsg:
		m.badges.Apply(msg.Result)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m CalendarModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	changed := false

	switch msg.String() {
	case "left", "h":
		changed = m.engine.MoveSelection(-1)
	case "right", "l":
		changed = m.engine.MoveSelection(1)
	case "up", "k":
		changed = m.engine.MoveSelection(-7)
	case "down", "j":
		changed = m.engine.MoveSelection(7)
	case "[", "pgup":
		changed = m.engine.PrevMonth()
	case "]", "pgdown":
		changed = m.engine.NextMonth()
	case "t":
		changed = m.engine.SelectDate(m.now())
	case "enter":
		selected, _ := m.engine.Selected()
		act := m.engine.ActivateDetail(selected)
		open := func() tea.Msg { return OpenDayMsg{Date: act.Date} }
		if act.MonthChanged {
			return tea.Batch(m.Refresh(), open)
		}
		return open
	default:
		return nil
	}

	if changed {
		return m.Refresh()
	}
	return nil
}

// JumpTo shows the given month.
func (m CalendarModel) JumpTo(year int, month time.Month) tea.Cmd {
	if m.engine.JumpTo(year, month) {
		return m.Refresh()
	}
	return nil
}

// Selected returns the selected date.
func (m CalendarModel) Selected() time.Time {
	d, _ := m.engine.Selected()
	return d
}

// Visible returns the visible year and month.
func (m CalendarModel) Visible() (int, time.Month) {
	return m.engine.Visible()
}

// Badges returns the month index backing the grid.
func (m CalendarModel) Badges() *calendar.BadgeIndex {
	return m.badges
}

// View renders the month grid.
func (m CalendarModel) View() string {
	year, month := m.engine.Visible()
	today := m.now()

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("%s %d", month, year)))
	b.WriteString("\n")

	header := make([]string, len(weekdayNames))
	for i, name := range weekdayNames {
		header[i] = m.theme.Weekday.Width(calendarCellWidth).Render(name)
	}
	b.WriteString(strings.Join(header, ""))
	b.WriteString("\n")

	cells := m.engine.Grid()
	for week := 0; week < calendar.GridSize/7; week++ {
		days := make([]string, 7)
		badges := make([]string, 7)
		for i := range 7 {
			cell := cells[week*7+i]
			days[i] = m.renderDay(cell, today)
			badges[i] = m.renderBadge(cell)
		}
		b.WriteString(strings.Join(days, ""))
		b.WriteString("\n")
		b.WriteString(strings.Join(badges, ""))
		b.WriteString("\n")
	}

	switch {
	case m.badges.Err() != nil:
		b.WriteString(m.theme.StatusError.Render("Could not load appointments for this month"))
	case !m.badges.Loaded():
		b.WriteString(m.theme.StatusUnknown.Render("Loading appointments..."))
	}

	return b.String()
}

func (m CalendarModel) renderDay(cell calendar.Cell, today time.Time) string {
	label := fmt.Sprintf("%2d", cell.Day())
	style := m.theme.Normal
	switch {
	case m.engine.IsSelected(cell.Date):
		style = m.theme.Selected
	case model.SameDay(cell.Date, today):
		style = m.theme.Today
	case cell.IsPadding:
		style = m.theme.Padding
	}
	return lipgloss.NewStyle().Width(calendarCellWidth).Render(style.Render(label))
}

func (m CalendarModel) renderBadge(cell calendar.Cell) string {
	label := ""
	if !cell.IsPadding {
		label = calendar.BadgeLabel(m.badges.CountOn(cell.Date))
	}
	return m.theme.Badge.Width(calendarCellWidth).Render(label)
}
