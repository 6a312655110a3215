package components

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/daydetail"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DayDetailModel shows the appointments and expenses of one day.
type DayDetailModel struct {
	theme       themes.Theme
	agg         *daydetail.Aggregator
	appts       service.Appointments
	exps        service.Expenses
	scope       func() service.Scope
	timeout     time.Duration
	cursor      int
	deleting    bool
	showSummary bool
}

// NewDayDetailModel creates the day detail surface around agg.
func NewDayDetailModel(theme themes.Theme, agg *daydetail.Aggregator, appts service.Appointments, exps service.Expenses, scope func() service.Scope, timeout time.Duration) DayDetailModel {
	return DayDetailModel{
		theme:   theme,
		agg:     agg,
		appts:   appts,
		exps:    exps,
		scope:   scope,
		timeout: timeout,
	}
}

// Load starts loading date at the active location. Both lists load
// independently.
func (m *DayDetailModel) Load(date time.Time) tea.Cmd {
	req := m.agg.Begin(date, m.scope())
	m.cursor = 0
	m.deleting = false
	appts, exps, timeout := m.appts, m.exps, m.timeout

	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return DayAppointmentsMsg{Result: daydetail.FetchAppointments(ctx, appts, req)}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return DayExpensesMsg{Result: daydetail.FetchExpenses(ctx, exps, req)}
		},
	)
}

// Reload reloads the current day.
func (m *DayDetailModel) Reload() tea.Cmd {
	return m.Load(m.agg.Date())
}

// Date returns the shown day.
func (m DayDetailModel) Date() time.Time {
	return m.agg.Date()
}

// Aggregator returns the state behind the surface.
func (m DayDetailModel) Aggregator() *daydetail.Aggregator {
	return m.agg
}

// Update handles messages.
func (m DayDetailModel) Update(msg tea.Msg) (DayDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case DayAppointmentsMsg:
		m.agg.ApplyAppointments(msg.Result)
		m.clampCursor()

	case DayExpensesMsg:
		m.agg.ApplyExpenses(msg.Result)
		m.clampCursor()

	case DeleteDoneMsg:
		m.deleting = false
		_ = m.agg.ApplyDelete(msg.Result)
		m.clampCursor()

	case tea.KeyMsg:
		if m.deleting {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DayDetailModel) handleKey(msg tea.KeyMsg) (DayDetailModel, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.agg.NextTab()
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.activeLen()-1 {
			m.cursor++
		}
	case "ctrl+d":
		m.agg.ToggleDeleteMode()
	case "enter", "x":
		if m.agg.DeleteMode() {
			cmd := m.deleteAtCursor()
			return m, cmd
		}
	case "p":
		m.showSummary = !m.showSummary
	case "ctrl+n":
		date := m.agg.Date()
		return m, func() tea.Msg { return OpenWizardMsg{Date: date, FixedDate: true} }
	case "e":
		date := m.agg.Date()
		return m, func() tea.Msg { return OpenExpenseFormMsg{Date: date} }
	case "esc":
		switch {
		case m.agg.DeleteMode():
			m.agg.ToggleDeleteMode()
		case m.showSummary:
			m.showSummary = false
		default:
			m.showSummary = false
			m.agg.ClearNotice()
			return m, func() tea.Msg { return CloseDayMsg{} }
		}
	}
	return m, nil
}

func (m *DayDetailModel) deleteAtCursor() tea.Cmd {
	target, ok := m.targetAtCursor()
	if !ok {
		return nil
	}
	m.deleting = true
	appts, exps, timeout := m.appts, m.exps, m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return DeleteDoneMsg{Result: daydetail.PerformDelete(ctx, appts, exps, target)}
	}
}

func (m DayDetailModel) targetAtCursor() (daydetail.Target, bool) {
	if m.agg.Tab() == daydetail.TabExpenses {
		list := m.agg.Expenses()
		if m.cursor >= len(list) {
			return daydetail.Target{}, false
		}
		return daydetail.Target{Tab: daydetail.TabExpenses, ID: list[m.cursor].ID}, true
	}
	list := m.agg.Appointments()
	if m.cursor >= len(list) {
		return daydetail.Target{}, false
	}
	return daydetail.Target{Tab: daydetail.TabAppointments, ID: list[m.cursor].ID}, true
}

func (m DayDetailModel) activeLen() int {
	if m.agg.Tab() == daydetail.TabExpenses {
		return len(m.agg.Expenses())
	}
	return len(m.agg.Appointments())
}

func (m *DayDetailModel) clampCursor() {
	if n := m.activeLen(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View renders the day detail.
func (m DayDetailModel) View() string {
	if m.showSummary {
		return m.agg.GenerateSummary().Text()
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.agg.Date().Format("Monday, January 2, 2006")))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.agg.Tab() == daydetail.TabExpenses {
		b.WriteString(m.renderExpenses())
	} else {
		b.WriteString(m.renderAppointments())
	}

	if m.agg.DeleteMode() {
		b.WriteString("\n")
		b.WriteString(m.theme.StatusWarning.Render("Delete mode: enter deletes the highlighted entry, esc leaves"))
	}
	if n := m.agg.Notice(); n != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.StatusError.Render(n))
	}
	if m.deleting {
		b.WriteString("\n")
		b.WriteString(m.theme.StatusUnknown.Render("Deleting..."))
	}
	return b.String()
}

func (m DayDetailModel) renderTabs() string {
	tabs := []daydetail.Tab{daydetail.TabAppointments, daydetail.TabExpenses}
	out := make([]string, len(tabs))
	for i, t := range tabs {
		style := m.theme.TabInactive
		if t == m.agg.Tab() {
			style = m.theme.TabActive
		}
		out[i] = style.Render(t.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m DayDetailModel) renderAppointments() string {
	loaded, err := m.agg.AppointmentsState()
	switch {
	case err != nil:
		return m.theme.StatusError.Render("Could not load appointments")
	case !loaded:
		return m.theme.StatusUnknown.Render("Loading appointments...")
	}

	list := m.agg.Appointments()
	if len(list) == 0 {
		return m.theme.Faint.Render("No appointments")
	}

	lines := make([]string, len(list))
	for i, a := range list {
		line := fmt.Sprintf("%s  %-22s %-22s %10s", a.Start.Format("15:04"), a.CustomerName, a.ServiceName, a.Price.StringFixed(2))
		lines[i] = m.renderRow(i, line)
	}
	return strings.Join(lines, "\n")
}

func (m DayDetailModel) renderExpenses() string {
	loaded, err := m.agg.ExpensesState()
	switch {
	case err != nil:
		return m.theme.StatusError.Render("Could not load expenses")
	case !loaded:
		return m.theme.StatusUnknown.Render("Loading expenses...")
	}

	list := m.agg.Expenses()
	if len(list) == 0 {
		return m.theme.Faint.Render("No expenses")
	}

	lines := make([]string, len(list))
	for i, e := range list {
		line := fmt.Sprintf("%-30s %-10s %10s", e.Description, e.Category, e.Amount.StringFixed(2))
		lines[i] = m.renderRow(i, line)
	}
	return strings.Join(lines, "\n")
}

func (m DayDetailModel) renderRow(i int, line string) string {
	if i != m.cursor {
		return "  " + m.theme.Normal.Render(line)
	}
	if m.agg.DeleteMode() {
		return m.theme.StatusError.Render("✗ " + line)
	}
	return m.theme.Highlighted.Render("> " + line)
}
