package components

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/frontdesk/internal/hours"
	"github.com/Veraticus/frontdesk/internal/location"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HeaderModel shows the active location and whether it is open right now.
type HeaderModel struct {
	theme     themes.Theme
	schedule  *hours.Schedule
	locations *location.Context
	svc       service.WorkingHours
	now       func() time.Time
	timeout   time.Duration
	status    hours.Status
}

// NewHeaderModel creates the header.
func NewHeaderModel(theme themes.Theme, locations *location.Context, svc service.WorkingHours, now func() time.Time, timeout time.Duration) HeaderModel {
	return HeaderModel{
		theme:     theme,
		schedule:  &hours.Schedule{},
		locations: locations,
		svc:       svc,
		now:       now,
		timeout:   timeout,
		status:    hours.StatusUnknown,
	}
}

// Refresh reloads the working hours of the active location.
func (m HeaderModel) Refresh() tea.Cmd {
	req := m.schedule.Begin(m.locations.Active())
	svc, timeout := m.svc, m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return HoursLoadedMsg{Result: hours.Fetch(ctx, svc, req)}
	}
}

// Status returns the last evaluated status.
func (m HeaderModel) Status() hours.Status {
	return m.status
}

// Update handles messages. The status is re-evaluated on every tick.
func (m HeaderModel) Update(msg tea.Msg) (HeaderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case HoursLoadedMsg:
		if m.schedule.Apply(msg.Result) {
			m.status = m.schedule.Status(m.now())
		}
	case TickMsg:
		m.status = m.schedule.Status(time.Time(msg))
	}
	return m, nil
}

// View renders the header line.
func (m HeaderModel) View(width int) string {
	name := "No location"
	if l, ok := m.locations.ActiveLocation(); ok {
		name = l.Name
	}

	var status string
	switch m.status {
	case hours.StatusOpen:
		status = m.theme.StatusOpen.Render("● Open")
		if day, ok := m.schedule.Today(m.now()); ok {
			status += m.theme.Faint.Render(fmt.Sprintf(" until %s", day.Closes))
		}
	case hours.StatusClosed:
		status = m.theme.StatusClosed.Render("● Closed")
	default:
		status = m.theme.StatusUnknown.Render("○ Hours unknown")
	}

	left := m.theme.Bold.Foreground(m.theme.Primary).Render("Front Desk") + "  " + m.theme.Normal.Render(name)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(status), 1)
	return left + lipgloss.NewStyle().Width(gap).Render("") + status
}
