package components

import (
	"context"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/location"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
)

// LocationSwitchedMsg reports the outcome of a location switch.
type LocationSwitchedMsg struct {
	Err error
}

// SidebarSavedMsg reports the outcome of persisting the collapse flag.
type SidebarSavedMsg struct {
	Err error
}

// SidebarModel lists the business locations and lets owners switch.
type SidebarModel struct {
	theme     themes.Theme
	locations *location.Context
	prefs     service.Preferences
	bus       *eventbus.Bus
	timeout   time.Duration
	collapsed bool
}

// NewSidebarModel creates the sidebar.
func NewSidebarModel(theme themes.Theme, locations *location.Context, prefs service.Preferences, bus *eventbus.Bus, collapsed bool, timeout time.Duration) SidebarModel {
	return SidebarModel{
		theme:     theme,
		locations: locations,
		prefs:     prefs,
		bus:       bus,
		collapsed: collapsed,
		timeout:   timeout,
	}
}

// Collapsed reports whether the sidebar is folded away.
func (m SidebarModel) Collapsed() bool {
	return m.collapsed
}

// Cycle switches an owner to the next location. Staff are locked and the
// call does nothing.
func (m SidebarModel) Cycle(step int) tea.Cmd {
	if m.locations.Locked() {
		return nil
	}
	locations, timeout := m.locations, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return LocationSwitchedMsg{Err: locations.Cycle(ctx, step)}
	}
}

// Toggle folds or unfolds the sidebar and persists the choice.
func (m *SidebarModel) Toggle() tea.Cmd {
	m.collapsed = !m.collapsed
	collapsed, prefs, bus, timeout := m.collapsed, m.prefs, m.bus, m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := prefs.SetSidebarCollapsed(ctx, collapsed)
		bus.Publish(eventbus.SidebarChanged)
		return SidebarSavedMsg{Err: err}
	}
}

// View renders the sidebar.
func (m SidebarModel) View() string {
	if m.collapsed {
		return ""
	}

	active := m.locations.Active()
	lines := []string{m.theme.Bold.Render("Locations")}
	for _, l := range m.locations.Locations() {
		row := "  " + l.Name
		if l.ID == active {
			row = m.theme.Selected.Render("▸ " + l.Name)
		}
		lines = append(lines, row)
	}
	if m.locations.Locked() {
		lines = append(lines, "", m.theme.Faint.Render("Assigned location"))
	} else {
		lines = append(lines, "", m.theme.Faint.Render("L: switch"))
	}

	if profile, ok := model.ProfileOf(m.locations.Identity()); ok {
		lines = append(lines, "", m.theme.Faint.Render(profile.DisplayName))
	}
	return m.theme.RoundedBox.Render(strings.Join(lines, "\n"))
}
