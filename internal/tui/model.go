// Package tui is the bubbletea front end of the front desk client.
package tui

import (
	"fmt"
	"time"

	"github.com/Veraticus/frontdesk/internal/booking"
	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/daydetail"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/expense"
	"github.com/Veraticus/frontdesk/internal/tui/components"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Surface is the frontmost view.
type Surface int

// Surfaces, back to front.
const (
	SurfaceCalendar Surface = iota
	SurfaceDay
	SurfaceReport
	SurfaceExpense
	SurfaceWizard
)

func (s Surface) String() string {
	switch s {
	case SurfaceDay:
		return "day"
	case SurfaceReport:
		return "report"
	case SurfaceExpense:
		return "expense"
	case SurfaceWizard:
		return "wizard"
	default:
		return "calendar"
	}
}

// Model holds the main TUI state.
type Model struct {
	theme       themes.Theme
	config      Config
	unsubscribe func()
	events      <-chan eventbus.Topic
	keymap      KeyMap
	help        help.Model
	status      string
	calendar    components.CalendarModel
	day         components.DayDetailModel
	wizard      components.WizardModel
	expense     components.ExpenseFormModel
	report      components.ReportModel
	sidebar     components.SidebarModel
	header      components.HeaderModel
	width       int
	height      int
	surface     Surface
	dayOpen     bool
	reportOpen  bool
	statusErr   bool
	showHelp    bool
	quitting    bool
}

// New creates the root model. Close releases its bus subscription.
func New(opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Backend == nil {
		return Model{}, fmt.Errorf("%w: backend is required", common.ErrMissingConfig)
	}
	if cfg.Locations == nil || cfg.Bus == nil || cfg.Preferences == nil {
		return Model{}, fmt.Errorf("%w: session is required", common.ErrMissingConfig)
	}
	return newModel(cfg), nil
}

func newModel(cfg Config) Model {
	events, unsubscribe := cfg.Bus.Channel(16,
		eventbus.LocationChanged,
		eventbus.AppointmentChanged,
		eventbus.ExpenseChanged,
		eventbus.SidebarChanged,
	)

	scope := cfg.Locations.Scope
	backend := cfg.Backend

	return Model{
		theme:       cfg.Theme,
		config:      cfg,
		events:      events,
		unsubscribe: unsubscribe,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		width:       cfg.Width,
		height:      cfg.Height,
		calendar:    components.NewCalendarModel(cfg.Theme, backend, scope, cfg.Now, cfg.Timeout),
		day: components.NewDayDetailModel(cfg.Theme,
			daydetail.New(backend, backend, cfg.Bus), backend, backend, scope, cfg.Timeout),
		report:  components.NewReportModel(cfg.Theme, backend, scope, cfg.Now(), cfg.Timeout),
		sidebar: components.NewSidebarModel(cfg.Theme, cfg.Locations, cfg.Preferences, cfg.Bus, cfg.SidebarCollapsed, cfg.Timeout),
		header:  components.NewHeaderModel(cfg.Theme, cfg.Locations, backend, cfg.Now, cfg.Timeout),
	}
}

// Close stops listening to the event bus.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Surface returns the frontmost surface.
func (m Model) Surface() Surface {
	return m.surface
}

// Init starts the first loads, the bus listener and the clock.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.calendar.Refresh(),
		m.header.Refresh(),
		listenBus(m.events),
		tick(m.config.TickInterval),
	}
	if m.config.AltScreen {
		cmds = append(cmds, tea.EnterAltScreen)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.calendar, cmd = m.calendar.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case busMsg:
		cmd = m.handleTopic(msg.topic)
		return m, tea.Batch(cmd, listenBus(m.events))

	case components.TickMsg:
		m.header, _ = m.header.Update(msg)
		if m.surface == SurfaceWizard {
			m.wizard.Tick()
		}
		return m, tick(m.config.TickInterval)

	case statusMsg:
		m.status, m.statusErr = msg.text, msg.isErr
		return m, nil

	// Surface transitions
	case components.OpenDayMsg:
		m.dayOpen = true
		m.surface = SurfaceDay
		cmd = m.day.Load(msg.Date)
		return m, cmd

	case components.CloseDayMsg:
		m.dayOpen = false
		m.surface = m.baseSurface()
		return m, nil

	case components.OpenWizardMsg:
		cmd = m.openWizard(msg)
		return m, cmd

	case components.WizardClosedMsg:
		m.surface = m.baseSurface()
		if msg.BookedID != 0 {
			return m, setStatus("Appointment booked", false)
		}
		return m, nil

	case components.OpenExpenseFormMsg:
		form := expense.New(m.config.Backend, m.config.Bus, m.config.Locations.Scope(), msg.Date)
		m.expense = components.NewExpenseFormModel(m.theme, form, m.config.Backend, m.config.Timeout)
		m.surface = SurfaceExpense
		return m, nil

	case components.ExpenseFormClosedMsg:
		m.surface = m.baseSurface()
		if msg.Saved {
			return m, setStatus("Expense saved", false)
		}
		return m, nil

	case components.LocationSwitchedMsg:
		if msg.Err != nil {
			common.LogError(msg.Err, "Location switch failed", nil)
			return m, setStatus("Could not switch location", true)
		}
		return m, nil

	case components.SidebarSavedMsg:
		if msg.Err != nil {
			common.LogError(msg.Err, "Saving sidebar state failed", nil)
		}
		return m, nil

	// Async results go to their owner whatever is in front.
	case components.BadgesLoadedMsg:
		m.calendar, cmd = m.calendar.Update(msg)
		return m, cmd

	case components.DayAppointmentsMsg, components.DayExpensesMsg, components.DeleteDoneMsg:
		m.day, cmd = m.day.Update(msg)
		return m, cmd

	case components.CatalogLoadedMsg, components.AvailabilityLoadedMsg, components.BookingDoneMsg, spinner.TickMsg:
		if m.surface != SurfaceWizard {
			return m, nil
		}
		m.wizard, cmd = m.wizard.Update(msg)
		return m, cmd

	case components.ExpenseSavedMsg:
		if m.surface != SurfaceExpense {
			return m, nil
		}
		m.expense, cmd = m.expense.Update(msg)
		return m, cmd

	case components.ReportLoadedMsg:
		m.report, cmd = m.report.Update(msg)
		return m, cmd

	case components.HoursLoadedMsg:
		m.header, cmd = m.header.Update(msg)
		return m, cmd
	}

	return m, nil
}

// baseSurface is what shows once the frontmost form closes.
func (m Model) baseSurface() Surface {
	switch {
	case m.dayOpen:
		return SurfaceDay
	case m.reportOpen:
		return SurfaceReport
	default:
		return SurfaceCalendar
	}
}

func (m *Model) openWizard(msg components.OpenWizardMsg) tea.Cmd {
	w := booking.New(m.config.Backend, m.config.Bus, booking.Options{
		Date:      msg.Date,
		Now:       m.config.Now,
		Scope:     m.config.Locations.Scope(),
		FixedDate: msg.FixedDate,
	})
	m.wizard = components.NewWizardModel(m.theme, w, m.config.Backend, m.config.Timeout)
	m.surface = SurfaceWizard
	return m.wizard.Init()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd

	// Forms own every key while they are in front.
	switch m.surface {
	case SurfaceWizard:
		m.wizard, cmd = m.wizard.Update(msg)
		return m, cmd
	case SurfaceExpense:
		m.expense, cmd = m.expense.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Close) {
			m.showHelp = false
		}
		return m, nil
	}

	m.status = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keymap.SwitchLocation):
		return m, m.sidebar.Cycle(1)
	case key.Matches(msg, m.keymap.ToggleSidebar):
		cmd = m.sidebar.Toggle()
		return m, cmd
	case key.Matches(msg, m.keymap.Refresh):
		cmd = m.refreshAll()
		return m, cmd
	}

	switch m.surface {
	case SurfaceDay:
		m.day, cmd = m.day.Update(msg)
		return m, cmd

	case SurfaceReport:
		if key.Matches(msg, m.keymap.Close, m.keymap.Report) {
			m.reportOpen = false
			m.surface = m.baseSurface()
			return m, nil
		}
		m.report, cmd = m.report.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.NewBooking):
		date := m.calendar.Selected()
		return m, func() tea.Msg { return components.OpenWizardMsg{Date: date} }
	case key.Matches(msg, m.keymap.Report):
		m.reportOpen = true
		m.surface = SurfaceReport
		return m, m.report.Refresh()
	}

	m.calendar, cmd = m.calendar.Update(msg)
	return m, cmd
}

// handleTopic re-reads whatever a broadcast may have invalidated.
func (m *Model) handleTopic(topic eventbus.Topic) tea.Cmd {
	var cmds []tea.Cmd

	switch topic {
	case eventbus.LocationChanged:
		cmds = append(cmds, m.calendar.Refresh(), m.header.Refresh())
		if m.surface == SurfaceWizard || m.surface == SurfaceExpense {
			if m.surface == SurfaceWizard {
				m.wizard.Wizard().Cancel()
			}
			m.surface = m.baseSurface()
			cmds = append(cmds, setStatus("Location changed, the open form was closed", true))
		}
		if m.dayOpen {
			cmds = append(cmds, m.day.Reload())
		}
		if m.reportOpen {
			cmds = append(cmds, m.report.Refresh())
		}

	case eventbus.AppointmentChanged:
		cmds = append(cmds, m.calendar.Refresh())
		if m.dayOpen {
			cmds = append(cmds, m.day.Reload())
		}
		if m.reportOpen {
			cmds = append(cmds, m.report.Refresh())
		}

	case eventbus.ExpenseChanged:
		if m.dayOpen {
			cmds = append(cmds, m.day.Reload())
		}
		if m.reportOpen {
			cmds = append(cmds, m.report.Refresh())
		}
	}

	return tea.Batch(cmds...)
}

func (m *Model) refreshAll() tea.Cmd {
	cmds := []tea.Cmd{m.calendar.Refresh(), m.header.Refresh()}
	if m.dayOpen {
		cmds = append(cmds, m.day.Reload())
	}
	if m.reportOpen {
		cmds = append(cmds, m.report.Refresh())
	}
	return tea.Batch(cmds...)
}

// clock returns the configured time source.
func (m Model) clock() time.Time {
	return m.config.Now()
}
