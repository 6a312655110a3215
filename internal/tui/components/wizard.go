package components

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/booking"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// Filter fields in focus order.
const (
	fieldService = iota
	fieldDate
	fieldDuration
	fieldEarliest
	filterFieldCount
)

// Client fields in focus order.
const (
	fieldName = iota
	fieldPhone
	fieldNote
	fieldPrice
	clientFieldCount
)

// WizardModel drives a booking.Wizard from the keyboard.
type WizardModel struct {
	theme    themes.Theme
	wizard   *booking.Wizard
	svc      booking.Services
	spinner  spinner.Model
	inputErr string
	duration textinput.Model
	earliest textinput.Model
	client   [clientFieldCount]textinput.Model
	timeout  time.Duration
	focus    int
	slot     int
	loading  bool
}

// NewWizardModel wraps w.
func NewWizardModel(theme themes.Theme, w *booking.Wizard, svc booking.Services, timeout time.Duration) WizardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.StatusInfo

	draft := w.Draft()

	duration := textinput.New()
	duration.Placeholder = "minutes"
	duration.CharLimit = 4
	duration.SetValue(strconv.Itoa(draft.DurationMinutes))

	earliest := textinput.New()
	earliest.Placeholder = "HH:MM"
	earliest.CharLimit = 5
	earliest.SetValue(draft.Earliest.String())

	var client [clientFieldCount]textinput.Model
	placeholders := [clientFieldCount]string{"Client name", "Phone (optional)", "Note (optional)", "Price"}
	limits := [clientFieldCount]int{60, 30, 200, 10}
	for i := range client {
		client[i] = textinput.New()
		client[i].Placeholder = placeholders[i]
		client[i].CharLimit = limits[i]
	}

	return WizardModel{
		theme:    theme,
		wizard:   w,
		svc:      svc,
		spinner:  s,
		duration: duration,
		earliest: earliest,
		client:   client,
		timeout:  timeout,
	}
}

// Init loads the service catalog.
func (m *WizardModel) Init() tea.Cmd {
	req := m.wizard.BeginCatalog()
	m.loading = true
	svc, timeout := m.svc, m.timeout

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return CatalogLoadedMsg{Result: booking.FetchCatalog(ctx, svc, req)}
	})
}

// Wizard returns the state machine behind the surface.
func (m WizardModel) Wizard() *booking.Wizard {
	return m.wizard
}

// Tick re-applies the earliest-time clamp against the clock.
func (m WizardModel) Tick() bool {
	return m.wizard.Reclamp()
}

// Update handles messages.
func (m WizardModel) Update(msg tea.Msg) (WizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case CatalogLoadedMsg:
		m.loading = false
		if m.wizard.ApplyCatalog(msg.Result) {
			if list := m.wizard.Catalog(); len(list) > 0 {
				_ = m.wizard.SetService(list[0].ID)
			}
		}

	case AvailabilityLoadedMsg:
		if m.wizard.ApplyAvailability(msg.Result) && m.wizard.Stage() == booking.StageSlots {
			m.slot = 0
		}

	case BookingDoneMsg:
		_ = m.wizard.ApplySubmit(msg.Result)
		if m.wizard.Closed() {
			id := msg.Result.ID
			return m, func() tea.Msg { return WizardClosedMsg{BookedID: id} }
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.wizard.Busy() {
			return m, nil
		}
		switch m.wizard.Stage() {
		case booking.StageFilter:
			return m.handleFilterKey(msg)
		case booking.StageSlots:
			return m.handleSlotsKey(msg)
		case booking.StageClientInfo:
			return m.handleClientKey(msg)
		}
	}
	return m, nil
}

func (m WizardModel) handleFilterKey(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		cmd := m.cancel()
		return m, cmd
	case "tab", "down":
		m.setFilterFocus((m.focus + 1) % filterFieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFilterFocus((m.focus + filterFieldCount - 1) % filterFieldCount)
		return m, nil
	case "enter":
		cmd := m.search()
		return m, cmd
	}

	switch m.focus {
	case fieldService:
		switch msg.String() {
		case "left", "h":
			m.cycleService(-1)
		case "right", "l":
			m.cycleService(1)
		}
	case fieldDate:
		switch msg.String() {
		case "left", "h":
			m.shiftDate(-1)
		case "right", "l":
			m.shiftDate(1)
		}
	case fieldDuration:
		var cmd tea.Cmd
		m.duration, cmd = m.duration.Update(msg)
		return m, cmd
	case fieldEarliest:
		var cmd tea.Cmd
		m.earliest, cmd = m.earliest.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *WizardModel) cancel() tea.Cmd {
	m.wizard.Cancel()
	return func() tea.Msg { return WizardClosedMsg{} }
}

func (m *WizardModel) setFilterFocus(field int) {
	m.focus = field
	m.duration.Blur()
	m.earliest.Blur()
	switch field {
	case fieldDuration:
		m.duration.Focus()
	case fieldEarliest:
		m.earliest.Focus()
	}
}

func (m *WizardModel) cycleService(step int) {
	list := m.wizard.Catalog()
	if len(list) == 0 {
		return
	}
	idx := 0
	current := m.wizard.Draft().ServiceID
	for i, s := range list {
		if s.ID == current {
			idx = i
			break
		}
	}
	n := len(list)
	next := ((idx+step)%n + n) % n
	_ = m.wizard.SetService(list[next].ID)
}

func (m *WizardModel) shiftDate(days int) {
	if m.wizard.FixedDate() {
		return
	}
	_ = m.wizard.SetDate(m.wizard.Draft().Date.AddDate(0, 0, days))
}

func (m *WizardModel) search() tea.Cmd {
	m.inputErr = ""

	minutes, err := strconv.Atoi(strings.TrimSpace(m.duration.Value()))
	if err != nil {
		minutes = 0
	}
	_ = m.wizard.SetDuration(minutes)

	earliest, err := model.ParseTimeOfDay(strings.TrimSpace(m.earliest.Value()))
	if err != nil {
		m.inputErr = "Earliest time must be HH:MM"
		return nil
	}
	_ = m.wizard.SetEarliest(earliest)

	req, err := m.wizard.BeginSearch()
	if err != nil {
		return nil
	}
	svc, timeout := m.svc, m.timeout

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return AvailabilityLoadedMsg{Result: booking.FetchAvailability(ctx, svc, req)}
	})
}

func (m WizardModel) slots() []model.AvailabilitySlot {
	st, ok := m.wizard.State().(booking.SlotsState)
	if !ok {
		return nil
	}
	var flat []model.AvailabilitySlot
	for _, b := range st.Buckets {
		flat = append(flat, b.Slots...)
	}
	return flat
}

func (m WizardModel) handleSlotsKey(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	slots := m.slots()

	switch msg.String() {
	case "esc":
		cmd := m.cancel()
		return m, cmd
	case "ctrl+p", "backspace", "left", "h":
		m.wizard.Back()
		m.setFilterFocus(m.focus)
	case "up", "k":
		if m.slot > 0 {
			m.slot--
		}
	case "down", "j":
		if m.slot < len(slots)-1 {
			m.slot++
		}
	case "enter":
		if m.slot < len(slots) {
			if err := m.wizard.SelectSlot(slots[m.slot]); err == nil {
				m.enterClientInfo()
			}
		}
	}
	return m, nil
}

func (m *WizardModel) enterClientInfo() {
	draft := m.wizard.Draft()
	m.client[fieldName].SetValue(draft.CustomerName)
	m.client[fieldPhone].SetValue(draft.Phone)
	m.client[fieldNote].SetValue(draft.Note)
	m.client[fieldPrice].SetValue(draft.Price.StringFixed(2))
	m.setClientFocus(fieldName)
}

func (m *WizardModel) setClientFocus(field int) {
	m.focus = field
	for i := range m.client {
		if i == field {
			m.client[i].Focus()
		} else {
			m.client[i].Blur()
		}
	}
}

func (m WizardModel) handleClientKey(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		cmd := m.cancel()
		return m, cmd
	case "ctrl+p":
		m.commitClient()
		m.wizard.Back()
		m.setClientFocus(-1)
		m.focus = fieldService
		return m, nil
	case "tab", "down":
		m.setClientFocus((m.focus + 1) % clientFieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setClientFocus((m.focus + clientFieldCount - 1) % clientFieldCount)
		return m, nil
	case "enter":
		cmd := m.submit()
		return m, cmd
	}

	var cmd tea.Cmd
	m.client[m.focus], cmd = m.client[m.focus].Update(msg)
	return m, cmd
}

func (m *WizardModel) commitClient() bool {
	m.inputErr = ""
	m.wizard.SetCustomerName(m.client[fieldName].Value())
	m.wizard.SetPhone(m.client[fieldPhone].Value())
	m.wizard.SetNote(m.client[fieldNote].Value())

	raw := strings.TrimSpace(strings.ReplaceAll(m.client[fieldPrice].Value(), ",", "."))
	if raw == "" {
		return true
	}
	price, err := decimal.NewFromString(raw)
	if err == nil {
		err = m.wizard.SetPrice(price)
	}
	if err != nil {
		m.inputErr = "Price must be a non-negative amount"
		return false
	}
	return true
}

func (m *WizardModel) submit() tea.Cmd {
	if !m.commitClient() {
		return nil
	}
	req, err := m.wizard.BeginSubmit()
	if err != nil {
		return nil
	}
	svc, timeout := m.svc, m.timeout

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return BookingDoneMsg{Result: booking.PerformSubmit(ctx, svc, req)}
	})
}

// View renders the current step.
func (m WizardModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("New appointment"))
	b.WriteString("\n")

	switch m.wizard.Stage() {
	case booking.StageFilter:
		b.WriteString(m.renderFilter())
	case booking.StageSlots:
		b.WriteString(m.renderSlots())
	case booking.StageClientInfo:
		b.WriteString(m.renderClient())
	}

	b.WriteString("\n")
	if m.loading || m.wizard.Busy() {
		b.WriteString(m.spinner.View() + " ")
		b.WriteString(m.theme.StatusUnknown.Render("Working..."))
		b.WriteString("\n")
	}
	if msg := m.message(); msg != "" {
		b.WriteString(m.theme.StatusError.Render(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m WizardModel) message() string {
	if m.inputErr != "" {
		return m.inputErr
	}
	return m.wizard.Message()
}

func (m WizardModel) label(field int, text string) string {
	if m.focus == field {
		return m.theme.Selected.Render(text)
	}
	return m.theme.Bold.Render(text)
}

func (m WizardModel) renderFilter() string {
	draft := m.wizard.Draft()

	service := "(no services)"
	if s, ok := m.wizard.Service(); ok {
		service = fmt.Sprintf("‹ %s · %s ›", s.Name, s.BasePrice.StringFixed(2))
	}
	date := draft.Date.Format("Mon Jan 2, 2006")
	if m.wizard.FixedDate() {
		date += m.theme.Faint.Render(" (fixed)")
	} else {
		date = "‹ " + date + " ›"
	}

	earliest := m.earliest.View()
	if eff := m.wizard.EffectiveEarliest(); eff != draft.Earliest {
		earliest += m.theme.Faint.Render(" (from " + eff.String() + ")")
	}

	lines := []string{
		m.label(fieldService, "Service ") + " " + service,
		m.label(fieldDate, "Date    ") + " " + date,
		m.label(fieldDuration, "Duration") + " " + m.duration.View(),
		m.label(fieldEarliest, "Earliest") + " " + earliest,
		"",
		m.theme.Faint.Render("enter: find slots · tab: next field · esc: close"),
	}
	return strings.Join(lines, "\n")
}

func (m WizardModel) renderSlots() string {
	st, ok := m.wizard.State().(booking.SlotsState)
	if !ok {
		return ""
	}

	var lines []string
	i := 0
	for _, bucket := range st.Buckets {
		lines = append(lines, m.theme.Bold.Render(bucket.Time.String()))
		for _, s := range bucket.Slots {
			row := "  " + s.StaffName
			if i == m.slot {
				row = m.theme.Selected.Render("> " + s.StaffName)
			}
			lines = append(lines, row)
			i++
		}
	}
	lines = append(lines, "", m.theme.Faint.Render("enter: choose · ←/ctrl+p: back · esc: close"))
	return strings.Join(lines, "\n")
}

func (m WizardModel) renderClient() string {
	st, ok := m.wizard.State().(booking.ClientInfoState)
	if !ok {
		return ""
	}
	draft := m.wizard.Draft()

	header := fmt.Sprintf("%s at %s with %s", draft.Date.Format("Mon Jan 2"), st.Slot.StartTime, st.Slot.StaffName)
	labels := [clientFieldCount]string{"Client", "Phone ", "Note  ", "Price "}

	lines := []string{m.theme.Subtitle.Render(header)}
	for i, in := range m.client {
		lines = append(lines, m.label(i, labels[i])+" "+in.View())
	}
	lines = append(lines, "", m.theme.Faint.Render("enter: book · ctrl+p: back · esc: close"))
	return strings.Join(lines, "\n")
}
