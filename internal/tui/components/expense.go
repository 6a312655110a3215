package components

import (
	"context"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/expense"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	expenseDescription = iota
	expenseAmount
	expenseCategory
	expenseFieldCount
)

// ExpenseFormModel is the keyboard front of an expense.Form.
type ExpenseFormModel struct {
	theme       themes.Theme
	form        *expense.Form
	svc         service.Expenses
	description textinput.Model
	amount      textinput.Model
	timeout     time.Duration
	focus       int
}

// NewExpenseFormModel wraps form.
func NewExpenseFormModel(theme themes.Theme, form *expense.Form, svc service.Expenses, timeout time.Duration) ExpenseFormModel {
	description := textinput.New()
	description.Placeholder = "What was it for?"
	description.CharLimit = 120
	description.Focus()

	amount := textinput.New()
	amount.Placeholder = "0.00"
	amount.CharLimit = 12

	return ExpenseFormModel{
		theme:       theme,
		form:        form,
		svc:         svc,
		description: description,
		amount:      amount,
		timeout:     timeout,
	}
}

// Form returns the form state.
func (m ExpenseFormModel) Form() *expense.Form {
	return m.form
}

// Update handles messages.
func (m ExpenseFormModel) Update(msg tea.Msg) (ExpenseFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ExpenseSavedMsg:
		_ = m.form.ApplySubmit(msg.Result)
		if m.form.Done() {
			return m, func() tea.Msg { return ExpenseFormClosedMsg{Saved: true} }
		}

	case tea.KeyMsg:
		if m.form.Submitting() {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ExpenseFormModel) handleKey(msg tea.KeyMsg) (ExpenseFormModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, func() tea.Msg { return ExpenseFormClosedMsg{} }
	case "tab", "down":
		m.setFocus((m.focus + 1) % expenseFieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + expenseFieldCount - 1) % expenseFieldCount)
		return m, nil
	case "enter":
		cmd := m.submit()
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case expenseDescription:
		m.description, cmd = m.description.Update(msg)
	case expenseAmount:
		m.amount, cmd = m.amount.Update(msg)
	case expenseCategory:
		switch msg.String() {
		case "left", "h":
			m.form.CycleCategory(-1)
		case "right", "l", " ":
			m.form.CycleCategory(1)
		}
	}
	return m, cmd
}

func (m *ExpenseFormModel) setFocus(field int) {
	m.focus = field
	m.description.Blur()
	m.amount.Blur()
	switch field {
	case expenseDescription:
		m.description.Focus()
	case expenseAmount:
		m.amount.Focus()
	}
}

func (m *ExpenseFormModel) submit() tea.Cmd {
	m.form.SetDescription(m.description.Value())
	m.form.SetAmount(m.amount.Value())

	req, err := m.form.BeginSubmit()
	if err != nil {
		return nil
	}
	svc, timeout := m.svc, m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ExpenseSavedMsg{Result: expense.PerformSubmit(ctx, svc, req)}
	}
}

// View renders the form.
func (m ExpenseFormModel) View() string {
	label := func(field int, text string) string {
		if m.focus == field {
			return m.theme.Selected.Render(text)
		}
		return m.theme.Bold.Render(text)
	}

	categories := make([]string, len(model.ExpenseCategories))
	for i, c := range model.ExpenseCategories {
		style := m.theme.TabInactive
		if c == m.form.Category() {
			style = m.theme.TabActive
		}
		categories[i] = style.Render(string(c))
	}

	lines := []string{
		m.theme.Title.Render("New expense for " + m.form.Date().Format("Mon Jan 2, 2006")),
		label(expenseDescription, "Description") + " " + m.description.View(),
		label(expenseAmount, "Amount     ") + " " + m.amount.View(),
		label(expenseCategory, "Category   ") + " " + lipgloss.JoinHorizontal(lipgloss.Top, categories...),
		"",
	}
	if m.form.Submitting() {
		lines = append(lines, m.theme.StatusUnknown.Render("Saving..."))
	}
	if msg := m.form.Message(); msg != "" {
		lines = append(lines, m.theme.StatusError.Render(msg))
	}
	lines = append(lines, m.theme.Faint.Render("enter: save · tab: next field · esc: cancel"))
	return strings.Join(lines, "\n")
}
