package components

import (
	"slices"
	"testing"

	"github.com/Veraticus/frontdesk/internal/api/fake"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/expense"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/testutil"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	tuitest "github.com/Veraticus/frontdesk/internal/tui/testing"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpenseForm(t *testing.T) (ExpenseFormModel, *testutil.Session) {
	t.Helper()
	s := ownerSession(t)
	form := expense.New(s.Backend.Client, s.Bus, s.Locations.Scope(), day(5))
	return NewExpenseFormModel(themes.Default, form, s.Backend.Client, testTimeout), s
}

func typeInto(m ExpenseFormModel, keys ...tea.KeyMsg) ExpenseFormModel {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func TestExpenseFormModel_Saves(t *testing.T) {
	m, s := newExpenseForm(t)
	topics, unsubscribe := s.Bus.Channel(4, eventbus.ExpenseChanged)
	defer unsubscribe()

	m = typeInto(m, tuitest.Type("Towels")...)
	m = typeInto(m, tuitest.KeyTab())
	m = typeInto(m, tuitest.Type("12,5")...)
	m = typeInto(m, tuitest.KeyTab(), tuitest.KeyRight())

	n := len(model.ExpenseCategories)
	want := model.ExpenseCategories[(slices.Index(model.ExpenseCategories, model.ExpenseOther)+1)%n]
	assert.Equal(t, want, m.Form().Category())

	m, cmd := m.Update(tuitest.KeyEnter())
	require.NotNil(t, cmd)
	assert.True(t, m.Form().Submitting())

	m, next := m.Update(only[ExpenseSavedMsg](t, cmd))
	closed := only[ExpenseFormClosedMsg](t, next)
	assert.True(t, closed.Saved)
	assert.True(t, m.Form().Done())
	assert.Equal(t, eventbus.ExpenseChanged, <-topics)

	saved := s.Backend.Store.Expenses(fake.DemoBusinessID, fake.DemoDowntown, day(5), day(6))
	require.Len(t, saved, 1)
	assert.Equal(t, "Towels", saved[0].Description)
	assert.Equal(t, "12.50", saved[0].Amount.StringFixed(2))
	assert.Equal(t, want, saved[0].Category)
}

func TestExpenseFormModel_Validation(t *testing.T) {
	tests := []struct {
		name        string
		description string
		amount      string
		want        string
	}{
		{name: "missing description", amount: "10", want: expense.MsgDescriptionRequired},
		{name: "missing amount", description: "Towels", want: expense.MsgAmountInvalid},
		{name: "zero amount", description: "Towels", amount: "0", want: expense.MsgAmountInvalid},
		{name: "not a number", description: "Towels", amount: "ten", want: expense.MsgAmountInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newExpenseForm(t)
			m = typeInto(m, tuitest.Type(tt.description)...)
			m = typeInto(m, tuitest.KeyTab())
			m = typeInto(m, tuitest.Type(tt.amount)...)

			m, cmd := m.Update(tuitest.KeyEnter())

			assert.Nil(t, cmd)
			assert.False(t, m.Form().Submitting())
			assert.Contains(t, tuitest.StripANSI(m.View()), tt.want)
		})
	}
}

func TestExpenseFormModel_Escape(t *testing.T) {
	m, s := newExpenseForm(t)
	m = typeInto(m, tuitest.Type("Towels")...)

	_, cmd := m.Update(tuitest.KeyEsc())

	assert.False(t, only[ExpenseFormClosedMsg](t, cmd).Saved)
	assert.Empty(t, s.Backend.Store.Expenses(fake.DemoBusinessID, fake.DemoDowntown, day(5), day(6)))
}
