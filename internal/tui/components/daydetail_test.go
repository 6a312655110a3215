package components

import (
	"testing"

	"github.com/Veraticus/frontdesk/internal/api/fake"
	"github.com/Veraticus/frontdesk/internal/daydetail"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/testutil"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	tuitest "github.com/Veraticus/frontdesk/internal/tui/testing"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDayDetail(t *testing.T) (DayDetailModel, *testutil.Session) {
	t.Helper()
	s := ownerSession(t)
	client := s.Backend.Client
	agg := daydetail.New(client, client, s.Bus)
	return NewDayDetailModel(themes.Default, agg, client, client, s.Locations.Scope, testTimeout), s
}

func loadDay(t *testing.T, m DayDetailModel, d int) DayDetailModel {
	t.Helper()
	cmd := m.Load(day(d))
	for _, msg := range tuitest.Collect(cmd) {
		m, _ = m.Update(msg)
	}
	return m
}

func TestDayDetailModel_Load(t *testing.T) {
	m, _ := newDayDetail(t)
	m = loadDay(t, m, 7)

	appts := m.Aggregator().Appointments()
	require.Len(t, appts, 2)
	assert.Equal(t, "Bea Novak", appts[0].CustomerName)
	assert.Equal(t, "Cleo Marin", appts[1].CustomerName)

	view := tuitest.StripANSI(m.View())
	assert.True(t, tuitest.ContainsInOrder(view, "Thursday, March 7, 2024", "Bea Novak", "Cleo Marin"))
}

func TestDayDetailModel_DeleteAppointment(t *testing.T) {
	m, s := newDayDetail(t)
	topics, unsubscribe := s.Bus.Channel(4, eventbus.AppointmentChanged)
	defer unsubscribe()

	m = loadDay(t, m, 7)
	first := m.Aggregator().Appointments()[0].ID

	m, _ = m.Update(tuitest.KeyCtrl('d'))
	require.True(t, m.Aggregator().DeleteMode())
	assert.Contains(t, tuitest.StripANSI(m.View()), "Delete mode")

	m, cmd := m.Update(tuitest.KeyEnter())
	require.NotNil(t, cmd)
	assert.Contains(t, tuitest.StripANSI(m.View()), "Deleting...")

	// Keys are ignored while the delete is in flight.
	m, ignored := m.Update(tuitest.KeyEsc())
	assert.Nil(t, ignored)
	assert.True(t, m.Aggregator().DeleteMode())

	m, _ = m.Update(only[DeleteDoneMsg](t, cmd))

	assert.False(t, m.Aggregator().DeleteMode())
	require.Len(t, m.Aggregator().Appointments(), 1)
	assert.NotEqual(t, first, m.Aggregator().Appointments()[0].ID)
	assert.Len(t, s.Backend.Store.Appointments(fake.DemoBusinessID, fake.DemoDowntown, day(7), day(8)), 1)
	assert.Equal(t, eventbus.AppointmentChanged, <-topics)
}

func TestDayDetailModel_DeleteModeOnEmptyList(t *testing.T) {
	m, s := newDayDetail(t)
	m = loadDay(t, m, 8)
	require.Empty(t, m.Aggregator().Appointments())
	require.Len(t, m.Aggregator().Expenses(), 1)

	m, _ = m.Update(tuitest.KeyCtrl('d'))
	assert.False(t, m.Aggregator().DeleteMode())
	assert.Contains(t, tuitest.StripANSI(m.View()), daydetail.NoticeNoAppointments)

	m, _ = m.Update(tuitest.KeyTab())
	assert.Contains(t, tuitest.StripANSI(m.View()), "Hair products")

	m, _ = m.Update(tuitest.KeyCtrl('d'))
	require.True(t, m.Aggregator().DeleteMode())
	m, cmd := m.Update(tuitest.KeyPress("x"))
	m, _ = m.Update(only[DeleteDoneMsg](t, cmd))

	assert.Empty(t, m.Aggregator().Expenses())
	assert.Empty(t, s.Backend.Store.Expenses(fake.DemoBusinessID, fake.DemoDowntown, day(8), day(9)))
	assert.Contains(t, tuitest.StripANSI(m.View()), "No expenses")
}

func TestDayDetailModel_Escape(t *testing.T) {
	tests := []struct {
		name      string
		setup     []tea.KeyMsg
		wantClose bool
		wantMode  bool
	}{
		{name: "closes the day", wantClose: true},
		{name: "leaves delete mode first", setup: []tea.KeyMsg{tuitest.KeyCtrl('d')}},
		{name: "hides the summary first", setup: []tea.KeyMsg{tuitest.KeyPress("p")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newDayDetail(t)
			m = loadDay(t, m, 7)
			for _, k := range tt.setup {
				m, _ = m.Update(k)
			}

			m, cmd := m.Update(tuitest.KeyEsc())

			assert.False(t, m.Aggregator().DeleteMode())
			assert.False(t, m.showSummary)
			if tt.wantClose {
				only[CloseDayMsg](t, cmd)
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestDayDetailModel_Intents(t *testing.T) {
	m, _ := newDayDetail(t)
	m = loadDay(t, m, 7)

	_, cmd := m.Update(tuitest.KeyCtrl('n'))
	wizard := only[OpenWizardMsg](t, cmd)
	assert.True(t, wizard.Date.Equal(day(7)))
	assert.True(t, wizard.FixedDate)

	_, cmd = m.Update(tuitest.KeyPress("e"))
	form := only[OpenExpenseFormMsg](t, cmd)
	assert.True(t, form.Date.Equal(day(7)))
}

func TestDayDetailModel_Summary(t *testing.T) {
	m, _ := newDayDetail(t)
	m = loadDay(t, m, 7)

	m, _ = m.Update(tuitest.KeyPress("p"))

	view := m.View()
	assert.Contains(t, view, "Appointments for Thursday, March 7, 2024")
	assert.Contains(t, view, "Total: 105.00 (2 appointments)")
}

func TestDayDetailModel_StaleDayDropped(t *testing.T) {
	m, _ := newDayDetail(t)

	old := tuitest.Collect(m.Load(day(7)))
	m = loadDay(t, m, 8)
	for _, msg := range old {
		m, _ = m.Update(msg)
	}

	assert.True(t, m.Date().Equal(day(8)))
	assert.Empty(t, m.Aggregator().Appointments())
}
