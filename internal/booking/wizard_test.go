package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServices records the calls the wizard makes.
type fakeServices struct {
	service.Appointments

	catalogErr error
	slotsErr   error
	createErr  error
	catalog    []model.ServiceCatalogEntry
	slots      []model.AvailabilitySlot
	queries    []model.AvailabilityQuery
	created    []model.NewAppointment
}

func (f *fakeServices) ListServices(context.Context, service.Scope) ([]model.ServiceCatalogEntry, error) {
	return f.catalog, f.catalogErr
}

func (f *fakeServices) QueryAvailability(_ context.Context, q model.AvailabilityQuery) ([]model.AvailabilitySlot, error) {
	f.queries = append(f.queries, q)
	return f.slots, f.slotsErr
}

func (f *fakeServices) CreateAppointment(_ context.Context, a model.NewAppointment) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, a)
	return 99, nil
}

var testScope = service.Scope{BusinessID: 1, LocationID: 10}

func newFake() *fakeServices {
	return &fakeServices{
		catalog: []model.ServiceCatalogEntry{
			{ID: 1, Name: "Cut", BasePrice: decimal.RequireFromString("30")},
			{ID: 2, Name: "Colour", BasePrice: decimal.RequireFromString("75")},
		},
		slots: []model.AvailabilitySlot{
			{StartTime: model.NewTimeOfDay(11, 0), StaffID: 5, StaffName: "Mira"},
			{StartTime: model.NewTimeOfDay(9, 30), StaffID: 4, StaffName: "Ivo"},
			{StartTime: model.NewTimeOfDay(11, 0), StaffID: 4, StaffName: "Ivo"},
		},
	}
}

// clock is a settable test clock.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newWizard(t *testing.T, f *fakeServices, c *clock, opts Options) (*Wizard, *[]eventbus.Topic) {
	t.Helper()
	bus := eventbus.New()
	var topics []eventbus.Topic
	bus.Subscribe(func(tp eventbus.Topic) { topics = append(topics, tp) }, eventbus.AppointmentChanged)

	opts.Scope = testScope
	opts.Now = c.Now
	w := New(f, bus, opts)
	require.NoError(t, w.LoadCatalog(context.Background()))
	return w, &topics
}

func tomorrowClock() (*clock, time.Time) {
	c := &clock{t: time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)}
	return c, time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
}

func toClientInfo(t *testing.T, w *Wizard, slot model.AvailabilitySlot) {
	t.Helper()
	require.NoError(t, w.Search(context.Background()))
	require.Equal(t, StageSlots, w.Stage())
	require.NoError(t, w.SelectSlot(slot))
	require.Equal(t, StageClientInfo, w.Stage())
}

func TestSearch_ValidationBlocksQuery(t *testing.T) {
	tests := []struct {
		setup   func(w *Wizard)
		name    string
		message string
	}{
		{name: "no service", setup: func(*Wizard) {}, message: MsgSelectService},
		{
			name: "zero duration",
			setup: func(w *Wizard) {
				_ = w.SetService(1)
				_ = w.SetDuration(0)
			},
			message: MsgInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			c, date := tomorrowClock()
			w, _ := newWizard(t, f, c, Options{Date: date})
			tt.setup(w)

			err := w.Search(context.Background())

			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.message, w.Message())
			assert.Equal(t, StageFilter, w.Stage())
			assert.Empty(t, f.queries)
		})
	}
}

func TestSearch_GroupsSlots(t *testing.T) {
	f := newFake()
	c, date := tomorrowClock()
	w, _ := newWizard(t, f, c, Options{Date: date})
	require.NoError(t, w.SetService(1))
	require.NoError(t, w.SetDuration(45))

	require.NoError(t, w.Search(context.Background()))

	require.Len(t, f.queries, 1)
	assert.Equal(t, model.AvailabilityQuery{
		LocationID:      10,
		Date:            date,
		DurationMinutes: 45,
		Earliest:        DefaultEarliest,
	}, f.queries[0])

	st, ok := w.State().(SlotsState)
	require.True(t, ok)
	require.Len(t, st.Buckets, 2)
	assert.Equal(t, model.NewTimeOfDay(9, 30), st.Buckets[0].Time)
	assert.Equal(t, model.NewTimeOfDay(11, 0), st.Buckets[1].Time)
	assert.Len(t, st.Buckets[1].Slots, 2)
}

func TestSearch_EmptyStaysInFilter(t *testing.T) {
	tests := []struct {
		name  string
		slots []model.AvailabilitySlot
	}{
		{name: "no slots"},
		{
			name: "only slots before earliest",
			slots: []model.AvailabilitySlot{
				{StartTime: model.NewTimeOfDay(7, 0), StaffID: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			f.slots = tt.slots
			c, date := tomorrowClock()
			w, _ := newWizard(t, f, c, Options{Date: date})
			require.NoError(t, w.SetService(1))

			require.NoError(t, w.Search(context.Background()))

			assert.Equal(t, StageFilter, w.Stage())
			assert.Equal(t, MsgNoSlots, w.Message())
			assert.False(t, w.Busy())
		})
	}
}

func TestSearch_ErrorStaysInFilter(t *testing.T) {
	f := newFake()
	f.slotsErr = errors.New("timeout")
	c, date := tomorrowClock()
	w, _ := newWizard(t, f, c, Options{Date: date})
	require.NoError(t, w.SetService(1))

	require.Error(t, w.Search(context.Background()))

	assert.Equal(t, StageFilter, w.Stage())
	assert.Equal(t, MsgSearchFailed, w.Message())
}

func TestGroupSlots_DropsSlotsBeforeEarliest(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{StartTime: model.NewTimeOfDay(10, 0), StaffID: 1},
		{StartTime: model.NewTimeOfDay(10, 14), StaffID: 2},
		{StartTime: model.NewTimeOfDay(10, 15), StaffID: 3},
		{StartTime: model.NewTimeOfDay(12, 0), StaffID: 1},
	}

	buckets := GroupSlots(slots, model.NewTimeOfDay(10, 15))

	require.Len(t, buckets, 2)
	assert.Equal(t, model.NewTimeOfDay(10, 15), buckets[0].Time)
	assert.Equal(t, 2, SlotCount(buckets))
}

func TestServiceChangeResetsPrice(t *testing.T) {
	f := newFake()
	c, date := tomorrowClock()
	w, _ := newWizard(t, f, c, Options{Date: date})
	require.NoError(t, w.SetService(1))
	assert.True(t, decimal.RequireFromString("30").Equal(w.Draft().Price))

	toClientInfo(t, w, f.slots[1])
	require.NoError(t, w.SetPrice(decimal.RequireFromString("25")))
	assert.True(t, decimal.RequireFromString("25").Equal(w.Draft().Price))

	require.True(t, w.Back())
	require.True(t, w.Back())
	require.NoError(t, w.SetService(2))
	assert.True(t, decimal.RequireFromString("75").Equal(w.Draft().Price))

	require.NoError(t, w.SetService(2))
	assert.True(t, decimal.RequireFromString("75").Equal(w.Draft().Price))
}

func TestSetService_Unknown(t *testing.T) {
	c, date := tomorrowClock()
	w, _ := newWizard(t, newFake(), c, Options{Date: date})

	assert.ErrorIs(t, w.SetService(42), ErrUnknownService)
	assert.Equal(t, int64(0), w.Draft().ServiceID)
}

func TestEarliestClampOnToday(t *testing.T) {
	f := newFake()
	c := &clock{t: time.Date(2024, time.March, 5, 10, 20, 30, 0, time.UTC)}
	today := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	w, _ := newWizard(t, f, c, Options{Date: today})
	require.NoError(t, w.SetService(1))

	assert.Equal(t, model.NewTimeOfDay(10, 22), w.EffectiveEarliest())

	require.NoError(t, w.SetDate(today.AddDate(0, 0, 1)))
	assert.Equal(t, DefaultEarliest, w.EffectiveEarliest())

	c.t = c.t.Add(30 * time.Minute)
	require.NoError(t, w.SetDate(today))
	assert.Equal(t, model.NewTimeOfDay(10, 52), w.EffectiveEarliest())

	f.slots = []model.AvailabilitySlot{
		{StartTime: model.NewTimeOfDay(10, 45), StaffID: 4},
		{StartTime: model.NewTimeOfDay(11, 0), StaffID: 4},
	}
	require.NoError(t, w.Search(context.Background()))
	require.Len(t, f.queries, 1)
	assert.Equal(t, model.NewTimeOfDay(10, 52), f.queries[0].Earliest)

	st, ok := w.State().(SlotsState)
	require.True(t, ok)
	require.Len(t, st.Buckets, 1)
	assert.Equal(t, model.NewTimeOfDay(11, 0), st.Buckets[0].Time)
}

func TestReclampOnTick(t *testing.T) {
	c := &clock{t: time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)}
	today := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	w, _ := newWizard(t, newFake(), c, Options{Date: today})
	require.Equal(t, model.NewTimeOfDay(10, 1), w.EffectiveEarliest())

	c.t = c.t.Add(15 * time.Second)
	assert.True(t, w.Reclamp())
	assert.Equal(t, model.NewTimeOfDay(10, 2), w.EffectiveEarliest())

	assert.False(t, w.Reclamp())
}

func TestClampEarliest(t *testing.T) {
	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		now       time.Time
		date      time.Time
		name      string
		requested model.TimeOfDay
		want      model.TimeOfDay
	}{
		{name: "other day untouched", date: day.AddDate(0, 0, 1), now: day.Add(15 * time.Hour), requested: model.NewTimeOfDay(8, 0), want: model.NewTimeOfDay(8, 0)},
		{name: "later request wins", date: day, now: day.Add(9 * time.Hour), requested: model.NewTimeOfDay(13, 0), want: model.NewTimeOfDay(13, 0)},
		{name: "exact minute", date: day, now: day.Add(9 * time.Hour), requested: model.NewTimeOfDay(8, 0), want: model.NewTimeOfDay(9, 1)},
		{name: "seconds round up", date: day, now: day.Add(9*time.Hour + time.Second), requested: 0, want: model.NewTimeOfDay(9, 2)},
		{name: "last full minute", date: day, now: day.Add(23*time.Hour + 58*time.Minute), requested: 0, want: model.NewTimeOfDay(23, 59)},
		{name: "rounds past midnight", date: day, now: day.Add(23*time.Hour + 58*time.Minute + 30*time.Second), requested: 0, want: model.EndOfDay},
		{name: "bound on next day", date: day, now: day.Add(23*time.Hour + 59*time.Minute + 20*time.Second), requested: model.NewTimeOfDay(8, 0), want: model.EndOfDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampEarliest(tt.requested, tt.date, tt.now))
		})
	}
}

func TestSearch_NoStartLeftToday(t *testing.T) {
	f := newFake()
	f.slots = append(f.slots, model.AvailabilitySlot{StartTime: model.NewTimeOfDay(23, 59), StaffID: 4})
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	c := &clock{t: date.Add(23*time.Hour + 59*time.Minute + 20*time.Second)}
	w, _ := newWizard(t, f, c, Options{Date: date})
	require.NoError(t, w.SetService(1))

	err := w.Search(context.Background())

	require.ErrorIs(t, err, ErrDayOver)
	assert.Equal(t, model.EndOfDay, w.EffectiveEarliest())
	assert.Equal(t, MsgNoSlots, w.Message())
	assert.Equal(t, StageFilter, w.Stage())
	assert.Empty(t, f.queries)
	assert.Empty(t, GroupSlots(f.slots, w.EffectiveEarliest()))
}

func TestFixedDate(t *testing.T) {
	c, date := tomorrowClock()
	w, _ := newWizard(t, newFake(), c, Options{Date: date, FixedDate: true})

	assert.ErrorIs(t, w.SetDate(date.AddDate(0, 0, 1)), ErrDateFixed)
	assert.Equal(t, date, w.Draft().Date)
}

func TestSelectSlot(t *testing.T) {
	f := newFake()
	c, date := tomorrowClock()
	w, _ := newWizard(t, f, c, Options{Date: date})

	assert.ErrorIs(t, w.SelectSlot(f.slots[0]), ErrWrongStage)

	require.NoError(t, w.SetService(1))
	require.NoError(t, w.Search(context.Background()))
	assert.ErrorIs(t, w.SelectSlot(model.AvailabilitySlot{StartTime: 1, StaffID: 77}), ErrUnknownSlot)

	require.NoError(t, w.SelectSlot(f.slots[0]))
	st, ok := w.State().(ClientInfoState)
	require.True(t, ok)
	assert.Equal(t, f.slots[0], st.Slot)
}

func TestBackNavigation(t *testing.T) {
	f := newFake()
	c, date := tomorrowClock()
	w, _ := newWizard(t, f, c, Options{Date: date})
	require.NoError(t, w.SetService(1))
	toClientInfo(t, w, f.slots[0])

	require.True(t, w.Back())
	st, ok := w.State().(SlotsState)
	require.True(t, ok, "client step returns to the same slot list")
	assert.Len(t, st.Buckets, 2)

	require.True(t, w.Back())
	assert.Equal(t, StageFilter, w.Stage())
	assert.False(t, w.Back())

	assert.ErrorIs(t, w.SelectSlot(f.slots[0]), ErrWrongStage)
}

func TestSubmit_Success(t *testing.T) {
	f := newFake()
	c, date := tomorrowClock()
	var completed int64
	w, topics := newWizard(t, f, c, Options{Date: date, OnComplete: func(id int64) { completed = id }})
	require.NoError(t, w.SetService(2))
	toClientInfo(t, w, f.slots[0])
	w.SetCustomerName("  Dora ")
	w.SetPhone("555-0101")
	w.SetNote("allergic to ammonia")

	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, f.created, 1)
	got := f.created[0]
	assert.Equal(t, int64(1), got.BusinessID)
	assert.Equal(t, int64(10), got.LocationID)
	assert.Equal(t, int64(2), got.ServiceID)
	assert.Equal(t, int64(5), got.StaffID)
	assert.Equal(t, time.Date(2024, time.March, 6, 11, 0, 0, 0, time.UTC), got.Start)
	assert.True(t, decimal.RequireFromString("75").Equal(got.Price))
	assert.Equal(t, "Dora", got.CustomerName)
	assert.Equal(t, "555-0101", got.Phone)
	assert.Equal(t, "allergic to ammonia", got.Note)

	assert.True(t, w.Closed())
	assert.Equal(t, int64(99), completed)
	assert.Equal(t, []eventbus.Topic{eventbus.AppointmentChanged}, *topics)
	assert.Empty(t, w.Draft().CustomerName)
}

func TestSubmit_RequiresCustomerName(t *testing.T) {
	f := newFake()
	c, date := tomorrowClock()
	w, _ := newWizard(t, f, c, Options{Date: date})
	require.NoError(t, w.SetService(1))
	toClientInfo(t, w, f.slots[0])
	w.SetCustomerName("   ")

	err := w.Submit(context.Background())

	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, MsgCustomerRequired, w.Message())
	assert.Empty(t, f.created)
	assert.Equal(t, StageClientInfo, w.Stage())
}

func TestSubmit_FailurePreservesInput(t *testing.T) {
	tests := []struct {
		err     error
		name    string
		message string
	}{
		{name: "server message", err: &common.APIError{Status: 409, Message: "Slot was just taken"}, message: "Slot was just taken"},
		{name: "empty server message", err: &common.APIError{Status: 500}, message: MsgSubmitFailed},
		{name: "auth expired", err: &common.APIError{Status: 401, Message: "jwt expired"}, message: MsgSubmitFailed},
		{name: "network", err: errors.New("dial tcp: refused"), message: MsgSubmitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			f.createErr = tt.err
			c, date := tomorrowClock()
			completed := false
			w, topics := newWizard(t, f, c, Options{Date: date, OnComplete: func(int64) { completed = true }})
			require.NoError(t, w.SetService(1))
			toClientInfo(t, w, f.slots[1])
			w.SetCustomerName("Eva")
			w.SetPhone("555-0199")
			w.SetNote("first visit")
			require.NoError(t, w.SetPrice(decimal.RequireFromString("27.50")))
			before := w.Draft()

			err := w.Submit(context.Background())

			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.message, w.Message())
			assert.Equal(t, StageClientInfo, w.Stage())
			assert.Equal(t, before, w.Draft())
			assert.False(t, w.Closed())
			assert.False(t, w.Busy())
			assert.False(t, completed)
			assert.Empty(t, *topics)

			st, ok := w.State().(ClientInfoState)
			require.True(t, ok)
			assert.Equal(t, f.slots[1], st.Slot)
		})
	}
}

func TestStaleResponsesAfterCancel(t *testing.T) {
	f := newFake()
	c, date := tomorrowClock()
	w, topics := newWizard(t, f, c, Options{Date: date})
	require.NoError(t, w.SetService(1))
	toClientInfo(t, w, f.slots[0])
	w.SetCustomerName("Fay")

	req, err := w.BeginSubmit()
	require.NoError(t, err)
	w.Cancel()

	require.NoError(t, w.ApplySubmit(SubmitResult{SubmitRequest: req, ID: 5}))
	assert.Empty(t, *topics)
	assert.True(t, w.Closed())
}

func TestApplyCatalog_Failure(t *testing.T) {
	f := newFake()
	f.catalogErr = errors.New("down")
	c, date := tomorrowClock()
	w := New(f, nil, Options{Scope: testScope, Now: c.Now, Date: date})

	require.Error(t, w.LoadCatalog(context.Background()))
	assert.Equal(t, MsgCatalogFailed, w.Message())
	assert.Empty(t, w.Catalog())
}
