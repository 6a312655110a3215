package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/api/fake"
	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	secret = []byte("test-secret")
	now    = time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	scope  = service.Scope{BusinessID: fake.DemoBusinessID, LocationID: fake.DemoDowntown}
)

type harness struct {
	client *Client
	server *fake.Server
	store  *fake.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := fake.NewStore(time.UTC)
	fake.SeedDemo(store, now)
	server := fake.NewServer(store, secret)
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	token, err := fake.Token(secret, model.RoleOwner, "ana", fake.DemoDowntown, time.Hour)
	require.NoError(t, err)

	client, err := New(Options{
		BaseURL:    ts.URL,
		Token:      token,
		Timeout:    5 * time.Second,
		Retries:    3,
		Location:   time.UTC,
		HTTPClient: ts.Client(),
	})
	require.NoError(t, err)
	return &harness{client: client, server: server, store: store}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	require.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestListLocations(t *testing.T) {
	h := newHarness(t)

	locs, err := h.client.ListLocations(context.Background(), fake.DemoBusinessID)

	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Downtown", locs[0].Name)
	assert.Equal(t, int64(fake.DemoRiverside), locs[1].ID)
}

func TestAppointments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	start := time.Date(2024, time.March, 20, 16, 30, 0, 0, time.UTC)

	id, err := h.client.CreateAppointment(ctx, model.NewAppointment{
		BusinessID:   fake.DemoBusinessID,
		LocationID:   fake.DemoDowntown,
		ServiceID:    1,
		StaffID:      100,
		Start:        start,
		Price:        decimal.RequireFromString("32.50"),
		CustomerName: "Gia",
		Phone:        "555-0100",
	})
	require.NoError(t, err)

	day, err := h.client.ListAppointmentsByDay(ctx, scope, start)
	require.NoError(t, err)
	var found *model.AppointmentSummary
	for i := range day {
		if day[i].ID == id {
			found = &day[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Gia", found.CustomerName)
	assert.Equal(t, "Haircut", found.ServiceName)
	assert.True(t, start.Equal(found.Start))
	assert.True(t, decimal.RequireFromString("32.50").Equal(found.Price))

	month, err := h.client.ListAppointmentsByMonth(ctx, scope, 2024, time.March)
	require.NoError(t, err)
	for _, a := range month {
		assert.Equal(t, time.March, a.Start.Month())
		assert.Equal(t, int64(fake.DemoDowntown), a.LocationID)
	}

	require.NoError(t, h.client.DeleteAppointment(ctx, id))
	err = h.client.DeleteAppointment(ctx, id)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateAppointment_ConflictCarriesServerMessage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := model.NewAppointment{
		BusinessID: fake.DemoBusinessID, LocationID: fake.DemoDowntown, ServiceID: 1, StaffID: 100,
		Start: time.Date(2024, time.March, 21, 17, 0, 0, 0, time.UTC), CustomerName: "Hana",
	}
	_, err := h.client.CreateAppointment(ctx, appt)
	require.NoError(t, err)

	_, err = h.client.CreateAppointment(ctx, appt)

	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "The selected time is no longer available", common.UserMessage(err, "fallback"))
}

func TestExpenses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	day := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

	id, err := h.client.CreateExpense(ctx, model.NewExpense{
		Date: day, Amount: decimal.RequireFromString("18"), Description: "Towels",
		Category: model.ExpenseSupplies, BusinessID: fake.DemoBusinessID, LocationID: fake.DemoDowntown,
	})
	require.NoError(t, err)

	list, err := h.client.ListExpensesByDay(ctx, scope, day)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	last := list[len(list)-1]
	assert.Equal(t, id, last.ID)
	assert.Equal(t, model.ExpenseSupplies, last.Category)

	require.NoError(t, h.client.DeleteExpense(ctx, id))
}

func TestCatalogAvailabilityHoursReport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	services, err := h.client.ListServices(ctx, scope)
	require.NoError(t, err)
	require.Len(t, services, 4)
	assert.True(t, decimal.RequireFromString("30").Equal(services[0].BasePrice))

	// 2024-03-16 is a Saturday: 10:00-15:00.
	slots, err := h.client.QueryAvailability(ctx, model.AvailabilityQuery{
		LocationID:      fake.DemoDowntown,
		Date:            time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Earliest:        model.NewTimeOfDay(13, 0),
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.StartTime, model.NewTimeOfDay(13, 0))
		assert.LessOrEqual(t, s.StartTime, model.NewTimeOfDay(14, 0))
	}

	days, err := h.client.GetWorkingHours(ctx, fake.DemoDowntown)
	require.NoError(t, err)
	assert.Len(t, days, 7)

	rep, err := h.client.GetReport(ctx, scope, model.PeriodMonth, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Studio Aurora", rep.BusinessName)
	assert.Equal(t, "Downtown", rep.LocationName)
	assert.True(t, rep.TotalIncome.Sub(rep.TotalExpense).Equal(rep.NetProfit))
}

func TestReadsRetryOnServerErrors(t *testing.T) {
	h := newHarness(t)
	h.server.Fail(http.MethodGet, "/catalog", http.StatusServiceUnavailable, 2, "")

	services, err := h.client.ListServices(context.Background(), scope)

	require.NoError(t, err)
	assert.Len(t, services, 4)
	assert.Equal(t, 3, h.server.Requests())
}

func TestReadsGiveUpAfterRetries(t *testing.T) {
	h := newHarness(t)
	h.server.Fail(http.MethodGet, "/catalog", http.StatusBadGateway, 5, "upstream down")

	_, err := h.client.ListServices(context.Background(), scope)

	require.ErrorIs(t, err, common.ErrMaxRetries)
	require.ErrorIs(t, err, common.ErrBackendUnavailable)
	assert.Equal(t, 3, h.server.Requests())
}

func TestWritesAreNotRetried(t *testing.T) {
	h := newHarness(t)
	h.server.Fail(http.MethodPost, "/expenses", http.StatusInternalServerError, 1, "")

	_, err := h.client.CreateExpense(context.Background(), model.NewExpense{
		Date: now, Amount: decimal.RequireFromString("1"), Description: "x",
		Category: model.ExpenseOther, BusinessID: 1, LocationID: 10,
	})

	require.ErrorIs(t, err, common.ErrBackendUnavailable)
	assert.Equal(t, 1, h.server.Requests())
}

func TestUnauthorizedIsNotRetried(t *testing.T) {
	store := fake.NewStore(time.UTC)
	fake.SeedDemo(store, now)
	server := fake.NewServer(store, secret)
	ts := httptest.NewServer(server)
	defer ts.Close()

	client, err := New(Options{BaseURL: ts.URL, Token: "not-a-jwt", HTTPClient: ts.Client()})
	require.NoError(t, err)

	_, err = client.ListLocations(context.Background(), 1)

	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 1, server.Requests())
	assert.Equal(t, "generic", common.UserMessage(err, "generic"))
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "json message", body: `{"message":"Slot taken"}`, want: "Slot taken"},
		{name: "plain text", body: "Termin je zauzet\n", want: "Termin je zauzet"},
		{name: "html page", body: "<html><body>Bad Gateway</body></html>", want: ""},
		{name: "empty", body: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(http.StatusBadRequest)
			_, _ = rec.WriteString(tt.body)

			err := decodeError(rec.Result())

			var apiErr *common.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}
