package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monthCall struct {
	scope service.Scope
	year  int
	month time.Month
}

// stubAppointments answers month queries from a fixed list.
type stubAppointments struct {
	service.Appointments
	err   error
	appts []model.AppointmentSummary
	calls []monthCall
}

func (s *stubAppointments) ListAppointmentsByMonth(_ context.Context, scope service.Scope, year int, month time.Month) ([]model.AppointmentSummary, error) {
	s.calls = append(s.calls, monthCall{scope: scope, year: year, month: month})
	return s.appts, s.err
}

func appt(id, location int64, start time.Time) model.AppointmentSummary {
	return model.AppointmentSummary{ID: id, LocationID: location, Start: start}
}

func TestCountByDay(t *testing.T) {
	key := MonthKey{Year: 2024, Month: time.March, LocationID: 7}
	appts := []model.AppointmentSummary{
		appt(1, 7, time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)),
		appt(2, 7, time.Date(2024, time.March, 3, 11, 0, 0, 0, time.UTC)),
		appt(3, 8, time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC)),
		appt(4, 7, time.Date(2024, time.April, 3, 12, 0, 0, 0, time.UTC)),
		appt(5, 7, time.Date(2024, time.March, 31, 18, 0, 0, 0, time.UTC)),
	}

	counts := CountByDay(appts, key)

	assert.Equal(t, map[int]int{3: 2, 31: 1}, counts)
}

func TestBadgeIndex_Refresh(t *testing.T) {
	stub := &stubAppointments{appts: []model.AppointmentSummary{
		appt(1, 7, time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)),
		appt(2, 9, time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)),
	}}
	idx := NewBadgeIndex()

	require.NoError(t, idx.Refresh(context.Background(), stub, 1, 2024, time.March, 7))

	require.Len(t, stub.calls, 1)
	assert.Equal(t, monthCall{scope: service.Scope{BusinessID: 1, LocationID: 7}, year: 2024, month: time.March}, stub.calls[0])
	assert.True(t, idx.Loaded())
	assert.Equal(t, 1, idx.Count(3))
	assert.Equal(t, 1, idx.CountOn(time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, idx.CountOn(time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)))
}

func TestBadgeIndex_BeginClearsImmediately(t *testing.T) {
	idx := NewBadgeIndex()
	req := idx.Begin(2024, time.March, 7)
	idx.Apply(BadgeResult{BadgeRequest: req, Appointments: []model.AppointmentSummary{
		appt(1, 7, time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)),
	}})
	require.Equal(t, 1, idx.Count(3))

	idx.Begin(2024, time.March, 8)

	assert.Equal(t, 0, idx.Count(3), "counts for the old location must not linger")
	assert.False(t, idx.Loaded())
}

func TestBadgeIndex_StaleResponsesAreDropped(t *testing.T) {
	idx := NewBadgeIndex()
	old := idx.Begin(2024, time.March, 7)
	current := idx.Begin(2024, time.April, 7)

	assert.False(t, idx.Apply(BadgeResult{BadgeRequest: old, Appointments: []model.AppointmentSummary{
		appt(1, 7, time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)),
	}}))
	assert.False(t, idx.Loaded())

	assert.True(t, idx.Apply(BadgeResult{BadgeRequest: current, Appointments: []model.AppointmentSummary{
		appt(2, 7, time.Date(2024, time.April, 5, 9, 0, 0, 0, time.UTC)),
	}}))
	assert.Equal(t, 1, idx.Count(5))
	assert.Equal(t, 0, idx.Count(3))
	assert.Equal(t, MonthKey{Year: 2024, Month: time.April, LocationID: 7}, idx.Key())
}

func TestBadgeIndex_ErrorLeavesNoBadges(t *testing.T) {
	stub := &stubAppointments{err: errors.New("boom")}
	idx := NewBadgeIndex()

	err := idx.Refresh(context.Background(), stub, 1, 2024, time.March, 7)

	require.Error(t, err)
	assert.ErrorIs(t, idx.Err(), stub.err)
	assert.Equal(t, 0, idx.Count(3))
}

func TestBadgeLabel(t *testing.T) {
	assert.Empty(t, BadgeLabel(0))
	assert.Equal(t, "1 appt", BadgeLabel(1))
	assert.Equal(t, "4 appts", BadgeLabel(4))
}
