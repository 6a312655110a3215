package components

import (
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/hours"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	tuitest "github.com/Veraticus/frontdesk/internal/tui/testing"
	"github.com/stretchr/testify/assert"
)

func TestHeaderModel_Status(t *testing.T) {
	s := ownerSession(t)
	m := NewHeaderModel(themes.Default, s.Locations, s.Backend.Client, clock, testTimeout)
	assert.Equal(t, hours.StatusUnknown, m.Status())

	m, _ = m.Update(only[HoursLoadedMsg](t, m.Refresh()))

	assert.Equal(t, hours.StatusOpen, m.Status())
	view := tuitest.StripANSI(m.View(80))
	assert.True(t, tuitest.ContainsInOrder(view, "Front Desk", "Downtown", "● Open until 18:00"))

	tests := []struct {
		at   time.Time
		name string
		want hours.Status
	}{
		{name: "before opening", at: time.Date(2024, time.March, 5, 8, 59, 0, 0, time.UTC), want: hours.StatusClosed},
		{name: "at closing", at: time.Date(2024, time.March, 5, 18, 0, 0, 0, time.UTC), want: hours.StatusClosed},
		{name: "saturday", at: time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC), want: hours.StatusOpen},
		{name: "sunday", at: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC), want: hours.StatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := m.Update(TickMsg(tt.at))
			assert.Equal(t, tt.want, next.Status())
		})
	}
}

func TestHeaderModel_HoursUnavailable(t *testing.T) {
	s := ownerSession(t)
	s.Backend.Server.Fail(http.MethodGet, "/locations/", http.StatusInternalServerError, 1, "")
	m := NewHeaderModel(themes.Default, s.Locations, s.Backend.Client, clock, testTimeout)

	m, _ = m.Update(only[HoursLoadedMsg](t, m.Refresh()))

	assert.Equal(t, hours.StatusUnknown, m.Status())
	assert.Contains(t, tuitest.StripANSI(m.View(80)), "○ Hours unknown")
}
