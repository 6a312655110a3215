package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
)

// MonthKey identifies the data a badge map was computed for.
type MonthKey struct {
	Year       int
	Month      time.Month
	LocationID int64
}

// BadgeRequest is a tagged request for a month's appointments.
type BadgeRequest struct {
	MonthKey
	Generation uint64
}

// BadgeResult carries the response to a BadgeRequest.
type BadgeResult struct {
	Err          error
	Appointments []model.AppointmentSummary
	BadgeRequest
}

// BadgeIndex holds per-day appointment counts for the visible month at the
// active location. Responses to superseded requests are dropped.
type BadgeIndex struct {
	err        error
	counts     map[int]int
	key        MonthKey
	generation uint64
	loaded     bool
}

// NewBadgeIndex creates an empty index.
func NewBadgeIndex() *BadgeIndex {
	return &BadgeIndex{}
}

// Begin starts a refresh for the given month and location. The previous
// counts are discarded immediately so nothing computed for another month or
// location stays on screen while the request is in flight.
func (b *BadgeIndex) Begin(year int, month time.Month, locationID int64) BadgeRequest {
	b.generation++
	b.key = MonthKey{Year: year, Month: month, LocationID: locationID}
	b.counts = nil
	b.loaded = false
	b.err = nil

	return BadgeRequest{MonthKey: b.key, Generation: b.generation}
}

// FetchBadges performs the network call for req. It touches no index state
// and is safe to run off the UI goroutine.
func FetchBadges(ctx context.Context, appts service.Appointments, businessID int64, req BadgeRequest) BadgeResult {
	scope := service.Scope{BusinessID: businessID, LocationID: req.LocationID}
	list, err := appts.ListAppointmentsByMonth(ctx, scope, req.Year, req.Month)
	if err != nil {
		err = fmt.Errorf("failed to load appointments for %d-%02d: %w", req.Year, req.Month, err)
	}
	return BadgeResult{BadgeRequest: req, Appointments: list, Err: err}
}

// Apply stores res if it answers the latest request and reports whether it
// was accepted.
func (b *BadgeIndex) Apply(res BadgeResult) bool {
	if res.Generation != b.generation || res.MonthKey != b.key {
		slog.Debug("Dropping stale badge response",
			"generation", res.Generation,
			"current", b.generation)
		return false
	}

	b.loaded = true
	if res.Err != nil {
		b.err = res.Err
		b.counts = nil
		return true
	}

	b.counts = CountByDay(res.Appointments, b.key)
	return true
}

// Refresh runs Begin, FetchBadges and Apply synchronously.
func (b *BadgeIndex) Refresh(ctx context.Context, appts service.Appointments, businessID int64, year int, month time.Month, locationID int64) error {
	req := b.Begin(year, month, locationID)
	res := FetchBadges(ctx, appts, businessID, req)
	b.Apply(res)
	return res.Err
}

// Count returns the number of appointments on day of the indexed month.
func (b *BadgeIndex) Count(day int) int {
	return b.counts[day]
}

// CountOn returns the badge count for date, or 0 when date lies outside the
// indexed month.
func (b *BadgeIndex) CountOn(date time.Time) int {
	if date.Year() != b.key.Year || date.Month() != b.key.Month {
		return 0
	}
	return b.counts[date.Day()]
}

// Key returns what the index currently describes.
func (b *BadgeIndex) Key() MonthKey {
	return b.key
}

// Loaded reports whether the latest request has been answered.
func (b *BadgeIndex) Loaded() bool {
	return b.loaded
}

// Err returns the error of the latest request, if any.
func (b *BadgeIndex) Err() error {
	return b.err
}

// CountByDay reduces appointments to a day -> count map, keeping only
// records of key's month that belong to key's location.
func CountByDay(appts []model.AppointmentSummary, key MonthKey) map[int]int {
	counts := make(map[int]int)
	for _, a := range appts {
		if a.LocationID != key.LocationID {
			continue
		}
		if a.Start.Year() != key.Year || a.Start.Month() != key.Month {
			continue
		}
		counts[a.Start.Day()]++
	}
	return counts
}

// BadgeLabel renders a badge count.
func BadgeLabel(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 appt"
	default:
		return fmt.Sprintf("%d appts", n)
	}
}
