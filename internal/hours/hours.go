// Package hours tells whether the active location is open right now.
package hours

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
)

// TickInterval is how often the open/closed status is re-evaluated.
const TickInterval = 15 * time.Second

// Status is the open state of a location.
type Status string

// Location states.
const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusUnknown Status = "unknown"
)

// WeekdayIndex numbers t's weekday from Monday = 0.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayOf returns the schedule entry for t's weekday.
func DayOf(t time.Time, days []model.WorkingDay) (model.WorkingDay, bool) {
	idx := WeekdayIndex(t)
	for _, d := range days {
		if d.Weekday == idx {
			return d, true
		}
	}
	return model.WorkingDay{}, false
}

// StatusAt evaluates days at now. An empty schedule is unknown; a weekday
// missing from a non-empty schedule counts as closed.
func StatusAt(now time.Time, days []model.WorkingDay) Status {
	if len(days) == 0 {
		return StatusUnknown
	}
	day, ok := DayOf(now, days)
	if !ok || day.Closed {
		return StatusClosed
	}
	tod := model.TimeOfDayOf(now)
	if tod >= day.Opens && tod < day.Closes {
		return StatusOpen
	}
	return StatusClosed
}

// Request is a tagged working-hours fetch.
type Request struct {
	LocationID int64
	Generation uint64
}

// Result answers a Request.
type Result struct {
	Err  error
	Days []model.WorkingDay
	Request
}

// Schedule holds the working hours of the active location.
type Schedule struct {
	err        error
	days       []model.WorkingDay
	generation uint64
	location   int64
}

// Begin starts loading the hours of locationID, dropping the old schedule.
func (s *Schedule) Begin(locationID int64) Request {
	s.generation++
	s.location = locationID
	s.days, s.err = nil, nil
	return Request{LocationID: locationID, Generation: s.generation}
}

// Fetch loads the hours for req.
func Fetch(ctx context.Context, svc service.WorkingHours, req Request) Result {
	days, err := svc.GetWorkingHours(ctx, req.LocationID)
	if err != nil {
		err = fmt.Errorf("failed to load working hours: %w", err)
	}
	return Result{Request: req, Days: days, Err: err}
}

// Apply stores res unless a newer request superseded it.
func (s *Schedule) Apply(res Result) bool {
	if res.Generation != s.generation {
		return false
	}
	s.days, s.err = res.Days, res.Err
	return true
}

// Refresh loads the hours of locationID synchronously.
func (s *Schedule) Refresh(ctx context.Context, svc service.WorkingHours, locationID int64) error {
	res := Fetch(ctx, svc, s.Begin(locationID))
	s.Apply(res)
	return res.Err
}

// Days returns the loaded schedule.
func (s *Schedule) Days() []model.WorkingDay { return s.days }

// Err returns the error of the last fetch.
func (s *Schedule) Err() error { return s.err }

// Status evaluates the loaded schedule at now.
func (s *Schedule) Status(now time.Time) Status {
	return StatusAt(now, s.days)
}

// Today returns the schedule entry for now's weekday.
func (s *Schedule) Today(now time.Time) (model.WorkingDay, bool) {
	return DayOf(now, s.days)
}
