package booking

import (
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
)

// ClampEarliest returns the earliest start time to query on date. On the
// current day it is never before now plus one minute, rounded up to the
// whole minute. When that bound falls past midnight it returns
// model.EndOfDay: no start time is left on date.
func ClampEarliest(requested model.TimeOfDay, date, now time.Time) model.TimeOfDay {
	now = now.In(date.Location())
	if !model.SameDay(date, now) {
		return requested
	}

	limit := now.Add(time.Minute)
	if !model.SameDay(limit, now) {
		return model.EndOfDay
	}
	floor := model.TimeOfDayOf(limit)
	if limit.Second() > 0 || limit.Nanosecond() > 0 {
		floor++
	}
	if floor >= model.EndOfDay {
		return model.EndOfDay
	}

	return max(requested, floor)
}
