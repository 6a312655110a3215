// Package booking implements the appointment booking wizard: pick a
// service and time window, choose a free slot, enter the client and submit.
package booking

import (
	"slices"

	"github.com/Veraticus/frontdesk/internal/model"
)

// Stage names a step of the wizard.
type Stage int

// Wizard steps in order.
const (
	StageFilter Stage = iota
	StageSlots
	StageClientInfo
)

func (s Stage) String() string {
	switch s {
	case StageSlots:
		return "Slots"
	case StageClientInfo:
		return "Client"
	default:
		return "Filter"
	}
}

// State is the current step together with the data only that step has.
type State interface {
	Stage() Stage
}

// FilterState collects the service, duration, date and earliest time.
type FilterState struct{}

// Stage implements State.
func (FilterState) Stage() Stage { return StageFilter }

// SlotsState lists the free slots returned by the availability query.
type SlotsState struct {
	Buckets []Bucket
}

// Stage implements State.
func (SlotsState) Stage() Stage { return StageSlots }

// ClientInfoState collects the client details for the chosen slot.
type ClientInfoState struct {
	Slot model.AvailabilitySlot
}

// Stage implements State.
func (ClientInfoState) Stage() Stage { return StageClientInfo }

// Bucket groups the staff members free at one start time.
type Bucket struct {
	Slots []model.AvailabilitySlot
	Time  model.TimeOfDay
}

// GroupSlots groups slots by start time in ascending order, dropping any
// slot that starts before earliest. Staff keep the order the backend gave.
func GroupSlots(slots []model.AvailabilitySlot, earliest model.TimeOfDay) []Bucket {
	byTime := make(map[model.TimeOfDay][]model.AvailabilitySlot)
	for _, s := range slots {
		if s.StartTime < earliest {
			continue
		}
		byTime[s.StartTime] = append(byTime[s.StartTime], s)
	}

	times := make([]model.TimeOfDay, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	slices.Sort(times)

	buckets := make([]Bucket, 0, len(times))
	for _, t := range times {
		buckets = append(buckets, Bucket{Time: t, Slots: byTime[t]})
	}
	return buckets
}

// SlotCount returns the total number of slots across buckets.
func SlotCount(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += len(b.Slots)
	}
	return n
}
