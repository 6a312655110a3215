// Package calendar computes the month grid, tracks the selected date and
// derives per-day appointment badges for the visible month.
package calendar

import "time"

// GridSize is the number of cells in a month grid: six weeks of seven days.
const GridSize = 42

// Cell is one day in the month grid. Padding cells belong to the previous or
// next month.
type Cell struct {
	Date      time.Time
	IsPadding bool
}

// Day returns the day of month of the cell.
func (c Cell) Day() int {
	return c.Date.Day()
}

// ComputeGrid returns the GridSize cells for the given month, starting on the
// Sunday on or before the first of the month. Months outside 1..12 roll over
// into the neighbouring years.
func ComputeGrid(year int, month time.Month, loc *time.Location) []Cell {
	if loc == nil {
		loc = time.Local
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	leading := int(first.Weekday())
	start := first.AddDate(0, 0, -leading)

	cells := make([]Cell, GridSize)
	for i := range cells {
		d := start.AddDate(0, 0, i)
		cells[i] = Cell{
			Date:      d,
			IsPadding: d.Month() != first.Month() || d.Year() != first.Year(),
		}
	}
	return cells
}

// DaysInMonth returns the number of days in the month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// normalize folds an out-of-range month into 1..12, adjusting the year.
func normalize(year int, month time.Month) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
