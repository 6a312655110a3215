package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentSummary is a booked appointment as shown on the calendar.
type AppointmentSummary struct {
	Start        time.Time
	Price        decimal.Decimal
	CustomerName string
	ServiceName  string
	Note         string
	Phone        string
	ID           int64
	LocationID   int64
}

// NewAppointment is the payload sent to create an appointment.
type NewAppointment struct {
	Start        time.Time
	Price        decimal.Decimal
	CustomerName string
	Phone        string
	Note         string
	BusinessID   int64
	LocationID   int64
	ServiceID    int64
	StaffID      int64
}

// ServiceCatalogEntry is a bookable service with its list price at a location.
type ServiceCatalogEntry struct {
	Name       string
	Category   string
	BasePrice  decimal.Decimal
	ID         int64
	LocationID int64
}

// AvailabilitySlot is a free (start time, staff member) pair.
type AvailabilitySlot struct {
	StaffName string
	StartTime TimeOfDay
	StaffID   int64
}

// AvailabilityQuery describes a request for free slots.
type AvailabilityQuery struct {
	Date            time.Time
	LocationID      int64
	DurationMinutes int
	Earliest        TimeOfDay
}
