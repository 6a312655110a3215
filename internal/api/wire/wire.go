// Package wire holds the JSON shapes exchanged with the booking backend and
// their conversions to the domain model.
package wire

import (
	"fmt"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/shopspring/decimal"
)

// DateTimeLayout is the zone-less timestamp format of appointment starts.
// Timestamps are wall-clock times at the location.
const DateTimeLayout = "2006-01-02T15:04:05"

// ParseDateTime parses an appointment start in loc. RFC 3339 values keep
// their own offset.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatDateTime renders t as a zone-less wall-clock timestamp.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// Location is a business location.
type Location struct {
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	ID         int64  `json:"id"`
	BusinessID int64  `json:"businessId"`
}

// Appointment is a booked appointment.
type Appointment struct {
	Price         decimal.Decimal `json:"price"`
	StartDateTime string          `json:"startDateTime"`
	CustomerName  string          `json:"customerName"`
	ServiceName   string          `json:"serviceName"`
	Note          string          `json:"note,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	ID            int64           `json:"id"`
	LocationID    int64           `json:"locationId"`
}

// NewAppointment is the body of a create-appointment request.
type NewAppointment struct {
	Price         decimal.Decimal `json:"price"`
	StartDateTime string          `json:"startDateTime"`
	CustomerName  string          `json:"customerName"`
	Phone         string          `json:"phone,omitempty"`
	Note          string          `json:"note,omitempty"`
	BusinessID    int64           `json:"businessId"`
	LocationID    int64           `json:"locationId"`
	ServiceID     int64           `json:"serviceId"`
	StaffID       int64           `json:"staffId"`
}

// Expense is a logged expense.
type Expense struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	ID          int64           `json:"id"`
}

// NewExpense is the body of a create-expense request.
type NewExpense struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	BusinessID  int64           `json:"businessId"`
	LocationID  int64           `json:"locationId"`
}

// Service is a catalog entry.
type Service struct {
	Price      decimal.Decimal `json:"price"`
	Name       string          `json:"name"`
	Category   string          `json:"category,omitempty"`
	ID         int64           `json:"id"`
	LocationID int64           `json:"locationId"`
}

// Slot is a free start time for one staff member.
type Slot struct {
	StaffName string          `json:"staffName"`
	StartTime model.TimeOfDay `json:"startTime"`
	StaffID   int64           `json:"staffId"`
}

// ReportEntry is one line of a report.
type ReportEntry struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Details     string          `json:"details,omitempty"`
	Kind        string          `json:"kind"`
}

// Report is a financial report.
type Report struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetProfit    decimal.Decimal `json:"netProfit"`
	BusinessName string          `json:"businessName"`
	LocationName string          `json:"locationName"`
	Entries      []ReportEntry   `json:"entries"`
}

// WorkingDay is the schedule of one weekday, Monday = 0.
type WorkingDay struct {
	Opens   model.TimeOfDay `json:"opens"`
	Closes  model.TimeOfDay `json:"closes"`
	Weekday int             `json:"weekday"`
	Closed  bool            `json:"closed"`
}

// Created is the answer to a create request.
type Created struct {
	ID int64 `json:"id"`
}

// Error is the body of a failed request.
type Error struct {
	Message string `json:"message"`
}

// ToLocation converts l.
func (l Location) ToLocation() model.Location {
	return model.Location{ID: l.ID, BusinessID: l.BusinessID, Name: l.Name, Address: l.Address}
}

// FromLocation converts l.
func FromLocation(l model.Location) Location {
	return Location{ID: l.ID, BusinessID: l.BusinessID, Name: l.Name, Address: l.Address}
}

// ToSummary converts a in loc.
func (a Appointment) ToSummary(loc *time.Location) (model.AppointmentSummary, error) {
	start, err := ParseDateTime(a.StartDateTime, loc)
	if err != nil {
		return model.AppointmentSummary{}, fmt.Errorf("appointment %d: %w", a.ID, err)
	}
	return model.AppointmentSummary{
		ID:           a.ID,
		LocationID:   a.LocationID,
		CustomerName: a.CustomerName,
		ServiceName:  a.ServiceName,
		Start:        start,
		Price:        a.Price,
		Note:         a.Note,
		Phone:        a.Phone,
	}, nil
}

// FromSummary converts a.
func FromSummary(a model.AppointmentSummary) Appointment {
	return Appointment{
		ID:            a.ID,
		LocationID:    a.LocationID,
		CustomerName:  a.CustomerName,
		ServiceName:   a.ServiceName,
		StartDateTime: FormatDateTime(a.Start),
		Price:         a.Price,
		Note:          a.Note,
		Phone:         a.Phone,
	}
}

// FromNewAppointment converts a.
func FromNewAppointment(a model.NewAppointment) NewAppointment {
	return NewAppointment{
		BusinessID:    a.BusinessID,
		LocationID:    a.LocationID,
		ServiceID:     a.ServiceID,
		StaffID:       a.StaffID,
		StartDateTime: FormatDateTime(a.Start),
		Price:         a.Price,
		CustomerName:  a.CustomerName,
		Phone:         a.Phone,
		Note:          a.Note,
	}
}

// ToNewAppointment converts a in loc.
func (a NewAppointment) ToNewAppointment(loc *time.Location) (model.NewAppointment, error) {
	start, err := ParseDateTime(a.StartDateTime, loc)
	if err != nil {
		return model.NewAppointment{}, err
	}
	return model.NewAppointment{
		BusinessID:   a.BusinessID,
		LocationID:   a.LocationID,
		ServiceID:    a.ServiceID,
		StaffID:      a.StaffID,
		Start:        start,
		Price:        a.Price,
		CustomerName: a.CustomerName,
		Phone:        a.Phone,
		Note:         a.Note,
	}, nil
}

// ToExpense converts e. An empty category reads as Other.
func (e Expense) ToExpense() model.ExpenseRecord {
	cat := model.ExpenseCategory(e.Category)
	if cat == "" {
		cat = model.ExpenseOther
	}
	return model.ExpenseRecord{ID: e.ID, Description: e.Description, Amount: e.Amount, Category: cat}
}

// FromExpense converts e.
func FromExpense(e model.ExpenseRecord) Expense {
	return Expense{ID: e.ID, Description: e.Description, Amount: e.Amount, Category: string(e.Category)}
}

// FromNewExpense converts e.
func FromNewExpense(e model.NewExpense) NewExpense {
	return NewExpense{
		BusinessID:  e.BusinessID,
		LocationID:  e.LocationID,
		Date:        e.Date.Format(model.DateLayout),
		Description: e.Description,
		Amount:      e.Amount,
		Category:    string(e.Category),
	}
}

// ToService converts s.
func (s Service) ToService() model.ServiceCatalogEntry {
	return model.ServiceCatalogEntry{ID: s.ID, LocationID: s.LocationID, Name: s.Name, Category: s.Category, BasePrice: s.Price}
}

// FromService converts s.
func FromService(s model.ServiceCatalogEntry) Service {
	return Service{ID: s.ID, LocationID: s.LocationID, Name: s.Name, Category: s.Category, Price: s.BasePrice}
}

// ToSlot converts s.
func (s Slot) ToSlot() model.AvailabilitySlot {
	return model.AvailabilitySlot{StartTime: s.StartTime, StaffID: s.StaffID, StaffName: s.StaffName}
}

// FromSlot converts s.
func FromSlot(s model.AvailabilitySlot) Slot {
	return Slot{StartTime: s.StartTime, StaffID: s.StaffID, StaffName: s.StaffName}
}

// ToReport converts r, reading entry dates in loc.
func (r Report) ToReport(loc *time.Location) (*model.FinancialReport, error) {
	out := &model.FinancialReport{
		BusinessName: r.BusinessName,
		LocationName: r.LocationName,
		TotalIncome:  r.TotalIncome,
		TotalExpense: r.TotalExpense,
		NetProfit:    r.NetProfit,
	}
	for _, e := range r.Entries {
		date, err := time.ParseInLocation(model.DateLayout, e.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("report entry date %q: %w", e.Date, err)
		}
		out.Entries = append(out.Entries, model.ReportEntry{
			Date:        date,
			Description: e.Description,
			Details:     e.Details,
			Kind:        model.EntryKind(e.Kind),
			Amount:      e.Amount,
		})
	}
	return out, nil
}

// FromReport converts r.
func FromReport(r *model.FinancialReport) Report {
	out := Report{
		BusinessName: r.BusinessName,
		LocationName: r.LocationName,
		TotalIncome:  r.TotalIncome,
		TotalExpense: r.TotalExpense,
		NetProfit:    r.NetProfit,
		Entries:      []ReportEntry{},
	}
	for _, e := range r.Entries {
		out.Entries = append(out.Entries, ReportEntry{
			Date:        e.Date.Format(model.DateLayout),
			Description: e.Description,
			Details:     e.Details,
			Kind:        string(e.Kind),
			Amount:      e.Amount,
		})
	}
	return out
}

// ToWorkingDay converts d.
func (d WorkingDay) ToWorkingDay() model.WorkingDay {
	return model.WorkingDay{Weekday: d.Weekday, Opens: d.Opens, Closes: d.Closes, Closed: d.Closed}
}

// FromWorkingDay converts d.
func FromWorkingDay(d model.WorkingDay) WorkingDay {
	return WorkingDay{Weekday: d.Weekday, Opens: d.Opens, Closes: d.Closes, Closed: d.Closed}
}
