// Package fake is an in-memory booking backend served over HTTP. It backs
// the demo mode and the API client tests.
package fake

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/shopspring/decimal"
)

// AppointmentMinutes is how long a booked appointment blocks its staff
// member.
const AppointmentMinutes = 30

// SlotStep is the spacing of offered start times.
const SlotStep = 15 * time.Minute

// Staff is a staff member working at one location.
type Staff struct {
	Name       string
	ID         int64
	LocationID int64
}

type appointment struct {
	model.AppointmentSummary
	BusinessID int64
	ServiceID  int64
	StaffID    int64
}

type expense struct {
	Date time.Time
	model.ExpenseRecord
	BusinessID int64
	LocationID int64
}

// Store holds the backend data.
type Store struct {
	hours        map[int64][]model.WorkingDay
	appointments map[int64]appointment
	expenses     map[int64]expense
	businesses   map[int64]string
	idempotency  map[string]int64
	loc          *time.Location
	locations    []model.Location
	staff        []Staff
	services     []model.ServiceCatalogEntry
	nextID       int64
	mu           sync.Mutex
}

// NewStore creates an empty store reading wall-clock times in loc.
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		hours:        make(map[int64][]model.WorkingDay),
		appointments: make(map[int64]appointment),
		expenses:     make(map[int64]expense),
		businesses:   make(map[int64]string),
		idempotency:  make(map[string]int64),
		loc:          loc,
		nextID:       1000,
	}
}

// AddBusiness registers a business name.
func (s *Store) AddBusiness(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses[id] = name
}

// AddLocation registers a location.
func (s *Store) AddLocation(l model.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = append(s.locations, l)
}

// AddStaff registers a staff member.
func (s *Store) AddStaff(st Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = append(s.staff, st)
}

// AddService registers a catalog entry.
func (s *Store) AddService(svc model.ServiceCatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = append(s.services, svc)
}

// SetHours sets the weekly schedule of a location.
func (s *Store) SetHours(locationID int64, days []model.WorkingDay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hours[locationID] = days
}

// AddAppointment stores an appointment and returns its id.
func (s *Store) AddAppointment(a model.NewAppointment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAppointmentLocked(a)
}

func (s *Store) addAppointmentLocked(a model.NewAppointment) int64 {
	s.nextID++
	id := s.nextID

	name := ""
	for _, svc := range s.services {
		if svc.ID == a.ServiceID {
			name = svc.Name
		}
	}
	s.appointments[id] = appointment{
		AppointmentSummary: model.AppointmentSummary{
			ID:           id,
			LocationID:   a.LocationID,
			CustomerName: a.CustomerName,
			ServiceName:  name,
			Start:        a.Start.In(s.loc),
			Price:        a.Price,
			Note:         a.Note,
			Phone:        a.Phone,
		},
		BusinessID: a.BusinessID,
		ServiceID:  a.ServiceID,
		StaffID:    a.StaffID,
	}
	return id
}

// AddExpense stores an expense and returns its id.
func (s *Store) AddExpense(e model.NewExpense) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addExpenseLocked(e)
}

func (s *Store) addExpenseLocked(e model.NewExpense) int64 {
	s.nextID++
	id := s.nextID
	s.expenses[id] = expense{
		ExpenseRecord: model.ExpenseRecord{
			ID:          id,
			Description: e.Description,
			Amount:      e.Amount,
			Category:    e.Category,
		},
		Date:       model.DateOnly(e.Date.In(s.loc)),
		BusinessID: e.BusinessID,
		LocationID: e.LocationID,
	}
	return id
}

// Locations returns the locations of a business.
func (s *Store) Locations(businessID int64) []model.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Location
	for _, l := range s.locations {
		if l.BusinessID == businessID {
			out = append(out, l)
		}
	}
	return out
}

// Appointments returns the appointments at a location in [from, to),
// ordered by start.
func (s *Store) Appointments(businessID, locationID int64, from, to time.Time) []model.AppointmentSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AppointmentSummary
	for _, a := range s.appointments {
		if a.BusinessID != businessID || a.LocationID != locationID {
			continue
		}
		if a.Start.Before(from) || !a.Start.Before(to) {
			continue
		}
		out = append(out, a.AppointmentSummary)
	}
	slices.SortFunc(out, func(x, y model.AppointmentSummary) int {
		return cmp.Or(x.Start.Compare(y.Start), cmp.Compare(x.ID, y.ID))
	})
	return out
}

// Expenses returns the expenses at a location in [from, to).
func (s *Store) Expenses(businessID, locationID int64, from, to time.Time) []model.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ExpenseRecord
	for _, e := range s.expenses {
		if e.BusinessID != businessID || e.LocationID != locationID {
			continue
		}
		if e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}
		out = append(out, e.ExpenseRecord)
	}
	slices.SortFunc(out, func(x, y model.ExpenseRecord) int { return cmp.Compare(x.ID, y.ID) })
	return out
}

// DeleteAppointment removes an appointment and reports whether it existed.
func (s *Store) DeleteAppointment(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.appointments[id]
	delete(s.appointments, id)
	return ok
}

// DeleteExpense removes an expense and reports whether it existed.
func (s *Store) DeleteExpense(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.expenses[id]
	delete(s.expenses, id)
	return ok
}

// Services returns the catalog of a location.
func (s *Store) Services(locationID int64) []model.ServiceCatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ServiceCatalogEntry
	for _, svc := range s.services {
		if svc.LocationID == locationID {
			out = append(out, svc)
		}
	}
	return out
}

// Hours returns the schedule of a location.
func (s *Store) Hours(locationID int64) []model.WorkingDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.hours[locationID])
}

// Availability computes the free slots for q: every SlotStep inside the
// working hours where a staff member of the location has no appointment
// overlapping the requested duration.
func (s *Store) Availability(q model.AvailabilityQuery) []model.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := model.DateOnly(q.Date.In(s.loc))
	weekday := (int(date.Weekday()) + 6) % 7
	var day *model.WorkingDay
	for i, d := range s.hours[q.LocationID] {
		if d.Weekday == weekday {
			day = &s.hours[q.LocationID][i]
		}
	}
	if day == nil || day.Closed || q.DurationMinutes <= 0 {
		return nil
	}

	duration := time.Duration(q.DurationMinutes) * time.Minute
	var out []model.AvailabilitySlot
	for t := day.Opens; int(t)+q.DurationMinutes <= int(day.Closes); t += model.TimeOfDay(SlotStep / time.Minute) {
		if t < q.Earliest {
			continue
		}
		start := t.On(date)
		end := start.Add(duration)
		for _, st := range s.staff {
			if st.LocationID != q.LocationID || s.busyLocked(st.ID, start, end) {
				continue
			}
			out = append(out, model.AvailabilitySlot{StartTime: t, StaffID: st.ID, StaffName: st.Name})
		}
	}
	return out
}

func (s *Store) busyLocked(staffID int64, start, end time.Time) bool {
	for _, a := range s.appointments {
		if a.StaffID != staffID {
			continue
		}
		aEnd := a.Start.Add(AppointmentMinutes * time.Minute)
		if a.Start.Before(end) && start.Before(aEnd) {
			return true
		}
	}
	return false
}

// Report builds the financial report of a location for the period that
// contains base.
func (s *Store) Report(businessID, locationID int64, period model.ReportPeriod, base time.Time) *model.FinancialReport {
	from, to := periodBounds(period, base.In(s.loc))

	s.mu.Lock()
	rep := &model.FinancialReport{
		BusinessName: s.businesses[businessID],
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, l := range s.locations {
		if l.ID == locationID {
			rep.LocationName = l.Name
		}
	}
	s.mu.Unlock()

	for _, a := range s.Appointments(businessID, locationID, from, to) {
		rep.TotalIncome = rep.TotalIncome.Add(a.Price)
		rep.Entries = append(rep.Entries, model.ReportEntry{
			Date:        model.DateOnly(a.Start),
			Description: a.CustomerName,
			Details:     a.ServiceName,
			Kind:        model.EntryIncome,
			Amount:      a.Price,
		})
	}

	s.mu.Lock()
	var exps []expense
	for _, e := range s.expenses {
		if e.BusinessID == businessID && e.LocationID == locationID && !e.Date.Before(from) && e.Date.Before(to) {
			exps = append(exps, e)
		}
	}
	s.mu.Unlock()
	slices.SortFunc(exps, func(x, y expense) int { return cmp.Or(x.Date.Compare(y.Date), cmp.Compare(x.ID, y.ID)) })

	for _, e := range exps {
		rep.TotalExpense = rep.TotalExpense.Add(e.Amount)
		rep.Entries = append(rep.Entries, model.ReportEntry{
			Date:        e.Date,
			Description: e.Description,
			Details:     string(e.Category),
			Kind:        model.EntryExpense,
			Amount:      e.Amount,
		})
	}
	rep.NetProfit = rep.TotalIncome.Sub(rep.TotalExpense)
	return rep
}

func periodBounds(period model.ReportPeriod, base time.Time) (time.Time, time.Time) {
	y, m, d := base.Date()
	switch period {
	case model.PeriodYear:
		from := time.Date(y, time.January, 1, 0, 0, 0, 0, base.Location())
		return from, from.AddDate(1, 0, 0)
	case model.PeriodMonth:
		from := time.Date(y, m, 1, 0, 0, 0, 0, base.Location())
		return from, from.AddDate(0, 1, 0)
	default:
		from := time.Date(y, m, d, 0, 0, 0, 0, base.Location())
		return from, from.AddDate(0, 0, 1)
	}
}

// CreateAppointment stores a, returning the id already stored under key
// when the same create is repeated.
func (s *Store) CreateAppointment(key string, a model.NewAppointment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.idempotency[key]; ok && key != "" {
		return id
	}
	id := s.addAppointmentLocked(a)
	if key != "" {
		s.idempotency[key] = id
	}
	return id
}

// CreateExpense stores e, returning the id already stored under key when
// the same create is repeated.
func (s *Store) CreateExpense(key string, e model.NewExpense) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.idempotency[key]; ok && key != "" {
		return id
	}
	id := s.addExpenseLocked(e)
	if key != "" {
		s.idempotency[key] = id
	}
	return id
}
