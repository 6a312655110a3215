package fake

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/frontdesk/internal/api/wire"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Messages returned by the fake backend.
const (
	msgUnauthorized     = "Session expired, please sign in again"
	msgInvalidID        = "Invalid id"
	msgInvalidDate      = "Invalid date, expected YYYY-MM-DD"
	msgInvalidBody      = "Invalid request body"
	msgNotFound         = "Not found"
	msgCustomerRequired = "Customer name is required"
	msgSlotTaken        = "The selected time is no longer available"
)

// failure is an injected error answer.
type failure struct {
	method  string
	prefix  string
	message string
	status  int
	times   int
}

// Server serves a Store over the backend HTTP contract.
type Server struct {
	store    *Store
	router   *mux.Router
	secret   []byte
	failures []failure
	requests int
	mu       sync.Mutex
}

// NewServer creates a server for store. When secret is non-empty every
// request must carry a bearer token signed with it.
func NewServer(store *Store, secret []byte) *Server {
	s := &Server{store: store, secret: secret}

	r := mux.NewRouter()
	r.Use(s.countRequests, s.injectFailures, s.requireToken)
	r.HandleFunc("/businesses/{businessId:[0-9]+}/locations", s.listLocations).Methods(http.MethodGet)
	r.HandleFunc("/appointments/day", s.listAppointmentsByDay).Methods(http.MethodGet)
	r.HandleFunc("/appointments/month", s.listAppointmentsByMonth).Methods(http.MethodGet)
	r.HandleFunc("/appointments", s.createAppointment).Methods(http.MethodPost)
	r.HandleFunc("/appointments/{id:[0-9]+}", s.deleteAppointment).Methods(http.MethodDelete)
	r.HandleFunc("/expenses/day", s.listExpensesByDay).Methods(http.MethodGet)
	r.HandleFunc("/expenses", s.createExpense).Methods(http.MethodPost)
	r.HandleFunc("/expenses/{id:[0-9]+}", s.deleteExpense).Methods(http.MethodDelete)
	r.HandleFunc("/catalog", s.listServices).Methods(http.MethodGet)
	r.HandleFunc("/availability", s.queryAvailability).Methods(http.MethodGet)
	r.HandleFunc("/reports", s.getReport).Methods(http.MethodGet)
	r.HandleFunc("/locations/{locationId:[0-9]+}/hours", s.getHours).Methods(http.MethodGet)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Fail makes the next times requests whose method matches and whose path
// starts with prefix answer status with message.
func (s *Server) Fail(method, prefix string, status, times int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, prefix: prefix, status: status, times: times, message: message})
}

// Requests returns the number of requests served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		for i := range s.failures {
			f := &s.failures[i]
			if f.times <= 0 || f.method != r.Method || !strings.HasPrefix(r.URL.Path, f.prefix) {
				continue
			}
			f.times--
			s.mu.Unlock()
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			respondError(w, f.status, f.message)
			return
		}
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.secret) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			respondError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return s.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			slog.Debug("Rejected token", "error", err)
			respondError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(mux.Vars(r)["businessId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	out := []wire.Location{}
	for _, l := range s.store.Locations(businessID) {
		out = append(out, wire.FromLocation(l))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) listAppointmentsByDay(w http.ResponseWriter, r *http.Request) {
	businessID, locationID, ok := scopeParams(w, r)
	if !ok {
		return
	}
	day, ok := s.dateParam(w, r, "date")
	if !ok {
		return
	}
	s.respondAppointments(w, businessID, locationID, day, day.AddDate(0, 0, 1))
}

func (s *Server) listAppointmentsByMonth(w http.ResponseWriter, r *http.Request) {
	businessID, locationID, ok := scopeParams(w, r)
	if !ok {
		return
	}
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.store.loc)
	s.respondAppointments(w, businessID, locationID, from, from.AddDate(0, 1, 0))
}

func (s *Server) respondAppointments(w http.ResponseWriter, businessID, locationID int64, from, to time.Time) {
	out := []wire.Appointment{}
	for _, a := range s.store.Appointments(businessID, locationID, from, to) {
		out = append(out, wire.FromSummary(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var body wire.NewAppointment
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	appt, err := body.ToNewAppointment(s.store.loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if strings.TrimSpace(appt.CustomerName) == "" {
		respondError(w, http.StatusBadRequest, msgCustomerRequired)
		return
	}

	s.store.mu.Lock()
	taken := s.store.busyLocked(appt.StaffID, appt.Start, appt.Start.Add(AppointmentMinutes*time.Minute))
	_, repeated := s.store.idempotency[r.Header.Get("Idempotency-Key")]
	s.store.mu.Unlock()
	if taken && !repeated {
		respondError(w, http.StatusConflict, msgSlotTaken)
		return
	}

	id := s.store.CreateAppointment(r.Header.Get("Idempotency-Key"), appt)
	respondJSON(w, http.StatusCreated, wire.Created{ID: id})
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	if !s.store.DeleteAppointment(id) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listExpensesByDay(w http.ResponseWriter, r *http.Request) {
	businessID, locationID, ok := scopeParams(w, r)
	if !ok {
		return
	}
	day, ok := s.dateParam(w, r, "date")
	if !ok {
		return
	}
	out := []wire.Expense{}
	for _, e := range s.store.Expenses(businessID, locationID, day, day.AddDate(0, 0, 1)) {
		out = append(out, wire.FromExpense(e))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var body wire.NewExpense
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	date, err := time.ParseInLocation(model.DateLayout, body.Date, s.store.loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	id := s.store.CreateExpense(r.Header.Get("Idempotency-Key"), model.NewExpense{
		Date:        date,
		Amount:      body.Amount,
		Description: body.Description,
		Category:    model.ExpenseCategory(body.Category),
		BusinessID:  body.BusinessID,
		LocationID:  body.LocationID,
	})
	respondJSON(w, http.StatusCreated, wire.Created{ID: id})
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	if !s.store.DeleteExpense(id) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	_, locationID, ok := scopeParams(w, r)
	if !ok {
		return
	}
	out := []wire.Service{}
	for _, svc := range s.store.Services(locationID) {
		out = append(out, wire.FromService(svc))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) queryAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	locationID, err := strconv.ParseInt(q.Get("locationId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	day, ok := s.dateParam(w, r, "date")
	if !ok {
		return
	}
	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil || duration <= 0 {
		respondError(w, http.StatusBadRequest, "Duration must be a positive number of minutes")
		return
	}
	var earliest model.TimeOfDay
	if v := q.Get("earliest"); v != "" {
		if earliest, err = model.ParseTimeOfDay(v); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid earliest time, expected HH:MM")
			return
		}
	}

	out := []wire.Slot{}
	for _, slot := range s.store.Availability(model.AvailabilityQuery{
		LocationID:      locationID,
		Date:            day,
		DurationMinutes: duration,
		Earliest:        earliest,
	}) {
		out = append(out, wire.FromSlot(slot))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	businessID, locationID, ok := scopeParams(w, r)
	if !ok {
		return
	}
	base, ok := s.dateParam(w, r, "baseDate")
	if !ok {
		return
	}
	period := model.ReportPeriod(r.URL.Query().Get("period"))
	switch period {
	case model.PeriodDay, model.PeriodMonth, model.PeriodYear:
	default:
		respondError(w, http.StatusBadRequest, "Unknown report period")
		return
	}
	respondJSON(w, http.StatusOK, wire.FromReport(s.store.Report(businessID, locationID, period, base)))
}

func (s *Server) getHours(w http.ResponseWriter, r *http.Request) {
	locationID, err := strconv.ParseInt(mux.Vars(r)["locationId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	out := []wire.WorkingDay{}
	for _, d := range s.store.Hours(locationID) {
		out = append(out, wire.FromWorkingDay(d))
	}
	respondJSON(w, http.StatusOK, out)
}

func scopeParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	q := r.URL.Query()
	businessID, errB := strconv.ParseInt(q.Get("businessId"), 10, 64)
	locationID, errL := strconv.ParseInt(q.Get("locationId"), 10, 64)
	if err := errors.Join(errB, errL); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidID)
		return 0, 0, false
	}
	return businessID, locationID, true
}

func (s *Server) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	t, err := time.ParseInLocation(model.DateLayout, r.URL.Query().Get(name), s.store.loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidDate)
		return time.Time{}, false
	}
	return t, true
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, wire.Error{Message: message})
}
