package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/shopspring/decimal"
)

// Wizard errors.
var (
	ErrUnknownService = errors.New("service is not offered at this location")
	ErrWrongStage     = errors.New("not available at this step")
	ErrDateFixed      = errors.New("date is fixed by the day view")
	ErrClosed         = errors.New("wizard is closed")
	ErrUnknownSlot    = errors.New("slot is not among the offered slots")
	ErrDayOver        = errors.New("no start time is left on the selected day")
)

// Messages shown inline by the wizard.
const (
	MsgSelectService    = "Please choose a service"
	MsgInvalidDuration  = "Duration must be greater than zero"
	MsgNoSlots          = "No free slots for the selected day. Try another day or an earlier time."
	MsgSearchFailed     = "Could not check availability. Please try again."
	MsgCustomerRequired = "Please enter the client's name"
	MsgSubmitFailed     = "Could not book the appointment. Please try again."
	MsgCatalogFailed    = "Could not load the services for this location"
)

// Defaults for a fresh draft.
const (
	DefaultDurationMinutes = 30
	DefaultEarliest        = model.TimeOfDay(8 * 60)
)

// Services is what the wizard needs from the backend.
type Services interface {
	service.Catalog
	service.Availability
	service.Appointments
}

// Options configures a wizard.
type Options struct {
	// Date seeds the filter; zero means today.
	Date time.Time
	// Now is the clock used for the earliest-time clamp.
	Now func() time.Time
	// OnComplete is called with the id of a booked appointment.
	OnComplete func(id int64)
	Scope      service.Scope
	// FixedDate pins the date, as when the wizard is opened from a day.
	FixedDate bool
}

// Draft is the data entered so far.
type Draft struct {
	Date            time.Time
	Price           decimal.Decimal
	CustomerName    string
	Phone           string
	Note            string
	ServiceID       int64
	DurationMinutes int
	Earliest        model.TimeOfDay
}

// Wizard is the booking state machine. It is not safe for concurrent use;
// network calls are split into Begin/Fetch/Apply steps so only the Fetch
// step leaves the caller's goroutine.
type Wizard struct {
	svc        Services
	bus        *eventbus.Bus
	now        func() time.Time
	onComplete func(int64)
	state      State
	catalogErr error

	message string
	catalog []model.ServiceCatalogEntry
	slots   []Bucket
	draft   Draft

	scope      service.Scope
	generation uint64
	catalogGen uint64
	earliest   model.TimeOfDay
	fixedDate  bool
	closed     bool
	submitting bool
	searching  bool
}

// New creates a wizard in the filter step.
func New(svc Services, bus *eventbus.Bus, opts Options) *Wizard {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	date := opts.Date
	if date.IsZero() {
		date = now()
	}

	w := &Wizard{
		svc:        svc,
		bus:        bus,
		now:        now,
		onComplete: opts.OnComplete,
		scope:      opts.Scope,
		fixedDate:  opts.FixedDate,
		state:      FilterState{},
	}
	w.draft = Draft{
		Date:            model.DateOnly(date),
		DurationMinutes: DefaultDurationMinutes,
		Earliest:        DefaultEarliest,
		Price:           decimal.Zero,
	}
	w.Reclamp()
	return w
}

// State returns the current step.
func (w *Wizard) State() State { return w.state }

// Stage returns the current step name.
func (w *Wizard) Stage() Stage { return w.state.Stage() }

// Draft returns a copy of the entered data.
func (w *Wizard) Draft() Draft { return w.draft }

// Message returns the inline message of the current step.
func (w *Wizard) Message() string { return w.message }

// Closed reports whether the wizard has finished or been cancelled.
func (w *Wizard) Closed() bool { return w.closed }

// Busy reports whether a search or submit is in flight.
func (w *Wizard) Busy() bool { return w.searching || w.submitting }

// FixedDate reports whether the date is pinned.
func (w *Wizard) FixedDate() bool { return w.fixedDate }

// Scope returns the business and location bookings are made for.
func (w *Wizard) Scope() service.Scope { return w.scope }

// EffectiveEarliest returns the earliest time the next query will use.
func (w *Wizard) EffectiveEarliest() model.TimeOfDay { return w.earliest }

// Catalog returns the services offered at the location.
func (w *Wizard) Catalog() []model.ServiceCatalogEntry { return w.catalog }

// CatalogErr returns the error of the last catalog load.
func (w *Wizard) CatalogErr() error { return w.catalogErr }

// Service returns the selected catalog entry.
func (w *Wizard) Service() (model.ServiceCatalogEntry, bool) {
	return w.lookup(w.draft.ServiceID)
}

func (w *Wizard) lookup(id int64) (model.ServiceCatalogEntry, bool) {
	for _, s := range w.catalog {
		if s.ID == id {
			return s, true
		}
	}
	return model.ServiceCatalogEntry{}, false
}

// CatalogRequest is a tagged catalog load.
type CatalogRequest struct {
	Scope      service.Scope
	Generation uint64
}

// CatalogResult answers a CatalogRequest.
type CatalogResult struct {
	Err      error
	Services []model.ServiceCatalogEntry
	CatalogRequest
}

// BeginCatalog tags a catalog load.
func (w *Wizard) BeginCatalog() CatalogRequest {
	w.catalogGen++
	return CatalogRequest{Scope: w.scope, Generation: w.catalogGen}
}

// FetchCatalog loads the catalog for req.
func FetchCatalog(ctx context.Context, svc service.Catalog, req CatalogRequest) CatalogResult {
	list, err := svc.ListServices(ctx, req.Scope)
	if err != nil {
		err = fmt.Errorf("failed to load catalog: %w", err)
	}
	return CatalogResult{CatalogRequest: req, Services: list, Err: err}
}

// ApplyCatalog stores the catalog unless a newer request superseded res.
func (w *Wizard) ApplyCatalog(res CatalogResult) bool {
	if res.Generation != w.catalogGen || w.closed {
		return false
	}
	w.catalogErr = res.Err
	if res.Err != nil {
		w.message = MsgCatalogFailed
		return true
	}
	w.catalog = res.Services
	return true
}

// LoadCatalog loads the catalog synchronously.
func (w *Wizard) LoadCatalog(ctx context.Context) error {
	res := FetchCatalog(ctx, w.svc, w.BeginCatalog())
	w.ApplyCatalog(res)
	return res.Err
}

// SetService selects a service and resets the price to its catalog price,
// discarding any manual price.
func (w *Wizard) SetService(id int64) error {
	if err := w.requireStage(StageFilter); err != nil {
		return err
	}
	entry, ok := w.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownService, id)
	}
	w.draft.ServiceID = id
	w.draft.Price = entry.BasePrice
	w.message = ""
	return nil
}

// SetDuration sets the requested duration in minutes.
func (w *Wizard) SetDuration(minutes int) error {
	if err := w.requireStage(StageFilter); err != nil {
		return err
	}
	w.draft.DurationMinutes = minutes
	return nil
}

// SetDate changes the day to book and re-applies the earliest-time clamp.
func (w *Wizard) SetDate(date time.Time) error {
	if err := w.requireStage(StageFilter); err != nil {
		return err
	}
	if w.fixedDate {
		return ErrDateFixed
	}
	w.draft.Date = model.DateOnly(date)
	w.Reclamp()
	return nil
}

// SetEarliest sets the requested earliest start time.
func (w *Wizard) SetEarliest(t model.TimeOfDay) error {
	if err := w.requireStage(StageFilter); err != nil {
		return err
	}
	w.draft.Earliest = t
	w.Reclamp()
	return nil
}

// Reclamp re-evaluates the earliest time against the clock and reports
// whether it moved. It runs on every date change and on a periodic tick.
func (w *Wizard) Reclamp() bool {
	next := ClampEarliest(w.draft.Earliest, w.draft.Date, w.now())
	if next == w.earliest {
		return false
	}
	w.earliest = next
	return true
}

// SetCustomerName sets the client's name.
func (w *Wizard) SetCustomerName(name string) { w.draft.CustomerName = name }

// SetPhone sets the optional phone number.
func (w *Wizard) SetPhone(phone string) { w.draft.Phone = phone }

// SetNote sets the optional note.
func (w *Wizard) SetNote(note string) { w.draft.Note = note }

// SetPrice overrides the catalog price.
func (w *Wizard) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", common.ErrValidation)
	}
	w.draft.Price = price
	return nil
}

// AvailabilityRequest is a tagged availability query.
type AvailabilityRequest struct {
	Query      model.AvailabilityQuery
	Generation uint64
}

// AvailabilityResult answers an AvailabilityRequest.
type AvailabilityResult struct {
	Err   error
	Slots []model.AvailabilitySlot
	AvailabilityRequest
}

// BeginSearch validates the filter and tags an availability query. A
// validation failure sets the inline message and no query must be made.
func (w *Wizard) BeginSearch() (AvailabilityRequest, error) {
	if err := w.requireStage(StageFilter); err != nil {
		return AvailabilityRequest{}, err
	}
	switch {
	case w.draft.ServiceID == 0:
		w.message = MsgSelectService
	case w.draft.DurationMinutes <= 0:
		w.message = MsgInvalidDuration
	default:
		w.message = ""
	}
	if w.message != "" {
		return AvailabilityRequest{}, fmt.Errorf("%w: %s", common.ErrValidation, w.message)
	}

	w.Reclamp()
	if w.earliest >= model.EndOfDay {
		w.message = MsgNoSlots
		return AvailabilityRequest{}, ErrDayOver
	}
	w.generation++
	w.searching = true

	return AvailabilityRequest{
		Generation: w.generation,
		Query: model.AvailabilityQuery{
			LocationID:      w.scope.LocationID,
			Date:            w.draft.Date,
			DurationMinutes: w.draft.DurationMinutes,
			Earliest:        w.earliest,
		},
	}, nil
}

// FetchAvailability runs the query of req.
func FetchAvailability(ctx context.Context, svc service.Availability, req AvailabilityRequest) AvailabilityResult {
	slots, err := svc.QueryAvailability(ctx, req.Query)
	if err != nil {
		err = fmt.Errorf("failed to query availability: %w", err)
	}
	return AvailabilityResult{AvailabilityRequest: req, Slots: slots, Err: err}
}

// ApplyAvailability moves to the slot step when res has usable slots. An
// error or an empty answer keeps the filter step with an inline message.
func (w *Wizard) ApplyAvailability(res AvailabilityResult) bool {
	if res.Generation != w.generation || w.closed || !w.searching || w.Stage() != StageFilter {
		slog.Debug("Dropping stale availability response", "generation", res.Generation)
		return false
	}
	w.searching = false

	if res.Err != nil {
		w.message = common.UserMessage(res.Err, MsgSearchFailed)
		return true
	}

	buckets := GroupSlots(res.Slots, res.Query.Earliest)
	if len(buckets) == 0 {
		w.message = MsgNoSlots
		return true
	}

	w.message = ""
	w.slots = buckets
	w.state = SlotsState{Buckets: buckets}
	return true
}

// Search runs the availability query synchronously.
func (w *Wizard) Search(ctx context.Context) error {
	req, err := w.BeginSearch()
	if err != nil {
		return err
	}
	res := FetchAvailability(ctx, w.svc, req)
	w.ApplyAvailability(res)
	return res.Err
}

// SelectSlot picks a slot offered in the slot step.
func (w *Wizard) SelectSlot(slot model.AvailabilitySlot) error {
	st, ok := w.state.(SlotsState)
	if !ok {
		return ErrWrongStage
	}
	for _, b := range st.Buckets {
		for _, s := range b.Slots {
			if s == slot {
				w.state = ClientInfoState{Slot: slot}
				w.message = ""
				return nil
			}
		}
	}
	return ErrUnknownSlot
}

// Back returns to the previous step, dropping what was chosen in the step
// being left. It reports whether the step changed.
func (w *Wizard) Back() bool {
	if w.closed || w.Busy() {
		return false
	}
	switch w.state.(type) {
	case ClientInfoState:
		w.state = SlotsState{Buckets: w.slots}
	case SlotsState:
		w.slots = nil
		w.state = FilterState{}
	default:
		return false
	}
	w.message = ""
	return true
}

// SubmitRequest is a tagged create-appointment call.
type SubmitRequest struct {
	Payload    model.NewAppointment
	Generation uint64
}

// SubmitResult answers a SubmitRequest.
type SubmitResult struct {
	Err error
	SubmitRequest
	ID int64
}

// BeginSubmit validates the client step and composes the payload.
func (w *Wizard) BeginSubmit() (SubmitRequest, error) {
	if w.closed {
		return SubmitRequest{}, ErrClosed
	}
	st, ok := w.state.(ClientInfoState)
	if !ok {
		return SubmitRequest{}, ErrWrongStage
	}
	if strings.TrimSpace(w.draft.CustomerName) == "" {
		w.message = MsgCustomerRequired
		return SubmitRequest{}, fmt.Errorf("%w: %s", common.ErrValidation, w.message)
	}

	w.message = ""
	w.generation++
	w.submitting = true

	return SubmitRequest{
		Generation: w.generation,
		Payload: model.NewAppointment{
			BusinessID:   w.scope.BusinessID,
			LocationID:   w.scope.LocationID,
			ServiceID:    w.draft.ServiceID,
			StaffID:      st.Slot.StaffID,
			Start:        st.Slot.StartTime.On(w.draft.Date),
			Price:        w.draft.Price,
			CustomerName: strings.TrimSpace(w.draft.CustomerName),
			Phone:        strings.TrimSpace(w.draft.Phone),
			Note:         strings.TrimSpace(w.draft.Note),
		},
	}, nil
}

// PerformSubmit sends the appointment of req.
func PerformSubmit(ctx context.Context, svc service.Appointments, req SubmitRequest) SubmitResult {
	id, err := svc.CreateAppointment(ctx, req.Payload)
	return SubmitResult{SubmitRequest: req, ID: id, Err: err}
}

// ApplySubmit finishes a submission. Success closes the wizard, broadcasts
// the change and calls the completion callback. Failure keeps every entered
// field and stays on the client step.
func (w *Wizard) ApplySubmit(res SubmitResult) error {
	if res.Generation != w.generation || w.closed {
		return nil
	}
	w.submitting = false

	if res.Err != nil {
		w.message = common.UserMessage(res.Err, MsgSubmitFailed)
		common.LogError(res.Err, "Booking failed", common.Fields{
			"location": res.Payload.LocationID,
			"service":  res.Payload.ServiceID,
		})
		return res.Err
	}

	common.LogInfo("Appointment booked", common.Fields{"id": res.ID, "location": res.Payload.LocationID})
	w.close()
	if w.bus != nil {
		w.bus.Publish(eventbus.AppointmentChanged)
	}
	if w.onComplete != nil {
		w.onComplete(res.ID)
	}
	return nil
}

// Submit books the appointment synchronously.
func (w *Wizard) Submit(ctx context.Context) error {
	req, err := w.BeginSubmit()
	if err != nil {
		return err
	}
	return w.ApplySubmit(PerformSubmit(ctx, w.svc, req))
}

// Cancel closes the wizard without booking.
func (w *Wizard) Cancel() {
	w.close()
}

func (w *Wizard) close() {
	w.closed = true
	w.generation++
	w.searching, w.submitting = false, false
	w.draft = Draft{}
	w.slots = nil
	w.state = FilterState{}
	w.message = ""
}

func (w *Wizard) requireStage(stage Stage) error {
	if w.closed {
		return ErrClosed
	}
	if w.Stage() != stage {
		return ErrWrongStage
	}
	return nil
}
