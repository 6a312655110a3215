// Package expense implements the expense entry form of the day detail.
package expense

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/shopspring/decimal"
)

// Form messages.
const (
	MsgDescriptionRequired = "Please describe the expense"
	MsgAmountInvalid       = "Amount must be a number greater than zero"
	MsgSubmitFailed        = "Could not save the expense. Please try again."
)

// Form holds the fields of a new expense for one day.
type Form struct {
	date  time.Time
	svc   service.Expenses
	bus   *eventbus.Bus
	scope service.Scope

	description string
	amount      string
	message     string
	category    model.ExpenseCategory

	generation uint64
	submitting bool
	done       bool
}

// New creates an empty form for date.
func New(svc service.Expenses, bus *eventbus.Bus, scope service.Scope, date time.Time) *Form {
	return &Form{
		svc:      svc,
		bus:      bus,
		scope:    scope,
		date:     model.DateOnly(date),
		category: model.ExpenseOther,
	}
}

// SetDescription sets the description.
func (f *Form) SetDescription(s string) { f.description = s }

// SetAmount sets the raw amount text.
func (f *Form) SetAmount(s string) { f.amount = s }

// SetCategory selects a category.
func (f *Form) SetCategory(c model.ExpenseCategory) error {
	if !slices.Contains(model.ExpenseCategories, c) {
		return fmt.Errorf("%w: unknown category %q", common.ErrValidation, c)
	}
	f.category = c
	return nil
}

// CycleCategory moves to the next category, wrapping around.
func (f *Form) CycleCategory(step int) {
	n := len(model.ExpenseCategories)
	i := slices.Index(model.ExpenseCategories, f.category)
	f.category = model.ExpenseCategories[((i+step)%n+n)%n]
}

// Description returns the description.
func (f *Form) Description() string { return f.description }

// Amount returns the raw amount text.
func (f *Form) Amount() string { return f.amount }

// Category returns the selected category.
func (f *Form) Category() model.ExpenseCategory { return f.category }

// Date returns the day the expense is logged for.
func (f *Form) Date() time.Time { return f.date }

// Message returns the inline message.
func (f *Form) Message() string { return f.message }

// Done reports whether the expense was saved.
func (f *Form) Done() bool { return f.done }

// Submitting reports whether a save is in flight.
func (f *Form) Submitting() bool { return f.submitting }

// Validate checks the fields and builds the payload.
func (f *Form) Validate() (model.NewExpense, error) {
	payload, msg := f.build()
	if msg != "" {
		return model.NewExpense{}, fmt.Errorf("%w: %s", common.ErrValidation, msg)
	}
	return payload, nil
}

func (f *Form) build() (model.NewExpense, string) {
	desc := strings.TrimSpace(f.description)
	if desc == "" {
		return model.NewExpense{}, MsgDescriptionRequired
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(f.amount), ",", "."))
	if err != nil {
		return model.NewExpense{}, MsgAmountInvalid
	}
	// The amount is validated as it will be sent, in whole cents.
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return model.NewExpense{}, MsgAmountInvalid
	}

	return model.NewExpense{
		Date:        f.date,
		Amount:      amount,
		Description: desc,
		Category:    f.category,
		BusinessID:  f.scope.BusinessID,
		LocationID:  f.scope.LocationID,
	}, ""
}

// SubmitRequest is a tagged create-expense call.
type SubmitRequest struct {
	Payload    model.NewExpense
	Generation uint64
}

// SubmitResult answers a SubmitRequest.
type SubmitResult struct {
	Err error
	SubmitRequest
	ID int64
}

// BeginSubmit validates the form. On failure the inline message is set and
// nothing must be sent.
func (f *Form) BeginSubmit() (SubmitRequest, error) {
	payload, msg := f.build()
	if msg != "" {
		f.message = msg
		return SubmitRequest{}, fmt.Errorf("%w: %s", common.ErrValidation, msg)
	}
	f.message = ""
	f.generation++
	f.submitting = true
	return SubmitRequest{Payload: payload, Generation: f.generation}, nil
}

// PerformSubmit sends req.
func PerformSubmit(ctx context.Context, svc service.Expenses, req SubmitRequest) SubmitResult {
	id, err := svc.CreateExpense(ctx, req.Payload)
	return SubmitResult{SubmitRequest: req, ID: id, Err: err}
}

// ApplySubmit finishes a save. Failure keeps the fields for another try.
func (f *Form) ApplySubmit(res SubmitResult) error {
	if res.Generation != f.generation || f.done {
		return nil
	}
	f.submitting = false
	if res.Err != nil {
		f.message = common.UserMessage(res.Err, MsgSubmitFailed)
		return res.Err
	}

	f.done = true
	common.LogInfo("Expense saved", common.Fields{"id": res.ID, "location": res.Payload.LocationID})
	if f.bus != nil {
		f.bus.Publish(eventbus.ExpenseChanged)
	}
	return nil
}

// Submit saves the expense synchronously.
func (f *Form) Submit(ctx context.Context) error {
	req, err := f.BeginSubmit()
	if err != nil {
		return err
	}
	return f.ApplySubmit(PerformSubmit(ctx, f.svc, req))
}
