package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpenses struct {
	service.Expenses
	err     error
	created []model.NewExpense
}

func (f *fakeExpenses) CreateExpense(_ context.Context, e model.NewExpense) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.created = append(f.created, e)
	return int64(len(f.created)), nil
}

var (
	scope = service.Scope{BusinessID: 1, LocationID: 10}
	day   = time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC)
)

func newForm(f *fakeExpenses) (*Form, *int) {
	bus := eventbus.New()
	published := 0
	bus.Subscribe(func(eventbus.Topic) { published++ }, eventbus.ExpenseChanged)
	return New(f, bus, scope, day), &published
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		description string
		amount      string
		wantErr     string
		wantAmount  string
	}{
		{name: "missing description", description: "  ", amount: "10", wantErr: MsgDescriptionRequired},
		{name: "non numeric amount", description: "Towels", amount: "ten", wantErr: MsgAmountInvalid},
		{name: "zero amount", description: "Towels", amount: "0", wantErr: MsgAmountInvalid},
		{name: "negative amount", description: "Towels", amount: "-3", wantErr: MsgAmountInvalid},
		{name: "rounds to zero", description: "Towels", amount: "0.004", wantErr: MsgAmountInvalid},
		{name: "rounds up to a cent", description: "Towels", amount: "0.005", wantAmount: "0.01"},
		{name: "decimal comma", description: "Towels", amount: "12,5", wantAmount: "12.5"},
		{name: "rounded to cents", description: "Towels", amount: "9.999", wantAmount: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, _ := newForm(&fakeExpenses{})
			form.SetDescription(tt.description)
			form.SetAmount(tt.amount)

			got, err := form.Validate()

			if tt.wantErr != "" {
				require.ErrorIs(t, err, common.ErrValidation)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.Amount), "got %s", got.Amount)
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	fake := &fakeExpenses{}
	form, published := newForm(fake)
	form.SetDescription(" Hair dye ")
	form.SetAmount("42.10")
	require.NoError(t, form.SetCategory(model.ExpenseSupplies))

	require.NoError(t, form.Submit(context.Background()))

	require.Len(t, fake.created, 1)
	got := fake.created[0]
	assert.Equal(t, "Hair dye", got.Description)
	assert.Equal(t, model.ExpenseSupplies, got.Category)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, int64(1), got.BusinessID)
	assert.Equal(t, int64(10), got.LocationID)
	assert.True(t, form.Done())
	assert.Equal(t, 1, *published)
}

func TestSubmit_ValidationMakesNoCall(t *testing.T) {
	fake := &fakeExpenses{}
	form, published := newForm(fake)
	form.SetAmount("5")

	require.Error(t, form.Submit(context.Background()))

	assert.Equal(t, MsgDescriptionRequired, form.Message())
	assert.Empty(t, fake.created)
	assert.Equal(t, 0, *published)
}

func TestSubmit_FailureKeepsFields(t *testing.T) {
	fake := &fakeExpenses{err: &common.APIError{Status: 400, Message: "Amount too large"}}
	form, published := newForm(fake)
	form.SetDescription("Rent")
	form.SetAmount("100000")
	require.NoError(t, form.SetCategory(model.ExpenseRent))

	require.Error(t, form.Submit(context.Background()))

	assert.Equal(t, "Amount too large", form.Message())
	assert.Equal(t, "Rent", form.Description())
	assert.Equal(t, "100000", form.Amount())
	assert.Equal(t, model.ExpenseRent, form.Category())
	assert.False(t, form.Done())
	assert.False(t, form.Submitting())
	assert.Equal(t, 0, *published)

	fake.err = errors.New("reset")
	require.Error(t, form.Submit(context.Background()))
	assert.Equal(t, MsgSubmitFailed, form.Message())
}

func TestCategory(t *testing.T) {
	form, _ := newForm(&fakeExpenses{})
	assert.Equal(t, model.ExpenseOther, form.Category())

	form.CycleCategory(1)
	assert.Equal(t, model.ExpenseSupplies, form.Category())
	form.CycleCategory(-2)
	assert.Equal(t, model.ExpenseWages, form.Category())

	assert.ErrorIs(t, form.SetCategory("Snacks"), common.ErrValidation)
	assert.Equal(t, model.ExpenseWages, form.Category())
}
