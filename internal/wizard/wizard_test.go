package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/catalog"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

func schedule(id int64, price string, seats int) model.Schedule {
	dep := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return model.Schedule{
		ID:                id,
		DepartureLocation: &model.Location{City: "Paris"},
		ArrivalLocation:   &model.Location{City: "Lyon"},
		DepartureTime:     dep,
		ArrivalTime:       dep.Add(4 * time.Hour),
		Price:             decimal.RequireFromString(price),
		AvailableSeats:    seats,
	}
}

func newWizard() *Wizard {
	return New("w1", "s1", []model.Schedule{schedule(1, "29.50", 10), schedule(2, "15.00", 0)}, nil, time.Now())
}

// toDetails drives a fresh wizard to the details step.
func toDetails(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SelectSchedule(1))
	require.NoError(t, w.SetSeats(2))
	require.NoError(t, w.Advance())
	require.Equal(t, StepDetails, w.Step)
}

func validCard() Card {
	return Card{Number: "4111 1111 1111 1111", Name: "Ana Doe", Expiry: "12/29", CVV: "123"}
}

func toConfirmation(t *testing.T, w *Wizard) {
	t.Helper()
	toDetails(t, w)
	require.NoError(t, w.SetCard(validCard()))
	require.NoError(t, w.Advance())
	require.Equal(t, StepConfirmation, w.Step)
}

func TestNewWizardDefaults(t *testing.T) {
	w := newWizard()
	assert.Equal(t, StepSelection, w.Step)
	assert.Equal(t, 1, w.Draft.Seats)
	assert.Equal(t, model.PaymentCard, w.Draft.Method)
	assert.True(t, w.Total().IsZero())
}

func TestTotalScenario(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SelectSchedule(1))
	require.NoError(t, w.SetSeats(2))
	assert.Equal(t, "59.00", w.Total().StringFixed(2))
}

func TestTotalIsRecomputedRegardlessOfNavigation(t *testing.T) {
	w := newWizard()
	toDetails(t, w)
	first := w.Total()
	require.NoError(t, w.Back())
	require.NoError(t, w.SetSeats(3))
	require.NoError(t, w.SetSeats(2))
	require.NoError(t, w.Advance())
	assert.True(t, first.Equal(w.Total()))
	assert.Equal(t, "59.00", w.Total().StringFixed(2))
}

func TestSelectionGuard(t *testing.T) {
	w := newWizard()

	err := w.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "please select a schedule", verr.Message)
	assert.Equal(t, StepSelection, w.Step)

	require.NoError(t, w.SelectSchedule(1))
	for _, seats := range []int{0, -1, 11} {
		require.NoError(t, w.SetSeats(seats))
		err := w.Advance()
		require.ErrorAs(t, err, &verr, "seats=%d", seats)
		assert.Equal(t, "number of seats must be between 1 and 10", verr.Message)
		assert.Equal(t, "number of seats must be between 1 and 10", w.Error, "error is rendered inline")
		assert.Equal(t, StepSelection, w.Step)
	}

	for _, seats := range []int{1, 10} {
		w := newWizard()
		require.NoError(t, w.SelectSchedule(1))
		require.NoError(t, w.SetSeats(seats))
		require.NoError(t, w.Advance(), "seats=%d", seats)
		assert.Empty(t, w.Error)
	}
}

func TestZeroSeatsScenario(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SelectSchedule(1))
	require.NoError(t, w.SetSeats(0))
	assert.Error(t, w.Advance())
	assert.Equal(t, StepSelection, w.Step)
	assert.NotEmpty(t, w.Error)
}

func TestSoldOutScheduleCannotAdvance(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SelectSchedule(2))
	err := w.Advance()
	require.Error(t, err)
	assert.Equal(t, "number of seats must be between 1 and 0", err.Error())
}

func TestSelectUnknownSchedule(t *testing.T) {
	w := newWizard()
	assert.ErrorIs(t, w.SelectSchedule(42), ErrUnknownSchedule)
	assert.Nil(t, w.Draft.Schedule)
}

func TestCardGuard(t *testing.T) {
	cases := []struct {
		name string
		card Card
		msg  string
	}{
		{"missing name", Card{Number: "4111111111111111", Expiry: "12/29", CVV: "123"}, "please fill in all card fields"},
		{"missing cvv", Card{Number: "4111111111111111", Name: "A", Expiry: "12/29"}, "please fill in all card fields"},
		{"15 digits", Card{Number: "411111111111111", Name: "A", Expiry: "12/29", CVV: "123"}, "invalid card number"},
		{"17 digits", Card{Number: "41111111111111112", Name: "A", Expiry: "12/29", CVV: "123"}, "invalid card number"},
		{"letters", Card{Number: "4111-1111-1111-1111", Name: "A", Expiry: "12/29", CVV: "123"}, "invalid card number"},
		{"cvv 2", Card{Number: "4111111111111111", Name: "A", Expiry: "12/29", CVV: "12"}, "invalid CVV"},
		{"cvv 5", Card{Number: "4111111111111111", Name: "A", Expiry: "12/29", CVV: "12345"}, "invalid CVV"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newWizard()
			toDetails(t, w)
			require.NoError(t, w.SetCard(tc.card))
			err := w.Advance()
			require.Error(t, err)
			assert.Equal(t, tc.msg, err.Error())
			assert.Equal(t, tc.msg, w.Error)
			assert.Equal(t, StepDetails, w.Step)
		})
	}
}

func TestCardScenarios(t *testing.T) {
	assert.True(t, ValidCardNumber("4111 1111 1111 1111"))
	assert.True(t, ValidCardNumber("4111111111111111"))
	assert.False(t, ValidCardNumber("4111 1111 1111 111"))
	assert.False(t, ValidCVV("12"))
	assert.True(t, ValidCVV("123"))
	assert.True(t, ValidCVV("1234"))
	assert.False(t, ValidCVV("12a"))

	w := newWizard()
	toDetails(t, w)
	card := validCard()
	card.CVV = "12"
	require.NoError(t, w.SetCard(card))
	assert.Error(t, w.Advance())
	card.CVV = "123"
	require.NoError(t, w.SetCard(card))
	require.NoError(t, w.Advance())
	assert.Equal(t, StepConfirmation, w.Step)
	assert.Empty(t, w.Error)
}

func TestPayPalGuard(t *testing.T) {
	w := newWizard()
	toDetails(t, w)
	require.NoError(t, w.ChoosePaymentMethod(model.PaymentPayPal))

	require.NoError(t, w.SetPayPal(PayPal{Email: "ana@example.com"}))
	err := w.Advance()
	require.Error(t, err)
	assert.Equal(t, "please fill in all PayPal fields", err.Error())

	for _, email := range []string{"ana.example.com", "ana@example", "@", "ana @example.com"} {
		require.NoError(t, w.SetPayPal(PayPal{Email: email, Password: "pw"}))
		err := w.Advance()
		require.Error(t, err, email)
		assert.Equal(t, "invalid PayPal email", err.Error())
	}

	require.NoError(t, w.SetPayPal(PayPal{Email: "ana@example.com", Password: "pw"}))
	require.NoError(t, w.Advance())
	assert.Equal(t, StepConfirmation, w.Step)
}

func TestChoosePaymentMethod(t *testing.T) {
	w := newWizard()
	assert.ErrorIs(t, w.ChoosePaymentMethod(model.PaymentPayPal), ErrWrongStep)
	toDetails(t, w)
	var verr *ValidationError
	assert.ErrorAs(t, w.ChoosePaymentMethod("bitcoin"), &verr)
	assert.Equal(t, model.PaymentCard, w.Draft.Method)
}

func TestBackTransitions(t *testing.T) {
	w := newWizard()
	assert.ErrorIs(t, w.Back(), ErrWrongStep)

	toConfirmation(t, w)
	require.NoError(t, w.Back())
	assert.Equal(t, StepDetails, w.Step)
	w.Error = "stale"
	require.NoError(t, w.Back())
	assert.Equal(t, StepSelection, w.Step)
	assert.Empty(t, w.Error)
	assert.NotNil(t, w.Draft.Schedule, "draft survives navigation")
}

func TestStepRestrictions(t *testing.T) {
	w := newWizard()
	assert.ErrorIs(t, w.SetCard(validCard()), ErrWrongStep)
	_, err := w.BeginSubmit()
	assert.ErrorIs(t, err, ErrWrongStep)

	toDetails(t, w)
	assert.ErrorIs(t, w.SetSeats(3), ErrWrongStep)
	assert.ErrorIs(t, w.SelectSchedule(1), ErrWrongStep)
	require.NoError(t, w.SetSpecialRequests("window seat"))
}

func TestSetFilterKeepsBase(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SetFilter(catalog.Filter{DepartureCity: "lyon"}))
	assert.Empty(t, w.Visible(nil))
	assert.Len(t, w.Schedules, 2)

	require.NoError(t, w.SetFilter(catalog.Filter{}))
	assert.Equal(t, w.Schedules, w.Visible(nil))

	var verr *ValidationError
	assert.ErrorAs(t, w.SetFilter(catalog.Filter{Date: "tomorrow"}), &verr)
}

type fakeCreator struct {
	calls int
	last  model.ReservationCreate
	res   *model.Reservation
	err   error
}

func (f *fakeCreator) CreateReservation(_ context.Context, req model.ReservationCreate) (*model.Reservation, error) {
	f.calls++
	f.last = req
	return f.res, f.err
}

func TestSubmitSendsPaymentMethodField(t *testing.T) {
	w := newWizard()
	require.NoError(t, w.SetSpecialRequests("front seats please"))
	toConfirmation(t, w)

	c := &fakeCreator{res: &model.Reservation{ID: 77, Status: model.StatusPending}}
	require.NoError(t, w.Submit(context.Background(), c))

	assert.Equal(t, 1, c.calls)
	assert.Equal(t, model.ReservationCreate{
		Schedule:        1,
		NumberOfSeats:   2,
		SpecialRequests: "front seats please",
		PaymentMethod:   model.PaymentCard,
	}, c.last)
	assert.Equal(t, StepSubmitted, w.Step)
	assert.EqualValues(t, 77, w.Reservation.ID)
	assert.Empty(t, w.Draft.Card.Number)

	assert.ErrorIs(t, w.Submit(context.Background(), c), ErrWrongStep)
	assert.ErrorIs(t, w.Back(), ErrWrongStep)
	assert.Equal(t, 1, c.calls)
}

func TestSubmitFailureStaysInConfirmation(t *testing.T) {
	w := newWizard()
	toConfirmation(t, w)

	c := &fakeCreator{err: &apiclient.APIError{StatusCode: 400, Message: "number_of_seats: Not enough seats available."}}
	err := w.Submit(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, StepConfirmation, w.Step)
	assert.False(t, w.Submitting)
	assert.Equal(t, "number_of_seats: Not enough seats available.", w.Error)

	c.err = errors.New("connection reset")
	require.Error(t, w.Submit(context.Background(), c))
	assert.Equal(t, FallbackSubmitError, w.Error)
	assert.Equal(t, 2, c.calls, "each manual retry is one request")
}

func TestBeginSubmitRejectsSecondRequest(t *testing.T) {
	w := newWizard()
	toConfirmation(t, w)

	_, err := w.BeginSubmit()
	require.NoError(t, err)
	_, err = w.BeginSubmit()
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, w.Back(), ErrSubmitInFlight)

	require.NoError(t, w.CompleteSubmit(&model.Reservation{ID: 1}, nil))
	assert.ErrorIs(t, w.CompleteSubmit(&model.Reservation{ID: 2}, nil), ErrWrongStep)
	assert.EqualValues(t, 1, w.Reservation.ID)
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "••••••••••••1111", MaskCard("4111 1111 1111 1111"))
	assert.Equal(t, "12", MaskCard("12"))
}
