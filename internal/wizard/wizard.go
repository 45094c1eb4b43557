// Package wizard implements the multi-step reservation flow:
// selection → details → confirmation → submitted.
//
// A Wizard is a plain value guarded by its methods; it performs no I/O
// except through the Creator passed to Submit.  Persistence and locking
// live in Store, orchestration in Service.
package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/catalog"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// Step is a wizard state.
type Step string

const (
	StepSelection    Step = "selection"
	StepDetails      Step = "details"
	StepConfirmation Step = "confirmation"
	StepSubmitted    Step = "submitted"
)

// FallbackSubmitError is shown when the server gives no usable message.
const FallbackSubmitError = "could not create the reservation"

var (
	ErrWrongStep       = errors.New("wizard: action not allowed in the current step")
	ErrSubmitInFlight  = errors.New("wizard: a submission is already in progress")
	ErrUnknownSchedule = errors.New("wizard: schedule is not offered")
	ErrNotFound        = errors.New("wizard: not found")
)

// ValidationError is a failed transition guard.  Message is also stored on
// the wizard so the current step can render it inline.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

// Card holds simulated card details.  Nothing here is sent to the server.
type Card struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// PayPal holds simulated PayPal credentials.  Nothing here is sent to the
// server.
type PayPal struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Draft is the booking being assembled.
type Draft struct {
	Schedule        *model.Schedule     `json:"schedule,omitempty"`
	Seats           int                 `json:"seats"`
	SpecialRequests string              `json:"special_requests"`
	Method          model.PaymentMethod `json:"payment_method"`
	Card            Card                `json:"card"`
	PayPal          PayPal              `json:"paypal"`
}

// Wizard is one reservation attempt, owned by a portal session.
type Wizard struct {
	ID          string             `json:"id"`
	SessionID   string             `json:"session_id"`
	Step        Step               `json:"step"`
	Schedules   []model.Schedule   `json:"schedules"`
	Locations   []model.Location   `json:"locations"`
	Filter      catalog.Filter     `json:"filter"`
	Draft       Draft              `json:"draft"`
	Error       string             `json:"error,omitempty"`
	Submitting  bool               `json:"submitting"`
	Reservation *model.Reservation `json:"reservation,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// New starts a wizard in the selection step over a fetched collection.
func New(id, sessionID string, schedules []model.Schedule, locations []model.Location, now time.Time) *Wizard {
	if schedules == nil {
		schedules = []model.Schedule{}
	}
	if locations == nil {
		locations = []model.Location{}
	}
	return &Wizard{
		ID:        id,
		SessionID: sessionID,
		Step:      StepSelection,
		Schedules: schedules,
		Locations: locations,
		Draft:     Draft{Seats: 1, Method: model.PaymentCard},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Visible returns the schedules matching the current filter.  The base
// collection is never narrowed.
func (w *Wizard) Visible(loc *time.Location) []model.Schedule {
	return catalog.Apply(w.Schedules, w.Filter, loc)
}

// Total is price × seats of the current draft, zero without a schedule.
// It is derived on every read, never stored.
func (w *Wizard) Total() decimal.Decimal {
	if w.Draft.Schedule == nil {
		return decimal.Zero
	}
	return w.Draft.Schedule.TotalFor(w.Draft.Seats)
}

func (w *Wizard) require(steps ...Step) error {
	for _, s := range steps {
		if w.Step == s {
			return nil
		}
	}
	return ErrWrongStep
}

// SetFilter replaces the search criteria.
func (w *Wizard) SetFilter(f catalog.Filter) error {
	if w.Step == StepSubmitted {
		return ErrWrongStep
	}
	if err := f.Validate(); err != nil {
		return &ValidationError{Field: "date", Message: err.Error()}
	}
	w.Filter = f
	return nil
}

// SelectSchedule picks a schedule from the base collection.
func (w *Wizard) SelectSchedule(id int64) error {
	if err := w.require(StepSelection); err != nil {
		return err
	}
	s, ok := catalog.Find(w.Schedules, id)
	if !ok {
		return ErrUnknownSchedule
	}
	w.Draft.Schedule = &s
	return nil
}

// SetSeats stores the requested seat count.  Bounds are checked on Advance.
func (w *Wizard) SetSeats(n int) error {
	if err := w.require(StepSelection); err != nil {
		return err
	}
	w.Draft.Seats = n
	return nil
}

func (w *Wizard) SetSpecialRequests(text string) error {
	if err := w.require(StepSelection, StepDetails); err != nil {
		return err
	}
	w.Draft.SpecialRequests = text
	return nil
}

// ChoosePaymentMethod switches between card and PayPal.
func (w *Wizard) ChoosePaymentMethod(m model.PaymentMethod) error {
	if err := w.require(StepDetails); err != nil {
		return err
	}
	if !m.Valid() {
		return &ValidationError{Field: "payment_method", Message: "unsupported payment method"}
	}
	w.Draft.Method = m
	return nil
}

func (w *Wizard) SetCard(c Card) error {
	if err := w.require(StepDetails); err != nil {
		return err
	}
	w.Draft.Card = c
	return nil
}

func (w *Wizard) SetPayPal(p PayPal) error {
	if err := w.require(StepDetails); err != nil {
		return err
	}
	w.Draft.PayPal = p
	return nil
}

// Advance moves forward one step when the current step's guard passes.
// A failing guard stores its message on the wizard and keeps the step.
func (w *Wizard) Advance() error {
	var (
		next Step
		verr *ValidationError
	)
	switch w.Step {
	case StepSelection:
		next, verr = StepDetails, validateSelection(w.Draft)
	case StepDetails:
		next, verr = StepConfirmation, validatePayment(w.Draft)
	default:
		return ErrWrongStep
	}
	if verr != nil {
		w.Error = verr.Message
		return verr
	}
	w.Step = next
	w.Error = ""
	return nil
}

// Back returns to the previous step.  It is refused while a submission is
// outstanding and once the reservation exists.
func (w *Wizard) Back() error {
	if w.Submitting {
		return ErrSubmitInFlight
	}
	switch w.Step {
	case StepDetails:
		w.Step = StepSelection
	case StepConfirmation:
		w.Step = StepDetails
	default:
		return ErrWrongStep
	}
	w.Error = ""
	return nil
}

// BeginSubmit marks the wizard as submitting and returns the one creation
// request to send.  Payment details stay local; only the method tag is
// forwarded.
func (w *Wizard) BeginSubmit() (model.ReservationCreate, error) {
	if err := w.require(StepConfirmation); err != nil {
		return model.ReservationCreate{}, err
	}
	if w.Submitting {
		return model.ReservationCreate{}, ErrSubmitInFlight
	}
	if w.Draft.Schedule == nil {
		return model.ReservationCreate{}, ErrWrongStep
	}
	w.Submitting = true
	w.Error = ""
	return model.ReservationCreate{
		Schedule:        w.Draft.Schedule.ID,
		NumberOfSeats:   w.Draft.Seats,
		SpecialRequests: w.Draft.SpecialRequests,
		PaymentMethod:   w.Draft.Method,
	}, nil
}

// CompleteSubmit records the outcome of the request issued by BeginSubmit.
// On failure the wizard stays in confirmation so the user can retry.
func (w *Wizard) CompleteSubmit(res *model.Reservation, err error) error {
	if !w.Submitting || w.Step != StepConfirmation {
		return ErrWrongStep
	}
	w.Submitting = false
	if err != nil {
		w.Error = apiclient.Message(err, FallbackSubmitError)
		return nil
	}
	w.Reservation = res
	w.Step = StepSubmitted
	w.Error = ""
	// Payment details are useless once booked.
	w.Draft.Card = Card{}
	w.Draft.PayPal = PayPal{}
	return nil
}

// Creator sends a reservation creation request.
type Creator interface {
	CreateReservation(ctx context.Context, req model.ReservationCreate) (*model.Reservation, error)
}

// Submit issues exactly one creation request.  The returned error is the
// transport/server error, already recorded on the wizard as Error.
func (w *Wizard) Submit(ctx context.Context, c Creator) error {
	req, err := w.BeginSubmit()
	if err != nil {
		return err
	}
	res, callErr := c.CreateReservation(ctx, req)
	if err := w.CompleteSubmit(res, callErr); err != nil {
		return err
	}
	return callErr
}
