package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/catalog"
	"github.com/iliyamo/bus-reservation-portal/internal/middleware"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/wizard"
)

// WizardHandler drives the reservation wizard.  Every response carries the
// wizard view so the browser can render the current step from it alone.
type WizardHandler struct {
	Wizards       *wizard.Service
	RedirectPath  string
	RedirectDelay time.Duration
	LoginPath     string
	Log           *zap.Logger
}

func NewWizardHandler(svc *wizard.Service, redirectPath string, redirectDelay time.Duration, loginPath string, log *zap.Logger) *WizardHandler {
	return &WizardHandler{
		Wizards:       svc,
		RedirectPath:  redirectPath,
		RedirectDelay: redirectDelay,
		LoginPath:     loginPath,
		Log:           log,
	}
}

type cardView struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	HasCVV bool   `json:"has_cvv"`
}

type draftView struct {
	Schedule        *model.Schedule     `json:"schedule"`
	Seats           int                 `json:"number_of_seats"`
	SpecialRequests string              `json:"special_requests"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	PaymentLabel    string              `json:"payment_label"`
	Card            cardView            `json:"card"`
	PayPalEmail     string              `json:"paypal_email"`
}

type wizardView struct {
	ID              string             `json:"id"`
	Step            wizard.Step        `json:"step"`
	Filter          catalog.Filter     `json:"filter"`
	Schedules       []model.Schedule   `json:"schedules"`
	DepartureCities []string           `json:"departure_cities"`
	ArrivalCities   []string           `json:"arrival_cities"`
	Draft           draftView          `json:"draft"`
	Total           string             `json:"total"`
	Error           string             `json:"error,omitempty"`
	Submitting      bool               `json:"submitting"`
	Reservation     *model.Reservation `json:"reservation,omitempty"`
}

type redirectView struct {
	To      string `json:"to"`
	AfterMS int64  `json:"after_ms"`
}

// view renders w for the browser.  Card numbers are masked and the CVV and
// PayPal password are never echoed back.
func (h *WizardHandler) view(w *wizard.Wizard) wizardView {
	deps, arrs := catalog.ScheduleCities(w.Schedules)
	return wizardView{
		ID:              w.ID,
		Step:            w.Step,
		Filter:          w.Filter,
		Schedules:       w.Visible(h.Wizards.Location()),
		DepartureCities: deps,
		ArrivalCities:   arrs,
		Draft: draftView{
			Schedule:        w.Draft.Schedule,
			Seats:           w.Draft.Seats,
			SpecialRequests: w.Draft.SpecialRequests,
			PaymentMethod:   w.Draft.Method,
			PaymentLabel:    w.Draft.Method.Label(),
			Card: cardView{
				Number: wizard.MaskCard(w.Draft.Card.Number),
				Name:   w.Draft.Card.Name,
				Expiry: w.Draft.Card.Expiry,
				HasCVV: w.Draft.Card.CVV != "",
			},
			PayPalEmail: w.Draft.PayPal.Email,
		},
		Total:       w.Total().StringFixed(2),
		Error:       w.Error,
		Submitting:  w.Submitting,
		Reservation: w.Reservation,
	}
}

// Create handles POST /v1/wizards: schedules and locations are fetched
// once and the wizard starts at the selection step.
func (h *WizardHandler) Create(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Wizards.Open(ctx, middleware.CurrentSession(c).ID)
	if err != nil {
		h.Log.Warn("open wizard", zap.Error(err))
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusCreated, h.view(w))
}

// Get handles GET /v1/wizards/:id.
func (h *WizardHandler) Get(c echo.Context) error {
	w, err := h.Wizards.Get(c.Request().Context(), middleware.CurrentSession(c).ID, c.Param("id"))
	if err != nil {
		return h.failure(c, w, err)
	}
	return c.JSON(http.StatusOK, h.view(w))
}

// SetFilter handles PUT /v1/wizards/:id/filter.
func (h *WizardHandler) SetFilter(c echo.Context) error {
	var f catalog.Filter
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.update(c, func(w *wizard.Wizard) error { return w.SetFilter(f) })
}

type selectionRequest struct {
	ScheduleID      *int64  `json:"schedule_id"`
	NumberOfSeats   *int    `json:"number_of_seats"`
	SpecialRequests *string `json:"special_requests"`
}

// SetSelection handles PUT /v1/wizards/:id/selection.  Absent fields are
// left untouched.
func (h *WizardHandler) SetSelection(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.update(c, func(w *wizard.Wizard) error {
		if req.ScheduleID != nil {
			if err := w.SelectSchedule(*req.ScheduleID); err != nil {
				return err
			}
		}
		if req.NumberOfSeats != nil {
			if err := w.SetSeats(*req.NumberOfSeats); err != nil {
				return err
			}
		}
		if req.SpecialRequests != nil {
			return w.SetSpecialRequests(*req.SpecialRequests)
		}
		return nil
	})
}

type paymentRequest struct {
	PaymentMethod   *model.PaymentMethod `json:"payment_method"`
	Card            *wizard.Card         `json:"card"`
	PayPal          *wizard.PayPal       `json:"paypal"`
	SpecialRequests *string              `json:"special_requests"`
}

// SetPayment handles PUT /v1/wizards/:id/payment.
func (h *WizardHandler) SetPayment(c echo.Context) error {
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.update(c, func(w *wizard.Wizard) error {
		if req.PaymentMethod != nil {
			if err := w.ChoosePaymentMethod(*req.PaymentMethod); err != nil {
				return err
			}
		}
		if req.Card != nil {
			if err := w.SetCard(*req.Card); err != nil {
				return err
			}
		}
		if req.PayPal != nil {
			if err := w.SetPayPal(*req.PayPal); err != nil {
				return err
			}
		}
		if req.SpecialRequests != nil {
			return w.SetSpecialRequests(*req.SpecialRequests)
		}
		return nil
	})
}

// Advance handles POST /v1/wizards/:id/advance.
func (h *WizardHandler) Advance(c echo.Context) error {
	return h.update(c, (*wizard.Wizard).Advance)
}

// Back handles POST /v1/wizards/:id/back.
func (h *WizardHandler) Back(c echo.Context) error {
	return h.update(c, (*wizard.Wizard).Back)
}

// Submit handles POST /v1/wizards/:id/submit.  On success the browser is
// told where to go and after how long.
func (h *WizardHandler) Submit(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Wizards.Submit(ctx, middleware.CurrentSession(c).ID, c.Param("id"))
	if err != nil {
		return h.failure(c, w, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"wizard":   h.view(w),
		"redirect": redirectView{To: h.RedirectPath, AfterMS: h.RedirectDelay.Milliseconds()},
	})
}

// Discard handles DELETE /v1/wizards/:id.
func (h *WizardHandler) Discard(c echo.Context) error {
	if err := h.Wizards.Discard(c.Request().Context(), middleware.CurrentSession(c).ID, c.Param("id")); err != nil {
		return h.failure(c, nil, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WizardHandler) update(c echo.Context, fn func(*wizard.Wizard) error) error {
	w, err := h.Wizards.Update(c.Request().Context(), middleware.CurrentSession(c).ID, c.Param("id"), fn)
	if err != nil {
		return h.failure(c, w, err)
	}
	return c.JSON(http.StatusOK, h.view(w))
}

// failure maps wizard and remote errors.  When the wizard is known its
// view is attached so the current step can show the message inline.
func (h *WizardHandler) failure(c echo.Context, w *wizard.Wizard, err error) error {
	body := echo.Map{"error": err.Error()}
	if w != nil {
		body["wizard"] = h.view(w)
	}

	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		body["field"] = verr.Field
		return c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, wizard.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation wizard not found"})
	case errors.Is(err, wizard.ErrSubmitInFlight):
		body["error"] = "a submission is already in progress"
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, wizard.ErrWrongStep):
		body["error"] = "this action is not available at the current step"
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, wizard.ErrUnknownSchedule):
		body["error"] = "please select a schedule"
		body["field"] = "schedule"
		return c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, apiclient.ErrUnauthorized):
		return remoteFailure(c, err, h.LoginPath)
	}

	// A rejected submission: the wizard already carries the message.
	var apiErr *apiclient.APIError
	if w != nil && errors.As(err, &apiErr) {
		body["error"] = w.Error
		status := apiErr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		return c.JSON(status, body)
	}
	if w != nil && w.Error != "" {
		body["error"] = w.Error
		return c.JSON(http.StatusBadGateway, body)
	}
	h.Log.Error("wizard", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
