package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/dashboard"
	"github.com/iliyamo/bus-reservation-portal/internal/middleware"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// CRUD serves one admin resource backed by the remote API.  T is the
// resource as read, F the form accepted on create and update.  Check adds
// the rules struct tags cannot express and returns field → message.
type CRUD[T any, F any] struct {
	Name      string
	Resource  *apiclient.Resource[T]
	Check     func(form *F, creating bool) map[string]string
	LoginPath string
	Log       *zap.Logger
}

// List handles GET /v1/admin/<resource>.
func (h *CRUD[T, F]) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.Resource.List(ctx)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/admin/<resource>/:id.
func (h *CRUD[T, F]) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.Resource.Get(ctx, id)
	if err != nil {
		return h.failure(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /v1/admin/<resource>.
func (h *CRUD[T, F]) Create(c echo.Context) error {
	form, handled, err := h.form(c, true)
	if handled {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.Resource.Create(ctx, form)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	h.Log.Info("admin created "+h.Name, zap.String("admin", userName(c)))
	return c.JSON(http.StatusCreated, item)
}

// Update handles PUT /v1/admin/<resource>/:id.
func (h *CRUD[T, F]) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	form, handled, err := h.form(c, false)
	if handled {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.Resource.Update(ctx, id, form)
	if err != nil {
		return h.failure(c, err)
	}
	h.Log.Info("admin updated "+h.Name, zap.Int64("id", id), zap.String("admin", userName(c)))
	return c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /v1/admin/<resource>/:id.
func (h *CRUD[T, F]) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Resource.Delete(ctx, id); err != nil {
		return h.failure(c, err)
	}
	h.Log.Info("admin deleted "+h.Name, zap.Int64("id", id), zap.String("admin", userName(c)))
	return c.NoContent(http.StatusNoContent)
}

func (h *CRUD[T, F]) form(c echo.Context, creating bool) (*F, bool, error) {
	form := new(F)
	if handled, err := bindAndValidate(c, form); handled {
		return nil, true, err
	}
	if h.Check != nil {
		if fields := h.Check(form, creating); len(fields) > 0 {
			return nil, true, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
	}
	return form, false, nil
}

func (h *CRUD[T, F]) failure(c echo.Context, err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": h.Name + " not found"})
	}
	return remoteFailure(c, err, h.LoginPath)
}

func userName(c echo.Context) string {
	if u := middleware.CurrentUser(c); u != nil {
		return u.Username
	}
	return ""
}

// CheckSchedule requires a positive price.
func CheckSchedule(f *model.ScheduleForm, _ bool) map[string]string {
	if !f.Price.IsPositive() {
		return map[string]string{"price": "must be greater than 0"}
	}
	return nil
}

// CheckRoute requires a positive distance and price.
func CheckRoute(f *model.RouteForm, _ bool) map[string]string {
	out := map[string]string{}
	if !f.Distance.IsPositive() {
		out["distance"] = "must be greater than 0"
	}
	if !f.Price.IsPositive() {
		out["price"] = "must be greater than 0"
	}
	return out
}

// CheckUser requires a password when the account is created.
func CheckUser(f *model.UserForm, creating bool) map[string]string {
	if creating && f.Password == "" {
		return map[string]string{"password": "this field is required"}
	}
	if f.Password != "" && len(f.Password) < 8 {
		return map[string]string{"password": "must be at least 8 characters"}
	}
	return nil
}

// CheckAdminReservation requires the owner, which the admin picks.
func CheckAdminReservation(f *model.ReservationCreate, _ bool) map[string]string {
	if f.User <= 0 {
		return map[string]string{"user": "this field is required"}
	}
	return nil
}

// AdminHandler holds the admin screens that are not plain CRUD.
type AdminHandler struct {
	API        *apiclient.Client
	Dashboards *dashboard.Service
	LoginPath  string
	Log        *zap.Logger
}

func NewAdminHandler(api *apiclient.Client, dash *dashboard.Service, loginPath string, log *zap.Logger) *AdminHandler {
	return &AdminHandler{API: api, Dashboards: dash, LoginPath: loginPath, Log: log}
}

// Dashboard handles GET /v1/admin/dashboard.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.Dashboards.Admin(ctx)
	if err != nil {
		return dashboardFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, stats)
}

// CancelReservation handles POST /v1/admin/reservations/:id/cancel.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.API.CancelReservation(ctx, id)
	if errors.Is(err, apiclient.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	h.Log.Info("admin cancelled reservation", zap.Int64("reservation_id", id), zap.String("admin", userName(c)))
	return c.JSON(http.StatusOK, res)
}

// Resources builds the CRUD handlers of the six admin resources.
func (h *AdminHandler) Resources() AdminResources {
	return AdminResources{
		Buses:        &CRUD[model.Bus, model.BusForm]{Name: "bus", Resource: h.API.Buses, LoginPath: h.LoginPath, Log: h.Log},
		Locations:    &CRUD[model.Location, model.LocationForm]{Name: "location", Resource: h.API.Locations, LoginPath: h.LoginPath, Log: h.Log},
		Routes:       &CRUD[model.Route, model.RouteForm]{Name: "route", Resource: h.API.Routes, Check: CheckRoute, LoginPath: h.LoginPath, Log: h.Log},
		Schedules:    &CRUD[model.Schedule, model.ScheduleForm]{Name: "schedule", Resource: h.API.Schedules, Check: CheckSchedule, LoginPath: h.LoginPath, Log: h.Log},
		Reservations: &CRUD[model.Reservation, model.ReservationCreate]{Name: "reservation", Resource: h.API.Reservations, Check: CheckAdminReservation, LoginPath: h.LoginPath, Log: h.Log},
		Users:        &CRUD[model.User, model.UserForm]{Name: "user", Resource: h.API.Users, Check: CheckUser, LoginPath: h.LoginPath, Log: h.Log},
	}
}

type AdminResources struct {
	Buses        *CRUD[model.Bus, model.BusForm]
	Locations    *CRUD[model.Location, model.LocationForm]
	Routes       *CRUD[model.Route, model.RouteForm]
	Schedules    *CRUD[model.Schedule, model.ScheduleForm]
	Reservations *CRUD[model.Reservation, model.ReservationCreate]
	Users        *CRUD[model.User, model.UserForm]
}

// dashboardFailure keeps the dashboards all-or-nothing: a 401 sends the
// user to login, anything else is one generic message.
func dashboardFailure(c echo.Context, err error, loginPath string) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return remoteFailure(c, err, loginPath)
	}
	return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
}
