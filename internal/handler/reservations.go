package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/ticket"
)

// ReservationHandler lists and manages the signed-in user's reservations.
// Ownership is enforced by the remote API, which only returns the caller's
// own reservations on these endpoints.
type ReservationHandler struct {
	API       *apiclient.Client
	Tickets   *ticket.Renderer
	LoginPath string
	Log       *zap.Logger
}

func NewReservationHandler(api *apiclient.Client, tickets *ticket.Renderer, loginPath string, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{API: api, Tickets: tickets, LoginPath: loginPath, Log: log}
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.API.MyReservations(ctx)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.API.Reservations.Get(ctx, id)
	if errors.Is(err, apiclient.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
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
	h.Log.Info("reservation cancelled", zap.Int64("reservation_id", id))
	return c.JSON(http.StatusOK, res)
}

// Ticket handles GET /v1/reservations/:id/ticket and streams a PDF.
// Cancelled reservations have no ticket.
func (h *ReservationHandler) Ticket(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.API.Reservations.Get(ctx, id)
	if errors.Is(err, apiclient.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	if res.Status == model.StatusCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is cancelled"})
	}
	if res.Schedule.Schedule == nil {
		s, err := h.API.Schedules.Get(ctx, res.Schedule.ID)
		if err != nil {
			return remoteFailure(c, err, h.LoginPath)
		}
		res.Schedule.Schedule = s
	}

	holder := ""
	if u, err := h.API.CurrentUser(ctx); err == nil {
		holder = strings.TrimSpace(u.FirstName + " " + u.LastName)
		if holder == "" {
			holder = u.Username
		}
	}

	pdf, err := h.Tickets.Render(res, holder)
	if errors.Is(err, ticket.ErrCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is cancelled"})
	}
	if err != nil {
		h.Log.Error("render ticket", zap.Int64("reservation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not render the ticket"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="ticket-%d.pdf"`, id))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
