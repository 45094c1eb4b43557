package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/catalog"
)

// CatalogHandler serves the schedule search outside the wizard.
type CatalogHandler struct {
	API       *apiclient.Client
	Loc       *time.Location
	LoginPath string
}

func NewCatalogHandler(api *apiclient.Client, loc *time.Location, loginPath string) *CatalogHandler {
	return &CatalogHandler{API: api, Loc: loc, LoginPath: loginPath}
}

// Schedules handles GET /v1/schedules?departure_city=&arrival_city=&date=.
// The full collection is fetched and narrowed locally; city matching is
// case-insensitive and the date is compared in the portal's time zone.
func (h *CatalogHandler) Schedules(c echo.Context) error {
	var f catalog.Filter
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query"})
	}
	if err := f.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	all, err := h.API.Schedules.List(ctx)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	visible := catalog.Apply(all, f, h.Loc)
	deps, arrs := catalog.ScheduleCities(all)
	return c.JSON(http.StatusOK, echo.Map{
		"schedules":        visible,
		"count":            len(visible),
		"filter":           f,
		"departure_cities": deps,
		"arrival_cities":   arrs,
	})
}

// Schedule handles GET /v1/schedules/:id.
func (h *CatalogHandler) Schedule(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.API.Schedules.Get(ctx, id)
	if errors.Is(err, apiclient.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, s)
}

// Locations handles GET /v1/locations.
func (h *CatalogHandler) Locations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	locs, err := h.API.Locations.List(ctx)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, locs)
}

// Cities handles GET /v1/locations/cities: distinct city names, sorted.
func (h *CatalogHandler) Cities(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	locs, err := h.API.Locations.List(ctx)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, catalog.Cities(locs))
}
