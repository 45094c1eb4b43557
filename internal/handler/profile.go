package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/dashboard"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// ProfileHandler serves the user's own account pages.
type ProfileHandler struct {
	API        *apiclient.Client
	Dashboards *dashboard.Service
	LoginPath  string
}

func NewProfileHandler(api *apiclient.Client, dash *dashboard.Service, loginPath string) *ProfileHandler {
	return &ProfileHandler{API: api, Dashboards: dash, LoginPath: loginPath}
}

// Get handles GET /v1/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.API.Profile(ctx)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, u)
}

// Update handles PATCH /v1/profile.
func (h *ProfileHandler) Update(c echo.Context) error {
	var upd model.ProfileUpdate
	if handled, err := bindAndValidate(c, &upd); handled {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.API.UpdateProfile(ctx, upd)
	if err != nil {
		return remoteFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, u)
}

// Dashboard handles GET /v1/dashboard.
func (h *ProfileHandler) Dashboard(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	ov, err := h.Dashboards.User(ctx)
	if err != nil {
		return dashboardFailure(c, err, h.LoginPath)
	}
	return c.JSON(http.StatusOK, ov)
}
