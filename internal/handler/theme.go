package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/middleware"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/session"
)

type ThemeHandler struct {
	Theme *session.Theme
	Log   *zap.Logger
}

func NewThemeHandler(t *session.Theme, log *zap.Logger) *ThemeHandler {
	return &ThemeHandler{Theme: t, Log: log}
}

// Get handles GET /v1/theme.
func (h *ThemeHandler) Get(c echo.Context) error {
	mode := h.Theme.Mode(middleware.CurrentSession(c), c.Request().Header.Get(middleware.ThemeHintHeader))
	return c.JSON(http.StatusOK, echo.Map{"theme": mode})
}

// Toggle handles POST /v1/theme/toggle.
func (h *ThemeHandler) Toggle(c echo.Context) error {
	mode, err := h.Theme.Toggle(c.Request().Context(), middleware.CurrentSession(c),
		c.Request().Header.Get(middleware.ThemeHintHeader))
	if err != nil {
		h.Log.Error("toggle theme", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save the theme"})
	}
	return c.JSON(http.StatusOK, echo.Map{"theme": mode})
}

// Set handles PUT /v1/theme with {"theme": "light"|"dark"}.
func (h *ThemeHandler) Set(c echo.Context) error {
	var req struct {
		Theme model.Theme `json:"theme"`
	}
	if err := c.Bind(&req); err != nil || !req.Theme.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "theme must be light or dark"})
	}
	if err := h.Theme.Set(c.Request().Context(), middleware.CurrentSession(c), req.Theme); err != nil {
		h.Log.Error("set theme", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save the theme"})
	}
	return c.JSON(http.StatusOK, echo.Map{"theme": req.Theme})
}
