package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/handler"
)

// PortalHandlers are the screens of a signed-in user.
type PortalHandlers struct {
	Catalog      *handler.CatalogHandler
	Wizard       *handler.WizardHandler
	Reservations *handler.ReservationHandler
	Profile      *handler.ProfileHandler
}

// RegisterPortal registers the signed-in endpoints under /v1.  Every route
// requires a session holding a bearer token and is rate limited; catalog
// reads are cached.
func RegisterPortal(e *echo.Echo, mw Middleware, h PortalHandlers) {
	g := e.Group("/v1", mw.Session, mw.RequireAuth, mw.RateLimit)

	// ---- Catalog ----
	g.GET("/schedules", h.Catalog.Schedules, mw.Cache)
	g.GET("/schedules/:id", h.Catalog.Schedule, mw.Cache)
	g.GET("/locations", h.Catalog.Locations, mw.Cache)
	g.GET("/locations/cities", h.Catalog.Cities, mw.Cache)

	// ---- Reservation wizard ----
	g.POST("/wizards", h.Wizard.Create)
	g.GET("/wizards/:id", h.Wizard.Get)
	g.PUT("/wizards/:id/filter", h.Wizard.SetFilter)
	g.PUT("/wizards/:id/selection", h.Wizard.SetSelection)
	g.PUT("/wizards/:id/payment", h.Wizard.SetPayment)
	g.POST("/wizards/:id/advance", h.Wizard.Advance)
	g.POST("/wizards/:id/back", h.Wizard.Back)
	g.POST("/wizards/:id/submit", h.Wizard.Submit)
	g.DELETE("/wizards/:id", h.Wizard.Discard)

	// ---- Reservations ----
	g.GET("/reservations", h.Reservations.List)
	g.GET("/reservations/:id", h.Reservations.Get)
	g.POST("/reservations/:id/cancel", h.Reservations.Cancel)
	g.GET("/reservations/:id/ticket", h.Reservations.Ticket)

	// ---- Profile ----
	g.GET("/profile", h.Profile.Get)
	g.PATCH("/profile", h.Profile.Update)
	g.GET("/dashboard", h.Profile.Dashboard)
}
