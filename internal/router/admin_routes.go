package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/handler"
)

// RegisterAdmin registers the back-office under /v1/admin.  Routes require
// a signed-in staff, superuser or admin account.
func RegisterAdmin(e *echo.Echo, mw Middleware, a *handler.AdminHandler) {
	g := e.Group("/v1/admin", mw.Session, mw.RequireAuth, mw.RequireAdmin, mw.RateLimit)
	g.GET("/dashboard", a.Dashboard)

	res := a.Resources()
	mountCRUD(g, "/buses", res.Buses)
	mountCRUD(g, "/locations", res.Locations)
	mountCRUD(g, "/routes", res.Routes)
	mountCRUD(g, "/schedules", res.Schedules)
	mountCRUD(g, "/reservations", res.Reservations)
	mountCRUD(g, "/users", res.Users)

	g.POST("/reservations/:id/cancel", a.CancelReservation)
}

func mountCRUD[T any, F any](g *echo.Group, path string, h *handler.CRUD[T, F]) {
	g.GET(path, h.List)
	g.GET(path+"/:id", h.Get)
	g.POST(path, h.Create)
	g.PUT(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}
