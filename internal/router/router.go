package router // package router defines how HTTP routes are registered for the portal

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/handler"
)

// Middleware groups the per-route middleware built in main.  Session runs
// on every /v1 route so probes never create sessions.
type Middleware struct {
	Session      echo.MiddlewareFunc
	RequireAuth  echo.MiddlewareFunc
	RequireAdmin echo.MiddlewareFunc
	RateLimit    echo.MiddlewareFunc
	Cache        echo.MiddlewareFunc
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready.Ready)
}

// RegisterAuth registers the auth and theme contexts.  Both work for
// signed-out sessions.
func RegisterAuth(e *echo.Echo, mw Middleware, a *handler.AuthHandler, t *handler.ThemeHandler) {
	g := e.Group("/v1/auth", mw.Session)
	g.POST("/login", a.Login, mw.RateLimit)
	g.POST("/register", a.Register, mw.RateLimit)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me)

	th := e.Group("/v1/theme", mw.Session)
	th.GET("", t.Get)
	th.PUT("", t.Set)
	th.POST("/toggle", t.Toggle)
}
