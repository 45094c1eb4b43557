package middleware

// identity.go holds helpers shared across middleware and handlers for
// reading what Session and RequireAdmin stored in the echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// CurrentSession returns the session set by the Session middleware.
func CurrentSession(c echo.Context) *model.Session {
	s, _ := c.Get("session").(*model.Session)
	return s
}

// CurrentUser returns the user resolved by RequireAdmin, or nil.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get("user").(*model.User)
	return u
}

// userID returns the remote user id from the token claims, or "guest".
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
