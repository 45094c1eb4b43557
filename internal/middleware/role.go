package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/session"
)

// RequireAuth rejects requests whose session holds no bearer token.  The
// body tells the browser where to go, mirroring the redirect the remote
// API's 401 would trigger.
func RequireAuth(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).Authenticated() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": loginPath})
			}
			return next(c)
		}
	}
}

// RequireAdmin resolves the session's user and lets staff, superusers and
// admins through.  The user is stored in the context under "user".
func RequireAdmin(auth *session.Auth, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := auth.CurrentUser(c.Request().Context(), CurrentSession(c))
			if errors.Is(err, apiclient.ErrUnauthorized) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired", "redirect": loginPath})
			}
			if err != nil {
				return c.JSON(http.StatusBadGateway, echo.Map{"error": "could not verify the current user"})
			}
			if !u.IsAdministrator() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			c.Set("user", u)
			return next(c)
		}
	}
}
