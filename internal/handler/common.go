package handler // HTTP handlers of the portal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
)

// remoteTimeout bounds every handler that talks to the remote API.
const remoteTimeout = 10 * time.Second

// requestContext derives the handler context from the request, keeping the
// session bound by the Session middleware.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), remoteTimeout)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}

// remoteFailure translates an error of the remote API into a response:
// 401 tells the browser to go to the login page, 4xx answers are relayed
// with their message and field errors, anything else is a 502.
func remoteFailure(c echo.Context, err error, loginPath string) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired", "redirect": loginPath})
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "remote service timed out"})
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		body := echo.Map{"error": apiclient.Message(apiErr, http.StatusText(apiErr.StatusCode))}
		if len(apiErr.Fields) > 0 {
			body["fields"] = apiErr.Fields
		}
		return c.JSON(apiErr.StatusCode, body)
	}
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "remote service unavailable"})
}
