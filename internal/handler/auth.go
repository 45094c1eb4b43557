package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/middleware"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/session"
)

// AuthHandler exposes the auth context over HTTP.  Tokens never leave the
// portal: the browser only holds its session cookie.
type AuthHandler struct {
	Auth      *session.Auth
	LoginPath string
	Log       *zap.Logger
}

func NewAuthHandler(auth *session.Auth, loginPath string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, LoginPath: loginPath, Log: log}
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var creds model.Credentials
	if handled, err := bindAndValidate(c, &creds); handled {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.Login(ctx, middleware.CurrentSession(c), creds)
	if err != nil {
		return h.credentialsFailure(c, err, "invalid username or password")
	}
	h.Log.Info("user signed in", zap.Int64("user_id", u.ID))
	return c.JSON(http.StatusOK, stateOf(u))
}

// Register handles POST /v1/auth/register.  The new account is signed in
// right away.
func (h *AuthHandler) Register(c echo.Context) error {
	var reg model.Registration
	if handled, err := bindAndValidate(c, &reg); handled {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, middleware.CurrentSession(c), reg)
	if err != nil {
		return h.credentialsFailure(c, err, "registration failed")
	}
	h.Log.Info("user registered", zap.Int64("user_id", u.ID))
	return c.JSON(http.StatusCreated, stateOf(u))
}

// Logout handles POST /v1/auth/logout.  It succeeds for signed-out
// sessions too.
func (h *AuthHandler) Logout(c echo.Context) error {
	s := middleware.CurrentSession(c)
	if s.Authenticated() {
		if err := h.Auth.Logout(c.Request().Context(), s); err != nil {
			h.Log.Error("logout", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not sign out"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/auth/me.  With ?peek=1 the remote API is not
// consulted and a stored token is reported as loading.
func (h *AuthHandler) Me(c echo.Context) error {
	s := middleware.CurrentSession(c)
	if c.QueryParam("peek") == "1" {
		return c.JSON(http.StatusOK, h.Auth.Peek(s))
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	return c.JSON(http.StatusOK, h.Auth.State(ctx, s))
}

// credentialsFailure answers a failed login or registration.  A 401 here
// means bad credentials rather than an expired session.
func (h *AuthHandler) credentialsFailure(c echo.Context, err error, fallback string) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apiclient.Message(err, fallback)})
	}
	return remoteFailure(c, err, h.LoginPath)
}

func stateOf(u *model.User) session.State {
	return session.State{User: u, Authenticated: true, IsAdmin: u.IsAdministrator()}
}
