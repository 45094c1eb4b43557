package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/repository"
	"github.com/iliyamo/bus-reservation-portal/internal/session"
	"github.com/iliyamo/bus-reservation-portal/internal/utils"
)

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// ThemeHintHeader is the client hint carrying the OS colour preference.
const ThemeHintHeader = "Sec-CH-Prefers-Color-Scheme"

// Session loads the browser's session from its cookie, creating one when
// the cookie is missing, unknown or expired.  The session is stored in the
// echo context under "session" and bound to the request context so the
// remote API client can read its token.
//
// The bearer token's claims are inspected without verification: an
// expired token is dropped early and the user id feeds rate limiting.
func Session(store session.Store, cfg SessionConfig, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			s, err := loadSession(ctx, store, c, cfg)
			if err != nil {
				log.Error("session lookup failed", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "session storage unavailable"})
			}

			if s.Token != "" {
				claims, err := utils.InspectToken(s.Token)
				switch {
				case err != nil || claims.Expired(time.Now()):
					if err := store.ClearToken(ctx, s.ID); err != nil {
						log.Warn("clear expired token", zap.Error(err))
					}
					s.Token = ""
				case claims.UserID != "":
					c.Set("user_id", claims.UserID)
					ctx = session.WithUserID(ctx, claims.UserID)
				}
			}

			c.Set("session", s)
			c.SetRequest(req.WithContext(session.WithSession(ctx, s)))
			return next(c)
		}
	}
}

func loadSession(ctx context.Context, store session.Store, c echo.Context, cfg SessionConfig) (*model.Session, error) {
	if ck, err := c.Cookie(cfg.CookieName); err == nil && ck.Value != "" {
		s, err := store.Get(ctx, ck.Value)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return nil, err
		}
	}

	s := session.New(time.Now(), cfg.TTL)
	if hint := c.Request().Header.Get(ThemeHintHeader); hint != "" {
		s.Theme = session.Initial(hint)
	}
	if err := store.Create(ctx, s); err != nil {
		return nil, err
	}
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}
