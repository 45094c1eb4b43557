package main // portal HTTP server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/config"
	"github.com/iliyamo/bus-reservation-portal/internal/dashboard"
	"github.com/iliyamo/bus-reservation-portal/internal/database"
	"github.com/iliyamo/bus-reservation-portal/internal/handler"
	"github.com/iliyamo/bus-reservation-portal/internal/logger"
	"github.com/iliyamo/bus-reservation-portal/internal/middleware"
	"github.com/iliyamo/bus-reservation-portal/internal/repository"
	"github.com/iliyamo/bus-reservation-portal/internal/router"
	"github.com/iliyamo/bus-reservation-portal/internal/service"
	"github.com/iliyamo/bus-reservation-portal/internal/session"
	"github.com/iliyamo/bus-reservation-portal/internal/ticket"
	"github.com/iliyamo/bus-reservation-portal/internal/utils"
	"github.com/iliyamo/bus-reservation-portal/internal/wizard"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	sessions := repository.NewSessionRepo(db, utils.NewSealer(cfg.SealingKey()))
	rdb := config.NewRedisClient(config.LoadRedisConfig(), zl)

	// The client's 401 hook needs the auth context, which needs the client.
	var auth *session.Auth
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, session.Tokens{},
		apiclient.WithLogger(zl.Named("api")),
		apiclient.WithUnauthorizedHandler(func(ctx context.Context) { auth.Unauthorized(ctx) }),
	)
	auth = session.NewAuth(sessions, api, zl.Named("auth"))
	theme := session.NewTheme(sessions)

	var store wizard.Store = wizard.NewMemoryStore()
	if rdb != nil {
		store = wizard.NewRedisStore(rdb, "wizard")
	}
	wizOpts := []wizard.ServiceOption{
		wizard.WithLogger(zl.Named("wizard")),
		wizard.WithLocation(cfg.Timezone),
	}
	if cfg.RabbitMQURL != "" {
		pub := service.NewPublisher(cfg.RabbitMQURL, zl.Named("publisher"))
		defer pub.Close()
		wizOpts = append(wizOpts, wizard.WithCreatedHook(service.ReservationCreatedHook(pub, session.UserIDFrom, zl)))
	}
	wizards := wizard.NewService(store, wizard.ClientBackend(api), cfg.WizardTTL, wizOpts...)
	dashboards := dashboard.NewService(dashboard.ClientSource(api), zl.Named("dashboard"))
	tickets := ticket.NewRenderer([]byte(cfg.SessionSecret))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zl.Named("http")))
	e.Use(echomw.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, middleware.ThemeHintHeader},
		}))
	}

	mw := router.Middleware{
		Session: middleware.Session(sessions, middleware.SessionConfig{
			CookieName: cfg.SessionCookie,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.IsProduction(),
		}, zl.Named("session")),
		RequireAuth:  middleware.RequireAuth(cfg.LoginPath),
		RequireAdmin: middleware.RequireAdmin(auth, cfg.LoginPath),
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl),
		Cache:        middleware.NewRedisCache(config.LoadCacheConfig(), rdb, zl),
	}

	router.RegisterRoutes(e, handler.NewReadyHandler(db, rdb))
	router.RegisterAuth(e, mw,
		handler.NewAuthHandler(auth, cfg.LoginPath, zl.Named("auth")),
		handler.NewThemeHandler(theme, zl))
	router.RegisterPortal(e, mw, router.PortalHandlers{
		Catalog:      handler.NewCatalogHandler(api, cfg.Timezone, cfg.LoginPath),
		Wizard:       handler.NewWizardHandler(wizards, cfg.SuccessRedirectPath, cfg.SuccessRedirectDelay, cfg.LoginPath, zl.Named("wizard")),
		Reservations: handler.NewReservationHandler(api, tickets, cfg.LoginPath, zl),
		Profile:      handler.NewProfileHandler(api, dashboards, cfg.LoginPath),
	})
	router.RegisterAdmin(e, mw, handler.NewAdminHandler(api, dashboards, cfg.LoginPath, zl.Named("admin")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, sessions, zl)

	go func() {
		addr := ":" + cfg.Port
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("api", cfg.APIBaseURL))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}

// sweepSessions deletes expired sessions every hour.
func sweepSessions(ctx context.Context, repo *repository.SessionRepo, zl *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				zl.Warn("sweep sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				zl.Info("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}
