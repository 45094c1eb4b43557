package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health is a liveness probe: it answers "ok" as long as the process
// serves requests.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// ReadyHandler checks the session database and, when configured, Redis.
type ReadyHandler struct {
	DB    Pinger
	Redis *redis.Client
}

func NewReadyHandler(db Pinger, rdb *redis.Client) *ReadyHandler {
	return &ReadyHandler{DB: db, Redis: rdb}
}

// Ready answers 200 when every dependency responds, 503 otherwise with the
// state of each check.
func (h *ReadyHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := echo.Map{}
	ready := true
	if err := h.DB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{"ready": ready, "checks": checks})
}
