package main // reservation event consumer

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/logger"
	"github.com/iliyamo/bus-reservation-portal/internal/queue"
)

// notifier drains reservation.created and appends one line per booking to
// logs/reservations.log.
func main() {
	_ = godotenv.Load()

	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		log.Fatal("RABBITMQ_URL is required")
	}
	dir := os.Getenv("NOTIFIER_LOG_DIR")
	if dir == "" {
		dir = "logs"
	}

	zl, err := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: url, Dir: dir, Log: zl.Named("notifier")}
	zl.Info("notifier started", zap.String("queue", queue.ReservationCreatedQueue), zap.String("dir", dir))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Fatal("consumer", zap.Error(err))
	}
	zl.Info("notifier stopped")
}
