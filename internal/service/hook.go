package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/queue"
	"github.com/iliyamo/bus-reservation-portal/internal/wizard"
)

// EventPublisher is satisfied by *Publisher.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

// ReservationCreatedHook publishes an event for every wizard that reached
// the submitted step.  Publishing runs in the background with its own
// timeout so a slow broker never delays the booking response.
func ReservationCreatedHook(p EventPublisher, userID func(context.Context) string, log *zap.Logger) wizard.CreatedHook {
	return func(ctx context.Context, w *wizard.Wizard) {
		if p == nil || w.Reservation == nil {
			return
		}
		ev := queue.NewReservationCreated(w.Reservation, w.Draft.Schedule, w.Draft.Method, userID(ctx), time.Now())
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := p.PublishReservationCreated(ctx, ev); err != nil {
				log.Debug("reservation event dropped", zap.Int64("reservation_id", ev.ReservationID), zap.Error(err))
			}
		}()
	}
}
