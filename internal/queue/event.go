// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// ReservationCreatedQueue is the durable queue carrying ReservationCreatedEvent.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published after the wizard created a
// reservation.  It carries enough for downstream consumers to log or notify
// without calling the remote API.
type ReservationCreatedEvent struct {
	ReservationID int64  `json:"reservation_id"`
	UserID        string `json:"user_id,omitempty"`
	ScheduleID    int64  `json:"schedule_id"`
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	DepartureTime string `json:"departure_time"`
	Seats         int    `json:"seats"`
	Total         string `json:"total"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// NewReservationCreated builds the event from the created reservation and
// the schedule it was booked on.
func NewReservationCreated(res *model.Reservation, s *model.Schedule, method model.PaymentMethod, userID string, at time.Time) ReservationCreatedEvent {
	ev := ReservationCreatedEvent{
		ReservationID: res.ID,
		UserID:        userID,
		ScheduleID:    res.Schedule.ID,
		Seats:         res.NumberOfSeats,
		Total:         res.TotalPrice.StringFixed(2),
		PaymentMethod: string(method),
		Status:        string(res.Status),
		CreatedAt:     at.UTC().Format(time.RFC3339),
	}
	if s != nil {
		ev.ScheduleID = s.ID
		ev.DepartureCity = s.DepartureCity()
		ev.ArrivalCity = s.ArrivalCity()
		ev.DepartureTime = s.DepartureTime.UTC().Format(time.RFC3339)
		if res.TotalPrice.IsZero() {
			ev.Total = s.TotalFor(res.NumberOfSeats).StringFixed(2)
		}
	}
	return ev
}
