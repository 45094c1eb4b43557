package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus is the server-owned lifecycle state.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// PaymentMethod tags the simulated payment used in the wizard.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPayPal PaymentMethod = "paypal"
)

// Valid reports whether m is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentPayPal
}

// Label is the human readable name shown on the confirmation step.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCard:
		return "Credit card"
	case PaymentPayPal:
		return "PayPal"
	}
	return string(m)
}

// Reservation is created by the wizard and owned by the remote service.
// Confirmation and cancellation happen elsewhere; the portal only reads
// the status.
//
// Fields:
//  ID              – remote primary key.
//  Schedule        – booked schedule (id or nested object).
//  User            – owner (id or nested object).
//  NumberOfSeats   – seats booked.
//  TotalPrice      – price × seats, computed by the server.
//  Status          – pending, confirmed or cancelled.
//  SpecialRequests – free text entered by the user.
//  PaymentMethod   – simulated payment method, when the server echoes it.
//  CreatedAt       – creation timestamp.
type Reservation struct {
	ID              int64             `json:"id"`
	Schedule        ScheduleRef       `json:"schedule"`
	User            *UserRef          `json:"user,omitempty"`
	NumberOfSeats   int               `json:"number_of_seats"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	Status          ReservationStatus `json:"status"`
	SpecialRequests string            `json:"special_requests"`
	PaymentMethod   PaymentMethod     `json:"payment_method,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at,omitempty"`
}

// ReservationCreate is the POST /reservations/ body.  User is only set by
// the admin create screen; the server assigns the caller otherwise.
type ReservationCreate struct {
	Schedule        int64         `json:"schedule" validate:"required,gt=0"`
	NumberOfSeats   int           `json:"number_of_seats" validate:"gte=1"`
	SpecialRequests string        `json:"special_requests"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty"`
	User            int64         `json:"user,omitempty"`
}
