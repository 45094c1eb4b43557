package model

import "time"

// Bus is a vehicle of the fleet.
type Bus struct {
	ID          int64     `json:"id"`
	PlateNumber string    `json:"plate_number"`
	Capacity    int       `json:"capacity"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// BusForm is the body accepted by the admin bus screens.
type BusForm struct {
	PlateNumber string `json:"plate_number" validate:"required"`
	Model       string `json:"model" validate:"required"`
	Capacity    int    `json:"capacity" validate:"gt=0"`
}
