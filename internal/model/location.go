package model

import "time"

// Location is a bus station or stop as exposed by the remote API under
// /locations/.  Schedules and routes embed it (or reference it by id).
//
// Fields:
//  ID         – primary key on the remote side.
//  City       – city name, used for schedule filtering.
//  Address    – street address of the stop.
//  PostalCode – postal code (optional).
//  Country    – country name (optional).
//  IsActive   – whether the stop is still served.
type Location struct {
	ID         int64     `json:"id"`
	City       string    `json:"city"`
	Address    string    `json:"address"`
	PostalCode string    `json:"postal_code,omitempty"`
	Country    string    `json:"country,omitempty"`
	IsActive   *bool     `json:"is_active,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// LocationForm is the body accepted by the admin location screens.
type LocationForm struct {
	City       string `json:"city" validate:"required"`
	Address    string `json:"address" validate:"required"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
}
