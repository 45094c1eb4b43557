package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Route is a named connection between two locations.  The remote API
// returns the location ids plus optional *_detail objects.
type Route struct {
	ID                      int64           `json:"id"`
	Name                    string          `json:"name"`
	DepartureLocation       int64           `json:"departure_location"`
	ArrivalLocation         int64           `json:"arrival_location"`
	Distance                decimal.Decimal `json:"distance"`
	Duration                int             `json:"duration"` // minutes
	Price                   decimal.Decimal `json:"price"`
	DepartureLocationDetail *Location       `json:"departure_location_detail,omitempty"`
	ArrivalLocationDetail   *Location       `json:"arrival_location_detail,omitempty"`
	CreatedAt               time.Time       `json:"created_at,omitempty"`
	UpdatedAt               time.Time       `json:"updated_at,omitempty"`
}

// RouteForm is the body accepted by the admin route screens.  Decimal
// fields are checked by the handler since the validator cannot compare
// them.
type RouteForm struct {
	Name              string          `json:"name" validate:"required"`
	DepartureLocation int64           `json:"departure_location" validate:"required,gt=0"`
	ArrivalLocation   int64           `json:"arrival_location" validate:"required,gt=0,nefield=DepartureLocation"`
	Distance          decimal.Decimal `json:"distance"`
	Duration          int             `json:"duration" validate:"gt=0"`
	Price             decimal.Decimal `json:"price"`
}
