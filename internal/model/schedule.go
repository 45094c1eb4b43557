package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Schedule is a bus departure offering.  Within one wizard session it is
// treated as immutable: the portal fetches the collection once and filters
// it locally.
//
// Fields:
//  ID                – remote primary key.
//  Bus               – vehicle operating the trip (nested).
//  DepartureLocation – origin stop (nested, city is used for filtering).
//  ArrivalLocation   – destination stop (nested).
//  DepartureTime     – departure timestamp.
//  ArrivalTime       – arrival timestamp.
//  Price             – price per seat.
//  AvailableSeats    – seats left at fetch time.
type Schedule struct {
	ID                int64           `json:"id"`
	Bus               *Bus            `json:"bus,omitempty"`
	DepartureLocation *Location       `json:"departure_location,omitempty"`
	ArrivalLocation   *Location       `json:"arrival_location,omitempty"`
	DepartureTime     time.Time       `json:"departure_time"`
	ArrivalTime       time.Time       `json:"arrival_time"`
	Price             decimal.Decimal `json:"price"`
	AvailableSeats    int             `json:"available_seats"`
	CreatedAt         time.Time       `json:"created_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at,omitempty"`
}

// DepartureCity returns the origin city or "" when the location is missing.
func (s Schedule) DepartureCity() string {
	if s.DepartureLocation == nil {
		return ""
	}
	return s.DepartureLocation.City
}

// ArrivalCity returns the destination city or "" when the location is missing.
func (s Schedule) ArrivalCity() string {
	if s.ArrivalLocation == nil {
		return ""
	}
	return s.ArrivalLocation.City
}

// TotalFor returns price × seats.  Negative seat counts yield zero.
func (s Schedule) TotalFor(seats int) decimal.Decimal {
	if seats <= 0 {
		return decimal.Zero
	}
	return s.Price.Mul(decimal.NewFromInt(int64(seats)))
}

// ScheduleForm is the body accepted by the admin schedule screens.  The
// remote serializer expects plain ids for the related objects.
type ScheduleForm struct {
	DepartureLocation int64           `json:"departure_location" validate:"required,gt=0"`
	ArrivalLocation   int64           `json:"arrival_location" validate:"required,gt=0,nefield=DepartureLocation"`
	Bus               int64           `json:"bus" validate:"required,gt=0"`
	DepartureTime     time.Time       `json:"departure_time" validate:"required"`
	ArrivalTime       time.Time       `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	Price             decimal.Decimal `json:"price"`
	AvailableSeats    int             `json:"available_seats" validate:"gt=0"`
}
