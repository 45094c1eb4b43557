// Package catalog narrows the schedule collection for the search screen and
// the wizard's selection step.  Everything here is pure: the base collection
// is never modified.
package catalog

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// DateLayout is the calendar date format of Filter.Date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned by Filter.Validate for malformed dates.
var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// Filter holds the optional search criteria.  Empty fields match everything.
type Filter struct {
	DepartureCity string `json:"departure_city" query:"departure_city"`
	ArrivalCity   string `json:"arrival_city" query:"arrival_city"`
	Date          string `json:"date" query:"date"`
}

// Empty reports whether no criterion is set.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.DepartureCity) == "" &&
		strings.TrimSpace(f.ArrivalCity) == "" &&
		strings.TrimSpace(f.Date) == ""
}

// Validate checks the date format.
func (f Filter) Validate() error {
	if d := strings.TrimSpace(f.Date); d != "" {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}

// Apply returns the schedules matching f, in their original order, as a
// new slice.  Cities compare case-insensitively; the date compares against
// the departure's calendar day in loc (UTC when loc is nil).
func Apply(all []model.Schedule, f Filter, loc *time.Location) []model.Schedule {
	if loc == nil {
		loc = time.UTC
	}
	dep := strings.TrimSpace(f.DepartureCity)
	arr := strings.TrimSpace(f.ArrivalCity)
	date := strings.TrimSpace(f.Date)

	out := make([]model.Schedule, 0, len(all))
	for _, s := range all {
		if dep != "" && !strings.EqualFold(strings.TrimSpace(s.DepartureCity()), dep) {
			continue
		}
		if arr != "" && !strings.EqualFold(strings.TrimSpace(s.ArrivalCity()), arr) {
			continue
		}
		if date != "" && s.DepartureTime.In(loc).Format(DateLayout) != date {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Cities returns the distinct city names of locs, sorted.  Names differing
// only by case are reported once, using the first spelling seen.
func Cities(locs []model.Location) []string {
	seen := make(map[string]bool, len(locs))
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		city := strings.TrimSpace(l.City)
		key := strings.ToLower(city)
		if city == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, city)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// Find returns the schedule with the given id.
func Find(all []model.Schedule, id int64) (model.Schedule, bool) {
	for _, s := range all {
		if s.ID == id {
			return s, true
		}
	}
	return model.Schedule{}, false
}

// ScheduleCities returns the distinct departure and arrival cities present
// in the schedule collection, each sorted.  The wizard offers these in its
// dropdowns so every choice yields at least one schedule.
func ScheduleCities(all []model.Schedule) (departures, arrivals []string) {
	deps := make([]model.Location, 0, len(all))
	arrs := make([]model.Location, 0, len(all))
	for _, s := range all {
		deps = append(deps, model.Location{City: s.DepartureCity()})
		arrs = append(arrs, model.Location{City: s.ArrivalCity()})
	}
	return Cities(deps), Cities(arrs)
}
