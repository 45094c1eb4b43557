// Package dashboard assembles the admin statistics and the user overview
// from independently fetched remote collections.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

var (
	// ErrStatsUnavailable hides which of the four fetches failed; the admin
	// dashboard renders nothing rather than partial numbers.
	ErrStatsUnavailable = errors.New("could not load dashboard statistics")
	// ErrOverviewUnavailable is the user dashboard counterpart.
	ErrOverviewUnavailable = errors.New("could not load dashboard")
)

// Stats are the admin counters.
type Stats struct {
	TotalBuses            int `json:"total_buses"`
	TotalLocations        int `json:"total_locations"`
	TotalSchedules        int `json:"total_schedules"`
	TotalReservations     int `json:"total_reservations"`
	ConfirmedReservations int `json:"confirmed_reservations"`
}

// Overview is the signed-in user's landing page.
type Overview struct {
	Profile      *model.User         `json:"profile"`
	Reservations []model.Reservation `json:"reservations"`
	Upcoming     int                 `json:"upcoming"`
	Cancelled    int                 `json:"cancelled"`
}

// Source is the part of the remote API the dashboards read.
type Source interface {
	ListBuses(ctx context.Context) ([]model.Bus, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
	ListSchedules(ctx context.Context) ([]model.Schedule, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	MyReservations(ctx context.Context) ([]model.Reservation, error)
	Profile(ctx context.Context) (*model.User, error)
}

type clientSource struct{ *apiclient.Client }

// ClientSource adapts the remote API client to Source.
func ClientSource(c *apiclient.Client) Source { return clientSource{c} }

func (s clientSource) ListBuses(ctx context.Context) ([]model.Bus, error) { return s.Buses.List(ctx) }
func (s clientSource) ListLocations(ctx context.Context) ([]model.Location, error) {
	return s.Locations.List(ctx)
}
func (s clientSource) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	return s.Schedules.List(ctx)
}
func (s clientSource) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	return s.Reservations.List(ctx)
}

// Service computes dashboards.
type Service struct {
	src Source
	log *zap.Logger
	now func() time.Time
}

func NewService(src Source, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{src: src, log: log, now: time.Now}
}

// Admin fetches buses, locations, schedules and reservations concurrently
// and counts them.  Any failure yields ErrStatsUnavailable, except a 401
// which is passed through so the caller can send the user to login.
func (s *Service) Admin(ctx context.Context) (Stats, error) {
	var (
		buses        []model.Bus
		locations    []model.Location
		schedules    []model.Schedule
		reservations []model.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { buses, err = s.src.ListBuses(gctx); return })
	g.Go(func() (err error) { locations, err = s.src.ListLocations(gctx); return })
	g.Go(func() (err error) { schedules, err = s.src.ListSchedules(gctx); return })
	g.Go(func() (err error) { reservations, err = s.src.ListReservations(gctx); return })
	if err := g.Wait(); err != nil {
		return Stats{}, s.fail("admin stats", err, ErrStatsUnavailable)
	}

	stats := Stats{
		TotalBuses:        len(buses),
		TotalLocations:    len(locations),
		TotalSchedules:    len(schedules),
		TotalReservations: len(reservations),
	}
	for _, r := range reservations {
		if r.Status == model.StatusConfirmed {
			stats.ConfirmedReservations++
		}
	}
	return stats, nil
}

// User fetches the profile and the user's reservations concurrently.
// Reservations are listed newest first.
func (s *Service) User(ctx context.Context) (Overview, error) {
	var (
		profile      *model.User
		reservations []model.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { profile, err = s.src.Profile(gctx); return })
	g.Go(func() (err error) { reservations, err = s.src.MyReservations(gctx); return })
	if err := g.Wait(); err != nil {
		return Overview{}, s.fail("user overview", err, ErrOverviewUnavailable)
	}

	sort.SliceStable(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	ov := Overview{Profile: profile, Reservations: reservations}
	now := s.now()
	for _, r := range reservations {
		switch {
		case r.Status == model.StatusCancelled:
			ov.Cancelled++
		case r.Schedule.Schedule != nil && r.Schedule.Schedule.DepartureTime.After(now):
			ov.Upcoming++
		}
	}
	return ov, nil
}

func (s *Service) fail(what string, err, generic error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}
	s.log.Warn(what+" failed", zap.Error(err))
	return generic
}
