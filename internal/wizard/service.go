package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// Backend is the slice of the remote API the wizard needs.
type Backend interface {
	Creator
	ListSchedules(ctx context.Context) ([]model.Schedule, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
}

type clientBackend struct{ c *apiclient.Client }

// ClientBackend adapts the remote API client to Backend.
func ClientBackend(c *apiclient.Client) Backend { return clientBackend{c: c} }

func (b clientBackend) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	return b.c.Schedules.List(ctx)
}

func (b clientBackend) ListLocations(ctx context.Context) ([]model.Location, error) {
	return b.c.Locations.List(ctx)
}

func (b clientBackend) CreateReservation(ctx context.Context, req model.ReservationCreate) (*model.Reservation, error) {
	return b.c.CreateReservation(ctx, req)
}

// CreatedHook runs after a reservation was created.  It must not block the
// user's request for long; failures are the hook's own business.
type CreatedHook func(ctx context.Context, w *Wizard)

// Service loads, mutates and persists wizards on behalf of a session.
type Service struct {
	store   Store
	backend Backend
	ttl     time.Duration
	lockTTL time.Duration
	loc     *time.Location
	log     *zap.Logger
	now     func() time.Time
	onDone  CreatedHook
}

type ServiceOption func(*Service)

func WithLogger(l *zap.Logger) ServiceOption { return func(s *Service) { s.log = l } }

// WithLocation sets the zone used to compare filter dates.
func WithLocation(loc *time.Location) ServiceOption { return func(s *Service) { s.loc = loc } }

func WithCreatedHook(h CreatedHook) ServiceOption { return func(s *Service) { s.onDone = h } }

func NewService(store Store, backend Backend, ttl time.Duration, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		backend: backend,
		ttl:     ttl,
		lockTTL: 30 * time.Second,
		loc:     time.UTC,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the zone used by Visible.
func (s *Service) Location() *time.Location { return s.loc }

// Open fetches schedules and locations once and starts a wizard.
func (s *Service) Open(ctx context.Context, sessionID string) (*Wizard, error) {
	var (
		schedules []model.Schedule
		locations []model.Location
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		schedules, err = s.backend.ListSchedules(gctx)
		return err
	})
	g.Go(func() (err error) {
		locations, err = s.backend.ListLocations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w := New(uuid.NewString(), sessionID, schedules, locations, s.now().UTC())
	if err := s.store.Save(ctx, w, s.ttl); err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}
	s.log.Debug("wizard opened", zap.String("wizard_id", w.ID), zap.Int("schedules", len(schedules)))
	return w, nil
}

// Get loads a wizard owned by sessionID.  Wizards of other sessions are
// reported as not found.
func (s *Service) Get(ctx context.Context, sessionID, id string) (*Wizard, error) {
	w, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.SessionID != sessionID {
		return nil, ErrNotFound
	}
	return w, nil
}

// Update applies fn and persists the result.  A *ValidationError from fn
// is persisted too, since the wizard carries the message for display.
// Updates share the submission lock, so none lands while a submit is in
// flight.
func (s *Service) Update(ctx context.Context, sessionID, id string, fn func(*Wizard) error) (*Wizard, error) {
	w, unlock, err := s.acquire(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	fnErr := fn(w)
	var verr *ValidationError
	if fnErr != nil && !errors.As(fnErr, &verr) {
		return w, fnErr
	}
	w.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, w, s.ttl); err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}
	return w, fnErr
}

// Submit sends the reservation at most once per wizard.  The submitting
// flag is persisted before the remote call, and the store lock serialises
// concurrent requests, so a double click yields ErrSubmitInFlight.
func (s *Service) Submit(ctx context.Context, sessionID, id string) (*Wizard, error) {
	w, unlock, err := s.acquire(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	req, err := w.BeginSubmit()
	if err != nil {
		return w, err
	}
	if err := s.store.Save(ctx, w, s.ttl); err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}

	res, callErr := s.backend.CreateReservation(ctx, req)
	if errors.Is(callErr, apiclient.ErrUnauthorized) {
		// The session lost its token; the draft goes with it.
		_ = s.store.Delete(context.WithoutCancel(ctx), id)
		return nil, callErr
	}
	_ = w.CompleteSubmit(res, callErr)
	w.UpdatedAt = s.now().UTC()
	// Persist the outcome even if the browser went away mid-request.
	if err := s.store.Save(context.WithoutCancel(ctx), w, s.ttl); err != nil {
		s.log.Error("save wizard after submit", zap.String("wizard_id", id), zap.Error(err))
	}

	if callErr != nil {
		s.log.Warn("reservation rejected", zap.String("wizard_id", id), zap.Error(callErr))
		return w, callErr
	}
	s.log.Info("reservation created",
		zap.String("wizard_id", id),
		zap.Int64("reservation_id", res.ID),
		zap.Int("seats", req.NumberOfSeats))
	if s.onDone != nil {
		s.onDone(context.WithoutCancel(ctx), w)
	}
	return w, nil
}

// acquire takes the submission lock and loads the wizard.  Holding the
// lock means no submit is running, so a persisted Submitting flag was left
// by a holder that never finished and is cleared.
func (s *Service) acquire(ctx context.Context, sessionID, id string) (*Wizard, func(), error) {
	unlock, err := s.store.Lock(ctx, id, s.lockTTL)
	if errors.Is(err, ErrLocked) {
		return nil, nil, ErrSubmitInFlight
	}
	if err != nil {
		return nil, nil, err
	}
	w, err := s.Get(ctx, sessionID, id)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	if w.Submitting {
		s.log.Warn("clearing stale submission", zap.String("wizard_id", id))
		w.Submitting = false
	}
	return w, unlock, nil
}

// Discard deletes a wizard owned by sessionID.
func (s *Service) Discard(ctx context.Context, sessionID, id string) error {
	if _, err := s.Get(ctx, sessionID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
