package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// fakeAPI serves canned bodies per path; a missing path answers 500.
func fakeAPI(t *testing.T, bodies map[string]string) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[strings.TrimPrefix(r.URL.Path, "/api")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL+"/api", time.Second, nil)
}

func adminBodies() map[string]string {
	return map[string]string{
		"/buses/":        `[{"id":1},{"id":2}]`,
		"/locations/":    `[{"id":1,"city":"Paris"},{"id":2,"city":"Lyon"},{"id":3,"city":"Nice"}]`,
		"/schedules/":    `[{"id":1}]`,
		"/reservations/": `[{"id":1,"status":"confirmed"},{"id":2,"status":"pending"},{"id":3,"status":"confirmed"},{"id":4,"status":"cancelled"}]`,
	}
}

func TestAdminCountsCollections(t *testing.T) {
	svc := NewService(ClientSource(fakeAPI(t, adminBodies())), nil)

	stats, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalBuses:            2,
		TotalLocations:        3,
		TotalSchedules:        1,
		TotalReservations:     4,
		ConfirmedReservations: 2,
	}, stats)
}

func TestAdminAnyFailureIsGeneric(t *testing.T) {
	for path := range adminBodies() {
		bodies := adminBodies()
		delete(bodies, path)
		svc := NewService(ClientSource(fakeAPI(t, bodies)), nil)

		stats, err := svc.Admin(context.Background())
		assert.ErrorIs(t, err, ErrStatsUnavailable, path)
		assert.Equal(t, Stats{}, stats, "no partial result when %s fails", path)
	}
}

type stubSource struct {
	Source
	profileErr error
	mine       []model.Reservation
}

func (s stubSource) Profile(context.Context) (*model.User, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return &model.User{ID: 1, Username: "ana"}, nil
}

func (s stubSource) MyReservations(context.Context) ([]model.Reservation, error) { return s.mine, nil }

func TestUserOverview(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	future := &model.Schedule{ID: 1, DepartureTime: now.Add(24 * time.Hour)}
	past := &model.Schedule{ID: 2, DepartureTime: now.Add(-24 * time.Hour)}
	src := stubSource{mine: []model.Reservation{
		{ID: 1, Status: model.StatusConfirmed, Schedule: model.ScheduleRef{ID: 1, Schedule: future}, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: 2, Status: model.StatusCancelled, Schedule: model.ScheduleRef{ID: 1, Schedule: future}, CreatedAt: now.Add(-time.Hour)},
		{ID: 3, Status: model.StatusPending, Schedule: model.ScheduleRef{ID: 2, Schedule: past}, CreatedAt: now.Add(-2 * time.Hour)},
	}}
	svc := NewService(src, nil)
	svc.now = func() time.Time { return now }

	ov, err := svc.User(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", ov.Profile.Username)
	assert.Equal(t, []int64{2, 3, 1}, []int64{ov.Reservations[0].ID, ov.Reservations[1].ID, ov.Reservations[2].ID})
	assert.Equal(t, 1, ov.Upcoming)
	assert.Equal(t, 1, ov.Cancelled)
}

func TestUserOverviewFailures(t *testing.T) {
	_, err := NewService(stubSource{profileErr: errors.New("boom")}, nil).User(context.Background())
	assert.ErrorIs(t, err, ErrOverviewUnavailable)

	_, err = NewService(stubSource{profileErr: &apiclient.APIError{StatusCode: 401}}, nil).User(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}
