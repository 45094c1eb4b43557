package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

func sampleEvent() ReservationCreatedEvent {
	dep := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	s := &model.Schedule{
		ID:                4,
		DepartureLocation: &model.Location{City: "Paris"},
		ArrivalLocation:   &model.Location{City: "Lyon"},
		DepartureTime:     dep,
		Price:             decimal.RequireFromString("29.50"),
	}
	res := &model.Reservation{ID: 12, NumberOfSeats: 2, Status: model.StatusPending, Schedule: model.ScheduleRef{ID: 4}}
	return NewReservationCreated(res, s, model.PaymentPayPal, "7", dep.Add(-24*time.Hour))
}

func TestNewReservationCreatedFallsBackToComputedTotal(t *testing.T) {
	ev := sampleEvent()
	assert.Equal(t, "59.00", ev.Total)
	assert.Equal(t, "Paris", ev.DepartureCity)
	assert.Equal(t, "paypal", ev.PaymentMethod)
	assert.Equal(t, "2025-02-28T08:00:00Z", ev.CreatedAt)
}

func TestConsumerHandleAppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := &Consumer{Dir: dir, Log: zap.NewNop()}

	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)
	require.NoError(t, c.Handle(body))
	require.NoError(t, c.Handle(body))

	raw, err := os.ReadFile(filepath.Join(dir, "reservations.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "reservation_id=12")
	assert.Contains(t, lines[0], `route="Paris -> Lyon"`)
	assert.Contains(t, lines[0], "total=59.00")
}

func TestConsumerHandleRejectsBadPayloads(t *testing.T) {
	c := &Consumer{Dir: t.TempDir(), Log: zap.NewNop()}
	assert.Error(t, c.Handle([]byte("{")))
	assert.Error(t, c.Handle([]byte(`{"seats":2}`)))
}
