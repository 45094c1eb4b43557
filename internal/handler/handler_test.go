package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/config"
	"github.com/iliyamo/bus-reservation-portal/internal/dashboard"
	"github.com/iliyamo/bus-reservation-portal/internal/handler"
	"github.com/iliyamo/bus-reservation-portal/internal/middleware"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/repository"
	"github.com/iliyamo/bus-reservation-portal/internal/router"
	"github.com/iliyamo/bus-reservation-portal/internal/session"
	"github.com/iliyamo/bus-reservation-portal/internal/ticket"
	"github.com/iliyamo/bus-reservation-portal/internal/wizard"
)

// ---- session store ----

type memStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func (m *memStore) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memStore) set(id string, fn func(*model.Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	fn(&s)
	m.sessions[id] = s
	return nil
}

func (m *memStore) SetToken(_ context.Context, id, token string) error {
	return m.set(id, func(s *model.Session) { s.Token = token })
}

func (m *memStore) ClearToken(_ context.Context, id string) error {
	return m.set(id, func(s *model.Session) { s.Token = "" })
}

func (m *memStore) SetTheme(_ context.Context, id string, t model.Theme) error {
	return m.set(id, func(s *model.Session) { s.Theme = t })
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ---- remote API ----

type remoteAPI struct {
	t            *testing.T
	mu           sync.Mutex
	reject       bool
	users        map[string]model.User // username -> user
	tokens       map[string]string     // token -> username
	schedules    []model.Schedule
	reservations map[int64]model.Reservation
	created      []model.ReservationCreate
}

func newRemoteAPI(t *testing.T) *remoteAPI {
	paris := &model.Location{ID: 1, City: "Paris", Address: "Gare de Bercy"}
	lyon := &model.Location{ID: 2, City: "Lyon", Address: "Perrache"}
	marseille := &model.Location{ID: 3, City: "Marseille", Address: "Saint-Charles"}
	first := model.Schedule{
		ID: 1, DepartureLocation: paris, ArrivalLocation: lyon,
		DepartureTime: time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2030, 5, 1, 12, 30, 0, 0, time.UTC),
		Price:         decimal.RequireFromString("25.00"), AvailableSeats: 20,
		Bus: &model.Bus{ID: 9, PlateNumber: "AB-123-CD", Model: "Setra", Capacity: 50},
	}
	second := model.Schedule{
		ID: 2, DepartureLocation: lyon, ArrivalLocation: marseille,
		DepartureTime: time.Date(2030, 5, 2, 9, 0, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2030, 5, 2, 13, 0, 0, 0, time.UTC),
		Price:         decimal.RequireFromString("30.00"), AvailableSeats: 3,
	}
	api := &remoteAPI{
		t: t,
		users: map[string]model.User{
			"alice": {ID: 7, Username: "alice", Email: "alice@example.com", FirstName: "Alice"},
			"root":  {ID: 1, Username: "root", Email: "root@example.com", IsStaff: true},
		},
		tokens:    map[string]string{},
		schedules: []model.Schedule{first, second},
		reservations: map[int64]model.Reservation{
			5: {ID: 5, Schedule: model.ScheduleRef{ID: 1, Schedule: &first}, NumberOfSeats: 1,
				TotalPrice: decimal.RequireFromString("25.00"), Status: model.StatusCancelled},
			6: {ID: 6, Schedule: model.ScheduleRef{ID: 2}, NumberOfSeats: 2,
				TotalPrice: decimal.RequireFromString("60.00"), Status: model.StatusConfirmed},
		},
	}
	for name, u := range api.users {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": u.ID,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("remote-secret"))
		require.NoError(t, err)
		api.tokens[tok] = name
	}
	return api
}

func (a *remoteAPI) createdRequests() []model.ReservationCreate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.ReservationCreate(nil), a.created...)
}

func (a *remoteAPI) setReject(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reject = v
}

func (a *remoteAPI) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(a.t, json.NewEncoder(w).Encode(v))
}

func (a *remoteAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	if r.Method == http.MethodPost && path == "/auth/login/" {
		var creds model.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		for tok, name := range a.tokens {
			if name == creds.Username && creds.Password == "secret" {
				a.write(w, http.StatusOK, map[string]string{"access": tok})
				return
			}
		}
		a.write(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	name, ok := a.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	if !ok || a.reject {
		a.write(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}
	user := a.users[name]

	switch {
	case path == "/auth/user/" || path == "/users/profile/":
		a.write(w, http.StatusOK, user)
	case path == "/schedules/":
		a.write(w, http.StatusOK, a.schedules)
	case strings.HasPrefix(path, "/schedules/"):
		id, _ := strconv.ParseInt(strings.Trim(strings.TrimPrefix(path, "/schedules/"), "/"), 10, 64)
		for _, s := range a.schedules {
			if s.ID == id {
				a.write(w, http.StatusOK, s)
				return
			}
		}
		a.write(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	case path == "/locations/":
		a.write(w, http.StatusOK, []model.Location{*a.schedules[0].DepartureLocation, *a.schedules[0].ArrivalLocation, *a.schedules[1].ArrivalLocation})
	case path == "/buses/":
		a.write(w, http.StatusOK, map[string]any{"results": []model.Bus{*a.schedules[0].Bus}})
	case path == "/reservations/" && r.Method == http.MethodPost:
		var req model.ReservationCreate
		assert.NoError(a.t, json.NewDecoder(r.Body).Decode(&req))
		a.created = append(a.created, req)
		res := model.Reservation{
			ID:              int64(100 + len(a.created)),
			Schedule:        model.ScheduleRef{ID: req.Schedule},
			NumberOfSeats:   req.NumberOfSeats,
			TotalPrice:      a.schedules[0].TotalFor(req.NumberOfSeats),
			Status:          model.StatusPending,
			SpecialRequests: req.SpecialRequests,
		}
		a.write(w, http.StatusCreated, res)
	case path == "/reservations/" || path == "/reservations/user/":
		list := make([]model.Reservation, 0, len(a.reservations))
		for _, res := range a.reservations {
			list = append(list, res)
		}
		a.write(w, http.StatusOK, list)
	case strings.HasPrefix(path, "/reservations/"):
		id, _ := strconv.ParseInt(strings.Trim(strings.TrimPrefix(path, "/reservations/"), "/"), 10, 64)
		res, ok := a.reservations[id]
		if !ok {
			a.write(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		a.write(w, http.StatusOK, res)
	default:
		a.write(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
}

// ---- portal ----

type portal struct {
	srv    *httptest.Server
	remote *remoteAPI
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	remote := newRemoteAPI(t)
	remoteSrv := httptest.NewServer(remote)
	t.Cleanup(remoteSrv.Close)

	log := zap.NewNop()
	store := &memStore{sessions: map[string]model.Session{}}
	var auth *session.Auth
	api := apiclient.New(remoteSrv.URL+"/api", 5*time.Second, session.Tokens{},
		apiclient.WithUnauthorizedHandler(func(ctx context.Context) { auth.Unauthorized(ctx) }))
	auth = session.NewAuth(store, api, log)
	wizards := wizard.NewService(wizard.NewMemoryStore(), wizard.ClientBackend(api), time.Hour, wizard.WithLocation(time.UTC))
	dash := dashboard.NewService(dashboard.ClientSource(api), log)

	e := echo.New()
	e.Validator = handler.NewValidator()
	mw := router.Middleware{
		Session:      middleware.Session(store, middleware.SessionConfig{CookieName: "portal_session", TTL: time.Hour}, log),
		RequireAuth:  middleware.RequireAuth("/login"),
		RequireAdmin: middleware.RequireAdmin(auth, "/login"),
		RateLimit:    middleware.NewTokenBucket(config.RateLimitConfig{}, nil, log),
		Cache:        middleware.NewRedisCache(config.CacheConfig{}, nil, log),
	}
	router.RegisterAuth(e, mw, handler.NewAuthHandler(auth, "/login", log), handler.NewThemeHandler(session.NewTheme(store), log))
	router.RegisterPortal(e, mw, router.PortalHandlers{
		Catalog:      handler.NewCatalogHandler(api, time.UTC, "/login"),
		Wizard:       handler.NewWizardHandler(wizards, "/dashboard", 2*time.Second, "/login", log),
		Reservations: handler.NewReservationHandler(api, ticket.NewRenderer([]byte("ticket-secret")), "/login", log),
		Profile:      handler.NewProfileHandler(api, dash, "/login"),
	})
	router.RegisterAdmin(e, mw, handler.NewAdminHandler(api, dash, "/login", log))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &portal{srv: srv, remote: remote}
}

// browser returns a client with its own cookie jar, i.e. its own session.
func (p *portal) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: p.srv.URL, http: &http.Client{Jar: jar}}
}

type browser struct {
	t      *testing.T
	base   string
	http   *http.Client
	header http.Header
}

func (b *browser) do(method, path string, body any) (int, map[string]any) {
	b.t.Helper()
	status, raw, _ := b.raw(method, path, body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(b.t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (b *browser) raw(method, path string, body any) (int, []byte, http.Header) {
	b.t.Helper()
	var rd io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(b.t, err)
		rd = bytes.NewReader(bs)
	}
	req, err := http.NewRequest(method, b.base+path, rd)
	require.NoError(b.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vals := range b.header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, raw, resp.Header
}

func (b *browser) login(user string) {
	b.t.Helper()
	status, out := b.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": user, "password": "secret"})
	require.Equal(b.t, http.StatusOK, status, out)
	require.Equal(b.t, true, out["authenticated"])
}

// ---- tests ----

func TestBookingFlowCreatesExactlyOneReservation(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.login("alice")

	status, w := b.do(http.MethodPost, "/v1/wizards", nil)
	require.Equal(t, http.StatusCreated, status, w)
	id := w["id"].(string)
	assert.Equal(t, "selection", w["step"])
	assert.Len(t, w["schedules"], 2)
	assert.Equal(t, []any{"Lyon", "Paris"}, w["departure_cities"])

	status, w = b.do(http.MethodPut, "/v1/wizards/"+id+"/filter", map[string]string{"departure_city": "PARIS"})
	require.Equal(t, http.StatusOK, status, w)
	require.Len(t, w["schedules"], 1)

	status, w = b.do(http.MethodPut, "/v1/wizards/"+id+"/selection", map[string]any{
		"schedule_id": 1, "number_of_seats": 2, "special_requests": "window seat",
	})
	require.Equal(t, http.StatusOK, status, w)
	assert.Equal(t, "50.00", w["total"])

	status, w = b.do(http.MethodPost, "/v1/wizards/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, status, w)
	assert.Equal(t, "details", w["step"])

	card := map[string]string{"number": "1234", "name": "Alice", "expiry": "12/30", "cvv": "123"}
	status, w = b.do(http.MethodPut, "/v1/wizards/"+id+"/payment", map[string]any{"payment_method": "card", "card": card})
	require.Equal(t, http.StatusOK, status, w)

	status, w = b.do(http.MethodPost, "/v1/wizards/"+id+"/advance", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status, w)
	assert.Equal(t, "invalid card number", w["error"])
	assert.Equal(t, "details", w["wizard"].(map[string]any)["step"])

	card["number"] = "4111 1111 1111 1111"
	status, _ = b.do(http.MethodPut, "/v1/wizards/"+id+"/payment", map[string]any{"card": card})
	require.Equal(t, http.StatusOK, status)
	status, w = b.do(http.MethodPost, "/v1/wizards/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, status, w)
	assert.Equal(t, "confirmation", w["step"])
	shown := w["draft"].(map[string]any)["card"].(map[string]any)
	assert.Equal(t, "••••••••••••1111", shown["number"])
	assert.NotContains(t, shown, "cvv")

	status, out := b.do(http.MethodPost, "/v1/wizards/"+id+"/submit", nil)
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, map[string]any{"to": "/dashboard", "after_ms": float64(2000)}, out["redirect"])
	assert.Equal(t, "submitted", out["wizard"].(map[string]any)["step"])

	status, _ = b.do(http.MethodPost, "/v1/wizards/"+id+"/submit", nil)
	assert.Equal(t, http.StatusConflict, status)

	created := p.remote.createdRequests()
	require.Len(t, created, 1)
	assert.Equal(t, int64(1), created[0].Schedule)
	assert.Equal(t, 2, created[0].NumberOfSeats)
	assert.Equal(t, "window seat", created[0].SpecialRequests)
	assert.Equal(t, model.PaymentCard, created[0].PaymentMethod)
}

func TestWizardSeatBounds(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.login("alice")

	_, w := b.do(http.MethodPost, "/v1/wizards", nil)
	id := w["id"].(string)

	status, w := b.do(http.MethodPost, "/v1/wizards/"+id+"/advance", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "please select a schedule", w["error"])

	b.do(http.MethodPut, "/v1/wizards/"+id+"/selection", map[string]any{"schedule_id": 2, "number_of_seats": 4})
	status, w = b.do(http.MethodPost, "/v1/wizards/"+id+"/advance", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "number of seats must be between 1 and 3", w["error"])

	status, w = b.do(http.MethodPut, "/v1/wizards/"+id+"/selection", map[string]any{"schedule_id": 99})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "schedule", w["field"])
}

func TestWizardBelongsToItsSession(t *testing.T) {
	p := newPortal(t)
	owner := p.browser(t)
	owner.login("alice")
	_, w := owner.do(http.MethodPost, "/v1/wizards", nil)
	id := w["id"].(string)

	other := p.browser(t)
	other.login("alice")
	status, _ := other.do(http.MethodGet, "/v1/wizards/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = owner.do(http.MethodDelete, "/v1/wizards/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = owner.do(http.MethodGet, "/v1/wizards/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSignedOutRequestsAreSentToLogin(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)

	status, out := b.do(http.MethodGet, "/v1/schedules", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "/login", out["redirect"])

	status, out = b.do(http.MethodGet, "/v1/auth/me", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, out["authenticated"])
}

func TestBadCredentials(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)

	status, out := b.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No active account found with the given credentials", out["error"])
	assert.NotContains(t, out, "redirect")

	status, out = b.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"password": "this field is required"}, out["fields"])
}

func TestRemoteRejectionSignsTheSessionOut(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.login("alice")

	_, out := b.do(http.MethodGet, "/v1/auth/me?peek=1", nil)
	assert.Equal(t, true, out["loading"])

	p.remote.setReject(true)
	status, out := b.do(http.MethodGet, "/v1/reservations", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "/login", out["redirect"])
	p.remote.setReject(false)

	_, out = b.do(http.MethodGet, "/v1/auth/me?peek=1", nil)
	assert.Equal(t, false, out["authenticated"])
	assert.Equal(t, false, out["loading"])
	status, _ = b.do(http.MethodGet, "/v1/schedules", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogFiltersAndValidatesDate(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.login("alice")

	status, out := b.do(http.MethodGet, "/v1/schedules?arrival_city=marseille&date=2030-05-02", nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, float64(1), out["count"])

	status, out = b.do(http.MethodGet, "/v1/schedules?date=02/05/2030", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "date must be formatted as YYYY-MM-DD", out["error"])

	status, _ = b.do(http.MethodGet, "/v1/schedules/42", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw, _ := b.raw(http.MethodGet, "/v1/locations/cities", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["Lyon","Marseille","Paris"]`, string(raw))
}

func TestTicket(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.login("alice")

	status, _ := b.do(http.MethodGet, "/v1/reservations/5/ticket", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, raw, hdr := b.raw(http.MethodGet, "/v1/reservations/6/ticket", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "application/pdf", hdr.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	status, _ = b.do(http.MethodGet, "/v1/reservations/abc/ticket", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUserDashboard(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.login("alice")

	status, out := b.do(http.MethodGet, "/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, float64(1), out["cancelled"])
	assert.Len(t, out["reservations"], 2)
	assert.Equal(t, "alice", out["profile"].(map[string]any)["username"])
}

func TestAdminArea(t *testing.T) {
	p := newPortal(t)

	customer := p.browser(t)
	customer.login("alice")
	status, _ := customer.do(http.MethodGet, "/v1/admin/dashboard", nil)
	assert.Equal(t, http.StatusForbidden, status)

	admin := p.browser(t)
	admin.login("root")
	status, out := admin.do(http.MethodGet, "/v1/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, map[string]any{
		"total_buses":            float64(1),
		"total_locations":        float64(3),
		"total_schedules":        float64(2),
		"total_reservations":     float64(2),
		"confirmed_reservations": float64(1),
	}, out)

	status, out = admin.do(http.MethodPost, "/v1/admin/routes", map[string]any{
		"name": "Paris-Lyon", "departure_location": 1, "arrival_location": 2,
		"distance": "0", "duration": 270, "price": "25",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"distance": "must be greater than 0"}, out["fields"])

	status, out = admin.do(http.MethodPost, "/v1/admin/schedules", map[string]any{
		"departure_location": 1, "arrival_location": 1, "bus": 9,
		"departure_time": "2030-05-01T08:00:00Z", "arrival_time": "2030-05-01T07:00:00Z",
		"price": "10", "available_seats": 10,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	fields := out["fields"].(map[string]any)
	assert.Equal(t, "must differ from departure_location", fields["arrival_location"])
	assert.Contains(t, fields, "arrival_time")

	status, out = admin.do(http.MethodPost, "/v1/admin/users", map[string]any{"username": "bob", "email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"password": "this field is required"}, out["fields"])

	status, _ = admin.do(http.MethodGet, "/v1/admin/reservations/404", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestThemeFollowsHintThenPersists(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.header = http.Header{middleware.ThemeHintHeader: []string{"dark"}}

	_, out := b.do(http.MethodGet, "/v1/theme", nil)
	assert.Equal(t, "dark", out["theme"])

	_, out = b.do(http.MethodPost, "/v1/theme/toggle", nil)
	assert.Equal(t, "light", out["theme"])

	_, out = b.do(http.MethodGet, "/v1/theme", nil)
	assert.Equal(t, "light", out["theme"])

	status, _ := b.do(http.MethodPut, "/v1/theme", map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, out = b.do(http.MethodPut, "/v1/theme", map[string]string{"theme": "dark"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "dark", out["theme"])
}

func TestHealth(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	require.NoError(t, handler.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestReady(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("dial tcp: connection refused"), http.StatusServiceUnavailable},
	} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/readyz", nil), rec)
		require.NoError(t, handler.NewReadyHandler(pinger{tc.err}, nil).Ready(c))
		assert.Equal(t, tc.status, rec.Code)
	}
}
