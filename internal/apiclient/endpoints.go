package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// tokenResponse covers both {"access": "..."} and {"token": {"access": "..."}}.
type tokenResponse struct {
	Access string `json:"access"`
	Token  *struct {
		Access string `json:"access"`
	} `json:"token"`
}

func (t tokenResponse) access() string {
	if t.Access != "" {
		return t.Access
	}
	if t.Token != nil {
		return t.Token.Access
	}
	return ""
}

var errNoToken = errors.New("remote api: response carried no access token")

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", creds, &out); err != nil {
		return "", err
	}
	if tok := out.access(); tok != "" {
		return tok, nil
	}
	return "", errNoToken
}

// Register creates an account and returns the access token issued with it.
func (c *Client) Register(ctx context.Context, reg model.Registration) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/", reg, &out); err != nil {
		return "", err
	}
	if tok := out.access(); tok != "" {
		return tok, nil
	}
	return "", errNoToken
}

// CurrentUser resolves the token's owner.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/auth/user/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/users/profile/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies a partial update (PATCH) to the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPatch, "/users/profile/", upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// MyReservations lists the caller's reservations.
func (c *Client) MyReservations(ctx context.Context) ([]model.Reservation, error) {
	out := []model.Reservation{}
	if err := c.list(ctx, "/reservations/user/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReservation posts one reservation.  Callers are responsible for
// never repeating the call for the same booking attempt.
func (c *Client) CreateReservation(ctx context.Context, req model.ReservationCreate) (*model.Reservation, error) {
	return c.Reservations.Create(ctx, req)
}

// CancelReservation asks the server to cancel; the server owns the status.
// Some server versions answer with a status message instead of the
// reservation, in which case the reservation is fetched again.
func (c *Client) CancelReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var r model.Reservation
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel/", id), nil, &r); err != nil {
		return nil, err
	}
	if r.ID == 0 {
		return c.Reservations.Get(ctx, id)
	}
	return &r, nil
}
