package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/apiclient"
	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// State is what every screen reads from the auth context.  Loading is true
// only while a stored token has not been resolved to a user yet.
type State struct {
	User          *model.User `json:"user"`
	Authenticated bool        `json:"authenticated"`
	IsAdmin       bool        `json:"is_admin"`
	Loading       bool        `json:"loading"`
}

// Remote is the part of the API client the auth context needs.
type Remote interface {
	Login(ctx context.Context, creds model.Credentials) (string, error)
	Register(ctx context.Context, reg model.Registration) (string, error)
	CurrentUser(ctx context.Context) (*model.User, error)
}

// Auth is the process-wide auth context.  It is constructed once and
// injected into handlers.
type Auth struct {
	store  Store
	remote Remote
	log    *zap.Logger
}

func NewAuth(store Store, remote Remote, log *zap.Logger) *Auth {
	return &Auth{store: store, remote: remote, log: log}
}

// CurrentUser resolves the session's token.  A token the remote API
// rejects is forgotten.
func (a *Auth) CurrentUser(ctx context.Context, s *model.Session) (*model.User, error) {
	if !s.Authenticated() {
		return nil, apiclient.ErrUnauthorized
	}
	u, err := a.remote.CurrentUser(apiclient.WithToken(ctx, s.Token))
	if err != nil {
		a.log.Info("stored token rejected, clearing", zap.Error(err))
		if clearErr := a.forget(ctx, s); clearErr != nil {
			a.log.Warn("clear token", zap.Error(clearErr))
		}
		return nil, err
	}
	return u, nil
}

// State reports the auth state of s.  Resolution failures are folded into
// an unauthenticated state rather than returned.
func (a *Auth) State(ctx context.Context, s *model.Session) State {
	if !s.Authenticated() {
		return State{}
	}
	u, err := a.CurrentUser(ctx, s)
	if err != nil {
		return State{}
	}
	return State{User: u, Authenticated: true, IsAdmin: u.IsAdministrator()}
}

// Peek reports the state without calling the remote API: a stored token
// that has not been resolved yet shows as loading.
func (a *Auth) Peek(s *model.Session) State {
	if !s.Authenticated() {
		return State{}
	}
	return State{Loading: true}
}

// Login exchanges credentials for a token, resolves the user and stores the
// token on the session only once both calls succeeded.
func (a *Auth) Login(ctx context.Context, s *model.Session, creds model.Credentials) (*model.User, error) {
	token, err := a.remote.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return a.adopt(ctx, s, token)
}

// Register creates the account and signs the session in with the token
// issued alongside it.
func (a *Auth) Register(ctx context.Context, s *model.Session, reg model.Registration) (*model.User, error) {
	token, err := a.remote.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return a.adopt(ctx, s, token)
}

func (a *Auth) adopt(ctx context.Context, s *model.Session, token string) (*model.User, error) {
	u, err := a.remote.CurrentUser(apiclient.WithToken(ctx, token))
	if err != nil {
		return nil, err
	}
	if err := a.store.SetToken(ctx, s.ID, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	s.Token = token
	return u, nil
}

// Logout forgets the token; the theme survives.
func (a *Auth) Logout(ctx context.Context, s *model.Session) error {
	return a.forget(ctx, s)
}

// Unauthorized is the API client's 401 hook: the session bound to ctx
// loses its token.
func (a *Auth) Unauthorized(ctx context.Context) {
	s := FromContext(ctx)
	if s == nil || !s.Authenticated() {
		return
	}
	if err := a.forget(context.WithoutCancel(ctx), s); err != nil {
		a.log.Warn("clear token after 401", zap.Error(err))
	}
}

func (a *Auth) forget(ctx context.Context, s *model.Session) error {
	s.Token = ""
	err := a.store.ClearToken(ctx, s.ID)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
