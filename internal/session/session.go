// Package session holds the per-browser state shared by every screen: the
// bearer token with the user it resolves to, and the display theme.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// Store persists sessions.  repository.SessionRepo is the MySQL
// implementation.
type Store interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	SetToken(ctx context.Context, id, token string) error
	ClearToken(ctx context.Context, id string) error
	SetTheme(ctx context.Context, id string, theme model.Theme) error
	Delete(ctx context.Context, id string) error
}

// New returns a fresh, unauthenticated session valid for ttl.
func New(now time.Time, ttl time.Duration) *model.Session {
	now = now.UTC()
	return &model.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

type ctxKey int

const (
	sessionKey ctxKey = iota
	userIDKey
)

// WithSession binds s to ctx.
func WithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session bound to ctx, or nil.
func FromContext(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionKey).(*model.Session)
	return s
}

// WithUserID records the remote user id read from the token claims.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFrom returns the id recorded by WithUserID, or "".
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Tokens is the remote API client's token source: the token of the session
// bound to the request context.
type Tokens struct{}

func (Tokens) Token(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Token
	}
	return ""
}
