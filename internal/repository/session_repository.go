package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/utils"
)

// SessionRepo persists sessions in portal_sessions.  Rows are keyed by the
// SHA-256 of the cookie value and bearer tokens are sealed before storage.
type SessionRepo struct {
	DB     *sql.DB
	Sealer *utils.Sealer
}

func NewSessionRepo(db *sql.DB, sealer *utils.Sealer) *SessionRepo {
	return &SessionRepo{DB: db, Sealer: sealer}
}

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	sealed, err := r.Sealer.Seal(s.Token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO portal_sessions (id_hash, token_sealed, theme, created_at, expires_at) VALUES (?,?,?,?,?)",
		utils.HashSessionID(s.ID), sealed, string(s.Theme), s.CreatedAt, s.ExpiresAt)
	return err
}

// Get loads a non-expired session.  Unknown and expired ids both yield
// ErrSessionNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	var (
		sealed string
		theme  string
		s      = model.Session{ID: id}
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_sealed, theme, created_at, expires_at FROM portal_sessions WHERE id_hash=? LIMIT 1",
		utils.HashSessionID(id)).Scan(&sealed, &theme, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if time.Now().UTC().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	s.Theme = model.Theme(theme)
	// A token sealed under a rotated secret is treated as logged out.
	if s.Token, err = r.Sealer.Open(sealed); err != nil {
		s.Token = ""
	}
	return &s, nil
}

// SetToken stores a new bearer token for the session.
func (r *SessionRepo) SetToken(ctx context.Context, id, token string) error {
	sealed, err := r.Sealer.Seal(token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	return r.update(ctx, "UPDATE portal_sessions SET token_sealed=?, updated_at=NOW() WHERE id_hash=?", sealed, id)
}

// ClearToken drops the bearer token, keeping theme and expiry.
func (r *SessionRepo) ClearToken(ctx context.Context, id string) error {
	return r.update(ctx, "UPDATE portal_sessions SET token_sealed='', updated_at=NOW() WHERE id_hash=?", id)
}

// SetTheme persists the display mode.
func (r *SessionRepo) SetTheme(ctx context.Context, id string, theme model.Theme) error {
	return r.update(ctx, "UPDATE portal_sessions SET theme=?, updated_at=NOW() WHERE id_hash=?", string(theme), id)
}

// Delete removes the session row.  Deleting an unknown id is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM portal_sessions WHERE id_hash=?", utils.HashSessionID(id))
	return err
}

// DeleteExpired purges rows whose expiry lies before now and returns how
// many were removed.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM portal_sessions WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// update runs a single-row UPDATE whose last placeholder is the id hash and
// maps zero affected rows to ErrSessionNotFound.
func (r *SessionRepo) update(ctx context.Context, query string, args ...any) error {
	last := len(args) - 1
	args[last] = utils.HashSessionID(args[last].(string))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
