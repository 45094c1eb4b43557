package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
	"github.com/iliyamo/bus-reservation-portal/internal/utils"
)

func newRepo(t *testing.T) (*SessionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepo(db, utils.NewSealer(sha256.Sum256([]byte("test")))), mock
}

func TestSessionRepoCreateStoresHashAndSealedToken(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	s := &model.Session{ID: "raw-id", Token: "bearer", Theme: model.ThemeDark, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO portal_sessions")).
		WithArgs(utils.HashSessionID("raw-id"), sqlmock.AnyArg(), "dark", now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetOpensToken(t *testing.T) {
	repo, mock := newRepo(t)
	sealed, err := repo.Sealer.Seal("bearer")
	require.NoError(t, err)
	created := time.Now().UTC().Add(-time.Minute)
	expires := time.Now().UTC().Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT token_sealed, theme, created_at, expires_at FROM portal_sessions")).
		WithArgs(utils.HashSessionID("raw-id")).
		WillReturnRows(sqlmock.NewRows([]string{"token_sealed", "theme", "created_at", "expires_at"}).
			AddRow(sealed, "light", created, expires))

	s, err := repo.Get(context.Background(), "raw-id")
	require.NoError(t, err)
	assert.Equal(t, "raw-id", s.ID)
	assert.Equal(t, "bearer", s.Token)
	assert.Equal(t, model.ThemeLight, s.Theme)
	assert.True(t, s.Authenticated())
}

func TestSessionRepoGetMissingAndExpired(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT token_sealed").WillReturnError(sql.ErrNoRows)
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	past := time.Now().UTC().Add(-time.Hour)
	mock.ExpectQuery("SELECT token_sealed").
		WillReturnRows(sqlmock.NewRows([]string{"token_sealed", "theme", "created_at", "expires_at"}).
			AddRow("", "", past.Add(-time.Hour), past))
	_, err = repo.Get(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetTreatsUnreadableTokenAsLoggedOut(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT token_sealed").
		WillReturnRows(sqlmock.NewRows([]string{"token_sealed", "theme", "created_at", "expires_at"}).
			AddRow("sealed-under-old-key", "dark", time.Now().UTC(), time.Now().UTC().Add(time.Hour)))

	s, err := repo.Get(context.Background(), "raw-id")
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.Equal(t, model.ThemeDark, s.Theme)
}

func TestSessionRepoUpdatesMapZeroRowsToNotFound(t *testing.T) {
	repo, mock := newRepo(t)
	hash := utils.HashSessionID("raw-id")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE portal_sessions SET theme=?")).
		WithArgs("dark", hash).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE portal_sessions SET token_sealed=''")).
		WithArgs(hash).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE portal_sessions SET token_sealed=?")).
		WithArgs(sqlmock.AnyArg(), hash).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetTheme(context.Background(), "raw-id", model.ThemeDark))
	assert.ErrorIs(t, repo.ClearToken(context.Background(), "raw-id"), ErrSessionNotFound)
	require.NoError(t, repo.SetToken(context.Background(), "raw-id", "new-bearer"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoDeleteExpired(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM portal_sessions WHERE expires_at < ?")).
		WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM portal_sessions WHERE id_hash=?")).
		WithArgs(utils.HashSessionID("raw-id")).WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.NoError(t, repo.Delete(context.Background(), "raw-id"))
	require.NoError(t, mock.ExpectationsWereMet())
}
