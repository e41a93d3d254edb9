package kv

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db, time.Hour), mock
}

func TestPostgres_Get(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT value FROM session_kv WHERE session_id = \$1 AND key = \$2`).
		WithArgs("v1", "token").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc"))

	v, ok, err := store.Get(context.Background(), "v1", "token")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_NotFound(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT value FROM session_kv`).
		WithArgs("v1", "user").
		WillReturnError(sql.ErrNoRows)

	_, ok, err := store.Get(context.Background(), "v1", "user")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgres_Get_Error(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT value FROM session_kv`).
		WillReturnError(errors.New("connection reset"))

	_, _, err := store.Get(context.Background(), "v1", "user")

	assert.ErrorContains(t, err, "Postgres.Get")
}

func TestPostgres_Set_Upserts(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec(`INSERT INTO session_kv \(session_id, key, value, updated_at\)`).
		WithArgs("v1", "token", "abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Set(context.Background(), "v1", "token", "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec(`DELETE FROM session_kv WHERE session_id = \$1 AND key = \$2`).
		WithArgs("v1", "tokenExpiry").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), "v1", "tokenExpiry"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Purge(t *testing.T) {
	store, mock := newMockPostgres(t)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	mock.ExpectExec(`DELETE FROM session_kv WHERE updated_at < \$1`).
		WithArgs(now.Add(-time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.Purge(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Purge_ZeroTTLKeepsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	n, err := NewPostgres(db, 0).Purge(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSealed_PurgeForwardsToInner(t *testing.T) {
	store, mock := newMockPostgres(t)
	sealed, err := NewSealed(store, testKey())
	require.NoError(t, err)

	mock.ExpectExec(`DELETE FROM session_kv`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := sealed.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	overMemory, err := NewSealed(NewMemory(), testKey())
	require.NoError(t, err)
	n, err = overMemory.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
