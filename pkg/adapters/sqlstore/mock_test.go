package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dailynotes/pkg/adapters/sqlstore"
	"github.com/aretw0/dailynotes/pkg/core"
)

var rowColumns = []string{"id", "content", "created_at", "updated_at", "is_quick_capture"}

func newMockRepo(t *testing.T, dialect sqlstore.Dialect) (*sqlstore.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlstore.New(db, sqlstore.Config{Dialect: dialect, Location: time.UTC}), mock
}

func TestAppend_PostgresPlaceholders(t *testing.T) {
	repo, mock := newMockRepo(t, sqlstore.Postgres)
	at := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO notes \(content,\s?created_at,\s?updated_at,\s?is_quick_capture\) VALUES \(\$1,\s?\$2,\s?\$3,\s?\$4\) RETURNING id`).
		WithArgs("Buy milk", "2024-03-01T09:05:00.000000000Z", "2024-03-01T09:05:00.000000000Z", true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	e, err := repo.Append(context.Background(), march1, core.NoteEntry{Content: "Buy milk", CreatedAt: at, IsQuickCapture: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.ID)
	assert.True(t, e.UpdatedAt.Equal(at), "updated_at equals created_at at creation")
}

func TestRead_MalformedRows(t *testing.T) {
	repo, mock := newMockRepo(t, sqlstore.SQLite)

	mock.ExpectQuery(`SELECT (.+) FROM notes WHERE created_at >= \? AND created_at < \? ORDER BY created_at ASC, id ASC`).
		WithArgs("2024-03-01T00:00:00.000000000Z", "2024-03-02T00:00:00.000000000Z").
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow(1, "ok", "2024-03-01T09:05:00.000000000Z", "2024-03-01T09:05:00.000000000Z", int64(1)).
			AddRow(2, "legacy", "2024-03-01T09:10:00Z", "garbage", "t").
			AddRow(3, "broken", "yesterday", nil, "perhaps"))

	start, end := march1.Bounds(time.UTC)
	entries, err := repo.QueryRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, entries, 3, "malformed rows are returned with defaults")

	assert.True(t, entries[0].IsQuickCapture)

	assert.True(t, entries[1].CreatedAt.Equal(time.Date(2024, 3, 1, 9, 10, 0, 0, time.UTC)), "RFC3339 values are accepted")
	assert.True(t, entries[1].UpdatedAt.Equal(entries[1].CreatedAt), "bad updated_at falls back to created_at")
	assert.True(t, entries[1].IsQuickCapture)

	assert.Equal(t, "broken", entries[2].Content)
	assert.True(t, entries[2].CreatedAt.IsZero())
	assert.False(t, entries[2].IsQuickCapture)
}

func TestStorageErrors(t *testing.T) {
	repo, mock := newMockRepo(t, sqlstore.SQLite)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT (.+) FROM notes`).WillReturnError(errors.New("connection reset"))
	_, err := repo.Read(ctx, march1)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "connection reset")

	mock.ExpectQuery(`DELETE FROM notes WHERE id = \? RETURNING (.+)`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(rowColumns))
	_, err = repo.Delete(ctx, 9)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NotErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestWrite_RollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t, sqlstore.Postgres)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stamp := "2024-03-01T12:00:00.000000000Z"

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM notes WHERE created_at >= \$1 AND created_at < \$2`).
		WithArgs("2024-03-01T00:00:00.000000000Z", "2024-03-02T00:00:00.000000000Z").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO notes`).
		WithArgs("Buy milk", stamp, stamp, false).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`INSERT INTO notes`).
		WithArgs("Call Bob", stamp, stamp, false).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Write(context.Background(), march1, "[09:05] Buy milk\n[09:10] Call Bob", at)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestWrite_Commits(t *testing.T) {
	repo, mock := newMockRepo(t, sqlstore.SQLite)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stamp := "2024-03-01T12:00:00.000000000Z"

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM notes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO notes`).
		WithArgs("no prefix", stamp, stamp, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Write(context.Background(), march1, "no prefix\n   \n", at))
}

func TestList_QuickCaptureFilter(t *testing.T) {
	repo, mock := newMockRepo(t, sqlstore.Postgres)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notes WHERE is_quick_capture = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT (.+) FROM notes WHERE is_quick_capture = \$1 ORDER BY created_at DESC, id DESC LIMIT 2 OFFSET 1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow(5, "b", "2024-03-01T09:04:00.000000000Z", "2024-03-01T09:04:00.000000000Z", true).
			AddRow(3, "a", "2024-03-01T09:02:00.000000000Z", "2024-03-01T09:02:00.000000000Z", true))

	quick := true
	page, total, err := repo.List(context.Background(), core.ListQuery{Limit: 2, Offset: 1, QuickCapture: &quick})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, int64(5), page[0].ID)
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]sqlstore.Dialect{
		"sqlite": sqlstore.SQLite, "sqlite3": sqlstore.SQLite,
		"postgres": sqlstore.Postgres, "postgresql": sqlstore.Postgres, "pgx": sqlstore.Postgres,
	} {
		got, err := sqlstore.ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := sqlstore.ParseDialect("mysql")
	assert.Error(t, err)
}
