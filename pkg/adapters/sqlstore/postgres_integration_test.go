//go:build integration

package sqlstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aretw0/dailynotes/pkg/adapters/sqlstore"
	"github.com/aretw0/dailynotes/pkg/core"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "notes",
			"POSTGRES_PASSWORD": "notes",
			"POSTGRES_DB":       "notes",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://notes:notes@%s:%s/notes?sslmode=disable", host, port.Port())
}

func TestPostgres_StoreRoundTrip(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	repo, err := sqlstore.Open(sqlstore.Config{Dialect: sqlstore.Postgres, DSN: dsn, Location: time.UTC})
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.Initialize(ctx))

	version, err := repo.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	now := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)
	store := core.NewStore(repo, core.NewCache(),
		core.WithLocation(time.UTC),
		core.WithClock(func() time.Time { return now }),
	)

	_, err = store.Append(ctx, "Buy milk", false)
	require.NoError(t, err)
	now = now.Add(5 * time.Minute)
	text, err := store.Append(ctx, "Call Bob", true)
	require.NoError(t, err)
	assert.Equal(t, "[09:05] Buy milk\n[09:10] Call Bob", text)

	quick := true
	page, err := store.ListNotes(ctx, core.ListQuery{QuickCapture: &quick})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)

	require.NoError(t, store.DeleteNote(ctx, page.Notes[0].ID))
	text, err = store.ReadToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[09:05] Buy milk", text)
}
