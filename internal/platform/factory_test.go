package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dailynotes/internal/config"
	"github.com/aretw0/dailynotes/internal/platform"
	"github.com/aretw0/dailynotes/pkg/adapters/fs"
	"github.com/aretw0/dailynotes/pkg/adapters/sqlstore"
	"github.com/aretw0/dailynotes/pkg/core"
)

func testConfig(storage config.StorageConfig) *config.Config {
	storage.Timezone = "UTC"
	return &config.Config{
		Storage: storage,
		Recent:  config.RecentConfig{Policy: "days", Days: "1..2", Hours: 48},
		Notify:  config.NotifyConfig{Targets: core.DefaultTargets(), Buffer: 4},
		Server:  config.ServerConfig{Addr: "127.0.0.1:0"},
		Log:     config.LogConfig{Level: "info", Format: "text"},
	}
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, time.March, 1, 9, 5, 0, 0, time.UTC) }
}

func TestNew_File(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "notes")

	app, err := platform.New(ctx, testConfig(config.StorageConfig{Kind: config.StorageFile, Dir: dir}),
		platform.WithClock(fixedClock()))
	require.NoError(t, err)
	defer app.Close()

	repo, ok := app.Backend.(*fs.Repository)
	require.True(t, ok, "expected fs repository")
	assert.Equal(t, dir, repo.Path)
	assert.Equal(t, core.CalendarDays(1, 2), app.Policy)

	ch, err := app.Hub.Subscribe(ctx, core.WindowQuickCapture)
	require.NoError(t, err)

	text, err := app.Store.Append(ctx, "Buy milk", true)
	require.NoError(t, err)
	assert.Equal(t, "[09:05] Buy milk", text)

	data, err := os.ReadFile(filepath.Join(dir, "2024-03-01.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[09:05] Buy milk", string(data))

	select {
	case got := <-ch:
		assert.Equal(t, "[09:05] Buy milk", got)
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast for quick-capture window")
	}
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "notes.db")

	cfg := testConfig(config.StorageConfig{Kind: config.StorageSQLite, DSN: dsn})
	cfg.Recent = config.RecentConfig{Policy: "hours", Hours: 48}

	app, err := platform.New(ctx, cfg, platform.WithClock(fixedClock()))
	require.NoError(t, err)
	defer app.Close()

	repo, ok := app.Backend.(*sqlstore.Repository)
	require.True(t, ok, "expected sql repository")
	version, err := repo.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Positive(t, version)
	assert.Equal(t, core.RollingHours(48), app.Policy)

	_, err = app.Store.Append(ctx, "Buy milk", false)
	require.NoError(t, err)
	page, err := app.Store.ListNotes(ctx, core.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
}

func TestNew_InjectedBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := fs.NewRepository(fs.Config{Path: dir, Location: time.UTC})

	app, err := platform.New(ctx, testConfig(config.StorageConfig{Kind: config.StorageFile, Dir: "ignored"}),
		platform.WithBackend(repo))
	require.NoError(t, err)
	defer app.Close()

	assert.Same(t, repo, app.Backend)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown kind", func(t *testing.T) {
		cfg := testConfig(config.StorageConfig{Kind: "s3", Dir: "x"})
		_, err := platform.New(ctx, cfg)
		assert.Error(t, err)
	})

	t.Run("Unreachable storage", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))

		cfg := testConfig(config.StorageConfig{Kind: config.StorageFile, Dir: filepath.Join(blocker, "notes")})
		_, err := platform.New(ctx, cfg)
		assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	})
}

func TestOpenBackend_SandboxesDevRuns(t *testing.T) {
	cfg := config.StorageConfig{Kind: config.StorageFile, Dir: "/home/someone/notes", Location: time.UTC}

	b, err := platform.OpenBackend(cfg)
	require.NoError(t, err)
	assert.Equal(t, platform.ResolveNotesDir(cfg.Dir, true), b.(*fs.Repository).Path)

	cfg.Unsafe = true
	b, err = platform.OpenBackend(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Dir, b.(*fs.Repository).Path)
}
