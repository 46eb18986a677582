package dailynotes

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/dailynotes/internal/config"
	"github.com/aretw0/dailynotes/internal/platform"
	"github.com/aretw0/dailynotes/pkg/adapters/broadcast"
	"github.com/aretw0/dailynotes/pkg/core"
)

// --- Types ---

// Config is the application configuration loaded from YAML and env.
type Config = config.Config

// App is a wired Store with its notification hub.
type App = platform.App

// Option defines a functional option for Open.
type Option = platform.Option

// --- Configuration ---

// LoadConfig reads path (or CONFIG_PATH, or ./config.yaml) plus the
// DAILYNOTES_* environment.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// FileConfig returns the default configuration for plain text files in dir.
func FileConfig(dir string) *Config {
	return &Config{
		Storage: config.StorageConfig{Kind: config.StorageFile, Dir: dir, Timezone: "Local"},
		Recent:  config.RecentConfig{Policy: string(core.PolicyCalendarDays), Days: "1..2", Hours: 48},
		Notify:  config.NotifyConfig{Targets: core.DefaultTargets(), Buffer: broadcast.DefaultBuffer},
		Server: config.ServerConfig{
			Addr:            "127.0.0.1:7788",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: config.LogConfig{Level: "info", Format: "text"},
	}
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithBackend injects a custom storage backend.
func WithBackend(b core.Backend) Option {
	return platform.WithBackend(b)
}

// WithClock overrides the wall clock (useful for testing).
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithForceTemp forces the notes directory into the temp dir.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// --- Factory ---

// Open builds, initializes and wires the backend described by cfg.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	return platform.New(ctx, cfg, opts...)
}

// OpenDir opens a file-backed store in dir with default settings.
func OpenDir(ctx context.Context, dir string, opts ...Option) (*App, error) {
	return platform.New(ctx, FileConfig(dir), opts...)
}
