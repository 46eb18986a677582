package config

import "time"

// Storage kinds accepted by StorageConfig.Kind.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the root application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Recent  RecentConfig  `yaml:"recent"`
	Notify  NotifyConfig  `yaml:"notify"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects and locates the durable backend.
type StorageConfig struct {
	Kind string `yaml:"kind" env:"DAILYNOTES_STORAGE_KIND" env-default:"file"`
	// Dir holds one text file per day when Kind is "file".
	Dir string `yaml:"dir" env:"DAILYNOTES_STORAGE_DIR" env-default:"./notes"`
	// DSN is a database file path for sqlite or a connection URL for postgres.
	DSN string `yaml:"dsn" env:"DAILYNOTES_STORAGE_DSN"`
	// Timezone names the IANA zone that defines day boundaries.
	Timezone string `yaml:"timezone" env:"DAILYNOTES_TIMEZONE" env-default:"Local"`
	// Unsafe disables re-rooting the notes directory into the temp dir under `go run`.
	Unsafe bool `yaml:"unsafe" env:"DAILYNOTES_UNSAFE"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// RecentConfig is the windowing policy used when a caller does not pass one.
type RecentConfig struct {
	Policy string `yaml:"policy" env:"DAILYNOTES_RECENT_POLICY" env-default:"days"`
	// Days is an inclusive offset range such as "1..2" (0 is today).
	Days  string `yaml:"days"  env:"DAILYNOTES_RECENT_DAYS"  env-default:"1..2"`
	Hours int    `yaml:"hours" env:"DAILYNOTES_RECENT_HOURS" env-default:"48"`
}

// NotifyConfig lists the windows that receive note-updated broadcasts.
type NotifyConfig struct {
	Targets []string `yaml:"targets" env:"DAILYNOTES_NOTIFY_TARGETS" env-default:"main,quick-capture" env-separator:","`
	Buffer  int      `yaml:"buffer"  env:"DAILYNOTES_NOTIFY_BUFFER"  env-default:"16"`
}

// ServerConfig holds the local HTTP surface settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"DAILYNOTES_SERVER_ADDR"             env-default:"127.0.0.1:7788"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"DAILYNOTES_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"DAILYNOTES_SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"DAILYNOTES_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
	// AllowedOrigins extends the loopback origins browsers may call from.
	AllowedOrigins []string `yaml:"allowed_origins" env:"DAILYNOTES_SERVER_ALLOWED_ORIGINS" env-separator:","`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"DAILYNOTES_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"DAILYNOTES_LOG_FORMAT" env-default:"text"`
	// File enables a rotating log file in addition to stderr.
	File string `yaml:"file" env:"DAILYNOTES_LOG_FILE"`
}
