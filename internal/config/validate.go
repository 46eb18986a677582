package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/dailynotes/pkg/core"
)

// Validate performs business-rule validation on the loaded configuration
// and resolves derived fields. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if _, err := c.Recent.Resolve(); err != nil {
		return fmt.Errorf("recent: %w", err)
	}
	if len(c.Notify.Targets) == 0 {
		return fmt.Errorf("notify.targets must name at least one window")
	}
	for _, t := range c.Notify.Targets {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("notify.targets contains an empty window id")
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Kind {
	case StorageFile:
		if s.Dir == "" {
			return fmt.Errorf("dir is required for kind %q", s.Kind)
		}
	case StorageSQLite, StoragePostgres:
		if s.DSN == "" {
			return fmt.Errorf("dsn is required for kind %q", s.Kind)
		}
	default:
		return fmt.Errorf("kind must be one of file, sqlite, postgres (got %q)", s.Kind)
	}

	loc, err := loadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	s.Location = loc
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Resolve converts the configured window into a core.RecentPolicy.
func (r RecentConfig) Resolve() (core.RecentPolicy, error) {
	var p core.RecentPolicy
	switch strings.ToLower(r.Policy) {
	case string(core.PolicyCalendarDays):
		from, to, err := core.ParseDayRange(r.Days)
		if err != nil {
			return core.RecentPolicy{}, err
		}
		p = core.CalendarDays(from, to)
	case string(core.PolicyRollingHours):
		p = core.RollingHours(r.Hours)
	default:
		return core.RecentPolicy{}, fmt.Errorf("%w: policy must be days or hours (got %q)", core.ErrInvalidPolicy, r.Policy)
	}
	if err := p.Validate(); err != nil {
		return core.RecentPolicy{}, err
	}
	return p, nil
}
