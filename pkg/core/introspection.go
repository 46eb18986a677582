package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	BackendType string   `json:"backend_type"`
	CachedDay   string   `json:"cached_day,omitempty"`
	CachedBytes int      `json:"cached_bytes"`
	Targets     []string `json:"targets"`
	Location    string   `json:"location"`
	EntryIDs    bool     `json:"entry_ids"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	backendType := "unknown"
	if s.backend != nil {
		backendType = "backend"
		if comp, ok := s.backend.(introspection.Component); ok {
			backendType = comp.ComponentType()
		}
	}
	_, entryIDs := s.backend.(EntryBackend)

	state := StoreState{
		BackendType: backendType,
		Targets:     append([]string(nil), s.targets...),
		Location:    s.loc.String(),
		EntryIDs:    entryIDs,
	}
	if e, ok := s.cache.Snapshot(); ok && !e.Day.IsZero() {
		state.CachedDay = e.Day.String()
		state.CachedBytes = len(e.Text)
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "note-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
