package sqlstore

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Dialect         string `json:"dialect"`
	SchemaVersion   int64  `json:"schema_version"`
	Location        string `json:"location"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	stats := r.db.Stats()
	return RepositoryState{
		Dialect:         string(r.dialect),
		SchemaVersion:   r.version.Load(),
		Location:        r.loc.String(),
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sql-backend"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
