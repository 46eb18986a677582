package core

import (
	"context"
	"time"
)

// Backend defines the contract for durable day-note storage.
// The Store code is identical regardless of which variant is plugged in.
type Backend interface {
	// Initialize ensures the underlying storage is ready (directories, schema migration).
	Initialize(ctx context.Context) error

	// Read returns the Aggregate for day. A day without notes yields "" and no error.
	Read(ctx context.Context, day Day) (string, error)

	// Write replaces the whole content of day with text, stamping any new
	// entries at the given instant.
	Write(ctx context.Context, day Day, text string, at time.Time) error

	// Append adds one entry to day and returns it with any backend-assigned identity.
	Append(ctx context.Context, day Day, entry NoteEntry) (NoteEntry, error)

	// DeleteDay removes everything stored for day. A missing day is not an error.
	DeleteDay(ctx context.Context, day Day) error

	// QueryRange returns entries with start <= created_at < end, ascending.
	// A zero end leaves the range open.
	QueryRange(ctx context.Context, start, end time.Time) ([]NoteEntry, error)

	// Close releases the underlying handles.
	Close() error
}

// EntryBackend is implemented by backends that keep discrete, addressable rows.
type EntryBackend interface {
	Backend

	// Get retrieves an entry by id.
	Get(ctx context.Context, id int64) (NoteEntry, error)

	// Update replaces the content of an entry and bumps its updated_at.
	Update(ctx context.Context, id int64, content string, at time.Time) (NoteEntry, error)

	// Delete removes an entry and returns the removed row.
	Delete(ctx context.Context, id int64) (NoteEntry, error)

	// List returns one page of entries plus the total matching count.
	List(ctx context.Context, q ListQuery) ([]NoteEntry, int, error)
}

// Watchable defines an interface for backends that can report changes made by other writers.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
