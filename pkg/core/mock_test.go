package core_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/dailynotes/pkg/core"
)

// MemBackend implements core.EntryBackend in memory.
type MemBackend struct {
	mu      sync.Mutex
	loc     *time.Location
	nextID  int64
	entries []core.NoteEntry
	reads   atomic.Int32

	// FailWrites makes every mutation return a storage error.
	FailWrites bool

	inflight atomic.Int32
	overlap  atomic.Bool
}

func NewMemBackend(loc *time.Location) *MemBackend {
	return &MemBackend{loc: loc}
}

func (m *MemBackend) Initialize(ctx context.Context) error { return nil }
func (m *MemBackend) Close() error                         { return nil }

func (m *MemBackend) Read(ctx context.Context, day core.Day) (string, error) {
	m.reads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.EntriesToText(m.dayLocked(day), m.loc), nil
}

func (m *MemBackend) Write(ctx context.Context, day core.Day, text string, at time.Time) error {
	if m.FailWrites {
		return fmt.Errorf("write: %w", core.ErrStorageUnavailable)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropDayLocked(day)
	for _, content := range core.TextToContents(text) {
		m.insertLocked(core.NoteEntry{Content: content, CreatedAt: at, UpdatedAt: at})
	}
	return nil
}

func (m *MemBackend) Append(ctx context.Context, day core.Day, e core.NoteEntry) (core.NoteEntry, error) {
	if m.inflight.Add(1) > 1 {
		m.overlap.Store(true)
	}
	defer m.inflight.Add(-1)
	time.Sleep(100 * time.Microsecond)

	if m.FailWrites {
		return core.NoteEntry{}, fmt.Errorf("append: %w", core.ErrStorageUnavailable)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(e), nil
}

func (m *MemBackend) DeleteDay(ctx context.Context, day core.Day) error {
	if m.FailWrites {
		return fmt.Errorf("delete day: %w", core.ErrStorageUnavailable)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropDayLocked(day)
	return nil
}

func (m *MemBackend) QueryRange(ctx context.Context, start, end time.Time) ([]core.NoteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.NoteEntry
	for _, e := range m.entries {
		if e.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && !e.CreatedAt.Before(end) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemBackend) Get(ctx context.Context, id int64) (core.NoteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return core.NoteEntry{}, core.ErrNotFound
}

func (m *MemBackend) Update(ctx context.Context, id int64, content string, at time.Time) (core.NoteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries[i].Content = content
			m.entries[i].UpdatedAt = at
			return m.entries[i], nil
		}
	}
	return core.NoteEntry{}, core.ErrNotFound
}

func (m *MemBackend) Delete(ctx context.Context, id int64) (core.NoteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return e, nil
		}
	}
	return core.NoteEntry{}, core.ErrNotFound
}

func (m *MemBackend) List(ctx context.Context, q core.ListQuery) ([]core.NoteEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var match []core.NoteEntry
	for _, e := range m.entries {
		if q.QuickCapture != nil && e.IsQuickCapture != *q.QuickCapture {
			continue
		}
		match = append(match, e)
	}
	sort.SliceStable(match, func(i, j int) bool { return match[j].CreatedAt.Before(match[i].CreatedAt) })
	total := len(match)
	if q.Offset >= len(match) {
		return nil, total, nil
	}
	match = match[q.Offset:]
	if q.Limit < len(match) {
		match = match[:q.Limit]
	}
	return match, total, nil
}

// Seed inserts an entry directly, bypassing the store.
func (m *MemBackend) Seed(content string, at time.Time) core.NoteEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(core.NoteEntry{Content: content, CreatedAt: at, UpdatedAt: at})
}

func (m *MemBackend) insertLocked(e core.NoteEntry) core.NoteEntry {
	m.nextID++
	e.ID = m.nextID
	m.entries = append(m.entries, e)
	return e
}

func (m *MemBackend) dayLocked(day core.Day) []core.NoteEntry {
	var out []core.NoteEntry
	for _, e := range m.entries {
		if core.DayOf(e.CreatedAt, m.loc) == day {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemBackend) dropDayLocked(day core.Day) {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if core.DayOf(e.CreatedAt, m.loc) != day {
			kept = append(kept, e)
		}
	}
	m.entries = kept
}

// TextOnly hides the entry capability of a MemBackend, like a flat-file backend.
type TextOnly struct {
	b *MemBackend
}

func (t TextOnly) Initialize(ctx context.Context) error { return nil }
func (t TextOnly) Close() error                         { return nil }
func (t TextOnly) Read(ctx context.Context, day core.Day) (string, error) {
	return t.b.Read(ctx, day)
}
func (t TextOnly) Write(ctx context.Context, day core.Day, text string, at time.Time) error {
	return t.b.Write(ctx, day, text, at)
}
func (t TextOnly) Append(ctx context.Context, day core.Day, e core.NoteEntry) (core.NoteEntry, error) {
	return t.b.Append(ctx, day, e)
}
func (t TextOnly) DeleteDay(ctx context.Context, day core.Day) error {
	return t.b.DeleteDay(ctx, day)
}
func (t TextOnly) QueryRange(ctx context.Context, start, end time.Time) ([]core.NoteEntry, error) {
	return t.b.QueryRange(ctx, start, end)
}

// Recorder captures notifications.
type Recorder struct {
	mu    sync.Mutex
	calls []Notification
}

type Notification struct {
	Targets []string
	Payload string
}

func (r *Recorder) Notify(ctx context.Context, targets []string, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Notification{Targets: append([]string(nil), targets...), Payload: payload})
}

func (r *Recorder) Calls() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.calls...)
}

// Clock is a settable test clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
