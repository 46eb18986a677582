package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Store coordinates the backend, the cache and the notifier.
// Append, SaveToday, UpdateNote, DeleteNote and Refresh run under the cache
// lock from the backend write through the cache update and the broadcast.
type Store struct {
	backend  Backend
	cache    *Cache
	notifier Notifier
	targets  []string
	now      func() time.Time
	loc      *time.Location
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the sink that receives the Aggregate after each mutation.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithTargets sets the window ids notified after each mutation.
func WithTargets(targets ...string) Option {
	return func(s *Store) {
		s.targets = append([]string(nil), targets...)
	}
}

// WithClock overrides the wall clock (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone that defines day boundaries and HH:MM prefixes.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store over backend. The cache handle is owned by the
// caller and must not be shared between stores.
func NewStore(backend Backend, cache *Cache, opts ...Option) *Store {
	if cache == nil {
		cache = NewCache()
	}
	s := &Store{
		backend:  backend,
		cache:    cache,
		notifier: Discard,
		targets:  DefaultTargets(),
		now:      time.Now,
		loc:      time.Local,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the time zone defining day boundaries.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Today returns the current DayBucket.
func (s *Store) Today() Day {
	day, _ := s.clock()
	return day
}

func (s *Store) clock() (Day, time.Time) {
	now := s.now().In(s.loc)
	return DayOf(now, s.loc), now
}

// ReadToday returns today's Aggregate. A valid cache entry is returned
// without locking; a miss reloads from the backend under the lock.
// A day without notes yields "".
func (s *Store) ReadToday(ctx context.Context) (string, error) {
	day, _ := s.clock()
	if text, ok := s.cache.ValidFor(day); ok {
		return text, nil
	}

	s.cache.Lock()
	defer s.cache.Unlock()

	if text, ok := s.cache.ValidFor(day); ok {
		return text, nil
	}

	text, err := s.backend.Read(ctx, day)
	if err != nil {
		return "", fmt.Errorf("read today: %w", err)
	}
	s.cache.set(CacheEntry{Text: text, Day: day})
	return text, nil
}

// Current returns the cached entry without touching the backend.
func (s *Store) Current() (CacheEntry, bool) {
	return s.cache.Snapshot()
}

// Append stamps content with the current time, stores it as the last entry
// of today and returns the new Aggregate. Appending the same content twice
// produces two lines.
func (s *Store) Append(ctx context.Context, content string, isQuickCapture bool) (string, error) {
	s.cache.Lock()
	defer s.cache.Unlock()

	day, now := s.clock()
	entry := NoteEntry{
		Content:        content,
		CreatedAt:      now,
		UpdatedAt:      now,
		IsQuickCapture: isQuickCapture,
	}
	if _, err := s.backend.Append(ctx, day, entry); err != nil {
		return "", fmt.Errorf("append note: %w", err)
	}

	s.logger.Debug("note appended", "day", day.String(), "quick_capture", isQuickCapture)
	return s.publishLocked(ctx, day)
}

// SaveToday replaces today's bucket with text.
//
// On an entry backend every line becomes a new entry stamped at the save
// instant: the original created_at values are not recovered from the
// "[HH:MM]" prefixes, which is a known lossy round trip.
func (s *Store) SaveToday(ctx context.Context, text string) (string, error) {
	s.cache.Lock()
	defer s.cache.Unlock()

	day, now := s.clock()
	var err error
	if strings.TrimSpace(text) == "" {
		err = s.backend.DeleteDay(ctx, day)
	} else {
		err = s.backend.Write(ctx, day, text, now)
	}
	if err != nil {
		return "", fmt.Errorf("save today: %w", err)
	}

	s.logger.Debug("note saved", "day", day.String(), "bytes", len(text))
	return s.publishLocked(ctx, day)
}

// DeleteNote removes one entry by id and rebroadcasts today's Aggregate.
// It returns ErrUnsupported for backends without entry ids and ErrNotFound
// for unknown ids.
func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	eb, ok := s.backend.(EntryBackend)
	if !ok {
		return fmt.Errorf("delete note %d: %w", id, ErrUnsupported)
	}

	s.cache.Lock()
	defer s.cache.Unlock()

	removed, err := eb.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}

	day, _ := s.clock()
	s.logger.Debug("note deleted", "id", id, "day", DayOf(removed.CreatedAt, s.loc).String())
	_, err = s.publishLocked(ctx, day)
	return err
}

// UpdateNote replaces the content of one entry, keeping its created_at.
func (s *Store) UpdateNote(ctx context.Context, id int64, content string) (NoteEntry, error) {
	eb, ok := s.backend.(EntryBackend)
	if !ok {
		return NoteEntry{}, fmt.Errorf("update note %d: %w", id, ErrUnsupported)
	}

	s.cache.Lock()
	defer s.cache.Unlock()

	day, now := s.clock()
	updated, err := eb.Update(ctx, id, content, now)
	if err != nil {
		return NoteEntry{}, fmt.Errorf("update note %d: %w", id, err)
	}

	if _, err := s.publishLocked(ctx, day); err != nil {
		return NoteEntry{}, err
	}
	return updated, nil
}

// ListNotes returns one page of entries, newest first.
func (s *Store) ListNotes(ctx context.Context, q ListQuery) (NotePage, error) {
	eb, ok := s.backend.(EntryBackend)
	if !ok {
		return NotePage{}, fmt.Errorf("list notes: %w", ErrUnsupported)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	notes, total, err := eb.List(ctx, q)
	if err != nil {
		return NotePage{}, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []NoteEntry{}
	}
	return NotePage{Notes: notes, TotalCount: total}, nil
}

// GetRecentNotes returns per-day Aggregates selected by policy, newest day
// first. Days without notes are omitted.
func (s *Store) GetRecentNotes(ctx context.Context, policy RecentPolicy) ([]DayNote, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	today, now := s.clock()
	if policy.Kind == PolicyRollingHours {
		return s.recentByHours(ctx, now, policy.Hours)
	}

	var out []DayNote
	for off := policy.From; off <= policy.To; off++ {
		day := today.AddDays(-off)

		var (
			text string
			err  error
		)
		if off == 0 {
			text, err = s.ReadToday(ctx)
		} else {
			text, err = s.backend.Read(ctx, day)
		}
		if err != nil {
			return nil, fmt.Errorf("recent notes %s: %w", day, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, DayNote{Day: day, Date: day.String(), Content: text, Lines: Lines(text)})
	}
	return out, nil
}

func (s *Store) recentByHours(ctx context.Context, now time.Time, hours int) ([]DayNote, error) {
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	entries, err := s.backend.QueryRange(ctx, cutoff, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("recent notes since %s: %w", cutoff.Format(time.RFC3339), err)
	}

	groups := make(map[Day][]NoteEntry)
	for _, e := range entries {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		day := DayOf(e.CreatedAt, s.loc)
		groups[day] = append(groups[day], e)
	}

	days := make([]Day, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[j].Before(days[i]) })

	out := make([]DayNote, 0, len(days))
	for _, day := range days {
		text := EntriesToText(groups[day], s.loc)
		out = append(out, DayNote{
			Day:     day,
			Date:    day.String(),
			Content: text,
			Lines:   Lines(text),
			Entries: groups[day],
		})
	}
	return out, nil
}

// Refresh reloads today's Aggregate after an external change and notifies
// only when the text differs from the cached one.
func (s *Store) Refresh(ctx context.Context) (string, error) {
	s.cache.Lock()
	defer s.cache.Unlock()

	day, _ := s.clock()
	prev, cached := s.cache.Snapshot()

	text, err := s.backend.Read(ctx, day)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	s.cache.set(CacheEntry{Text: text, Day: day})

	if !cached || prev.Day != day || prev.Text != text {
		s.notifier.Notify(ctx, s.targets, text)
	}
	return text, nil
}

// Follow refreshes the store for every event that touches today until ctx
// is done or events is closed.
func (s *Store) Follow(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if e.Day != s.Today() {
				continue
			}
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error("refresh after external change failed", "event", e.String(), "error", err)
			}
		}
	}
}

// publishLocked recomputes the Aggregate for day, stores it in the cache and
// broadcasts it. The durable write has already succeeded; if the re-read
// fails the cache is cleared so the next read goes to the backend.
func (s *Store) publishLocked(ctx context.Context, day Day) (string, error) {
	text, err := s.backend.Read(ctx, day)
	if err != nil {
		s.cache.set(CacheEntry{})
		return "", fmt.Errorf("reload %s: %w", day, err)
	}
	s.cache.set(CacheEntry{Text: text, Day: day})
	s.notifier.Notify(ctx, s.targets, text)
	return text, nil
}
