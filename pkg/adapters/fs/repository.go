// Package fs stores each day's note as one plain text file named after the date.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/dailynotes/pkg/core"
)

const (
	// FileExt is the extension of every day file.
	FileExt = ".txt"

	// DayFilePattern matches day file names such as 2024-03-01.txt.
	DayFilePattern = "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]" + FileExt
)

// Repository implements core.Backend using one UTF-8 file per day.
type Repository struct {
	Path   string
	config Config
	index  *dayIndex

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool
	Logger    *slog.Logger
	// Location defines day boundaries when recovering instants from "[HH:MM]" prefixes.
	Location *time.Location
	// Perm is the mode of created day files. Zero means 0644.
	Perm         os.FileMode
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Perm == 0 {
		config.Perm = 0644
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		index:  newDayIndex(),
	}
}

// Initialize creates the notes directory unless MustExist is set.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("notes path does not exist: %s: %w", r.Path, core.ErrStorageUnavailable)
		}
		if err != nil {
			return storageErr("stat notes path", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("notes path is not a directory: %s: %w", r.Path, core.ErrStorageUnavailable)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return storageErr("create notes directory", err)
	}
	return nil
}

// Close implements core.Backend. Watchers stop with their context.
func (r *Repository) Close() error {
	return nil
}

// DayPath returns the file that holds day.
func (r *Repository) DayPath(day core.Day) string {
	return filepath.Join(r.Path, day.String()+FileExt)
}

// Read returns the file content for day verbatim, or "" when the file does not exist.
func (r *Repository) Read(ctx context.Context, day core.Day) (string, error) {
	data, err := os.ReadFile(r.DayPath(day))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", storageErr("read "+day.String(), err)
	}
	return string(data), nil
}

// Write overwrites day with text. The at instant is not used: the text is
// stored exactly as given.
func (r *Repository) Write(ctx context.Context, day core.Day, text string, at time.Time) error {
	if err := r.writeDay(day, text); err != nil {
		return err
	}
	r.config.Logger.Debug("day file written", "day", day.String(), "bytes", len(text))
	return nil
}

// Append adds one "[HH:MM] content" line to day with a read-modify-write of
// the whole file. Callers serialize concurrent appends.
func (r *Repository) Append(ctx context.Context, day core.Day, entry core.NoteEntry) (core.NoteEntry, error) {
	existing, err := r.Read(ctx, day)
	if err != nil {
		return core.NoteEntry{}, err
	}

	line := core.FormatLine(entry.CreatedAt, entry.Content, r.config.Location)
	existing = strings.TrimRight(existing, "\r\n")
	updated := line
	if existing != "" {
		updated = existing + "\n" + line
	}

	if err := r.writeDay(day, updated); err != nil {
		return core.NoteEntry{}, err
	}
	entry.ID = 0
	return entry, nil
}

// DeleteDay removes the file for day. A missing file is not an error.
func (r *Repository) DeleteDay(ctx context.Context, day core.Day) error {
	err := os.Remove(r.DayPath(day))
	if err != nil && !os.IsNotExist(err) {
		return storageErr("delete "+day.String(), err)
	}
	r.index.Delete(day.String() + FileExt)
	r.recordWrite()
	return nil
}

// QueryRange scans the day files overlapping [start, end) and returns their
// lines as entries. Each line's instant comes from the file date plus its
// "[HH:MM]" prefix; a line without one inherits the previous line's instant,
// or local midnight for the first line. Flat files keep minute precision only.
func (r *Repository) QueryRange(ctx context.Context, start, end time.Time) ([]core.NoteEntry, error) {
	names, err := doublestar.Glob(os.DirFS(r.Path), DayFilePattern)
	if err != nil {
		return nil, storageErr("list day files", err)
	}
	sort.Strings(names)

	var out []core.NoteEntry
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		day, err := core.ParseDay(strings.TrimSuffix(name, FileExt))
		if err != nil {
			continue
		}
		dayStart, dayEnd := day.Bounds(r.config.Location)
		if !dayEnd.After(start) || (!end.IsZero() && !dayStart.Before(end)) {
			continue
		}

		entries, err := r.dayEntries(name, day)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.CreatedAt.Before(start) || (!end.IsZero() && !e.CreatedAt.Before(end)) {
				continue
			}
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) dayEntries(name string, day core.Day) ([]core.NoteEntry, error) {
	path := filepath.Join(r.Path, name)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("stat "+name, err)
	}

	if cached, ok := r.index.Get(name, info.ModTime(), info.Size()); ok {
		return cached.Entries, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("read "+name, err)
	}

	entries := ParseDayText(day, string(data), r.config.Location)
	r.index.Set(name, &indexEntry{Entries: entries, LastModified: info.ModTime(), Size: info.Size()})
	return entries, nil
}

// ParseDayText recovers entries from the text of one day file.
func ParseDayText(day core.Day, text string, loc *time.Location) []core.NoteEntry {
	prev, _ := day.Bounds(loc)

	var entries []core.NoteEntry
	for _, line := range core.Lines(text) {
		at, content := prev, line
		if prefix, rest, ok := core.ParseLine(line); ok {
			if h, m, ok := core.ClockOf(prefix); ok {
				at = time.Date(day.Year, day.Month, day.Day, h, m, 0, 0, loc)
				content = rest
			}
		}
		prev = at
		entries = append(entries, core.NoteEntry{Content: content, CreatedAt: at, UpdatedAt: at})
	}
	return entries
}

func (r *Repository) writeDay(day core.Day, text string) error {
	name := day.String() + FileExt
	if err := replaceDayFile(r.Path, name, text, r.config.Perm); err != nil {
		return storageErr("write "+day.String(), err)
	}
	r.index.Delete(name)
	r.recordWrite()
	return nil
}

func storageErr(op string, err error) error {
	if errors.Is(err, core.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorageUnavailable, err)
}

var _ core.Backend = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
