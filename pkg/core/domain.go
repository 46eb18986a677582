// Package core holds the daily note domain: entries, day buckets, the storage
// port and the Store that coordinates them.
package core

import (
	"fmt"
	"time"
)

// DayLayout is the ISO calendar date layout used to key day buckets.
const DayLayout = "2006-01-02"

// NoteEntry is one discrete, timestamped note record.
// ID is zero when the backend has no per-entry identity (flat files).
type NoteEntry struct {
	ID             int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Content        string    `json:"content" yaml:"content"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
	IsQuickCapture bool      `json:"is_quick_capture" yaml:"is_quick_capture"`
}

// Day is a local calendar date. All entries sharing a Day form that day's note.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the bucket the instant t falls into in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses an ISO calendar date (2006-01-02).
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String renders the bucket as 2006-01-02.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero bucket.
func (d Day) IsZero() bool {
	return d == Day{}
}

// AddDays returns the bucket n calendar days away from d.
func (d Day) AddDays(n int) Day {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Bounds returns the half-open instant range [start, end) covered by d in loc.
// The range is 23 or 25 hours long on DST transition days.
func (d Day) Bounds(loc *time.Location) (start, end time.Time) {
	start = time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	end = time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc)
	return start, end
}

// Before reports whether d is an earlier calendar date than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// DayNote is one day of GetRecentNotes output.
// Entries is only populated when the backend keeps discrete rows.
type DayNote struct {
	Day     Day         `json:"-" yaml:"-"`
	Date    string      `json:"date" yaml:"date"`
	Content string      `json:"content" yaml:"content"`
	Lines   []string    `json:"lines" yaml:"lines"`
	Entries []NoteEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// ListQuery filters a page of entries, newest first.
type ListQuery struct {
	Limit  int
	Offset int
	// QuickCapture restricts the page to one provenance when non-nil.
	QuickCapture *bool
}

// DefaultListLimit applies when ListQuery.Limit is zero or negative.
const DefaultListLimit = 50

// NotePage is one page of entries plus the total count matching the filter.
type NotePage struct {
	Notes      []NoteEntry `json:"notes" yaml:"notes"`
	TotalCount int         `json:"total_count" yaml:"total_count"`
}

// EventType represents the type of change observed on a day bucket.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event is a change to a day bucket made by another writer.
type Event struct {
	Type      EventType
	Day       Day
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Day)
}
