package core

import (
	"sort"
	"strings"
	"time"
)

// ClockLayout is the in-line timestamp rendered before each entry.
const ClockLayout = "15:04"

// FormatLine renders one entry line as "[HH:MM] content" in loc.
func FormatLine(at time.Time, content string, loc *time.Location) string {
	return "[" + at.In(loc).Format(ClockLayout) + "] " + content
}

// EntriesToText renders entries as an Aggregate: ascending by CreatedAt,
// ties broken by ID and then by input order, one line per entry.
func EntriesToText(entries []NoteEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return ""
	}
	sorted := make([]NoteEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	lines := make([]string, len(sorted))
	for i, e := range sorted {
		lines[i] = FormatLine(e.CreatedAt, e.Content, loc)
	}
	return strings.Join(lines, "\n")
}

// TextToContents recovers the raw content strings of an Aggregate.
// Blank lines are dropped. A line starting with "[" that has a later "]"
// loses everything up to and including that "]". Only content comes back,
// never the original instant.
func TextToContents(text string) []string {
	var out []string
	for _, line := range Lines(text) {
		if _, content, ok := ParseLine(line); ok {
			out = append(out, content)
			continue
		}
		out = append(out, line)
	}
	return out
}

// Lines splits an Aggregate into its trimmed, non-blank lines.
func Lines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ParseLine splits a bracket-prefixed line into the text inside the brackets
// and the trimmed content after the first "]". ok is false if line has no
// such prefix.
func ParseLine(line string) (prefix, content string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return "", line, false
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return "", line, false
	}
	return line[1:end], strings.TrimSpace(line[end+1:]), true
}

// ClockOf extracts the trailing HH:MM from a bracket prefix such as
// "09:05" or "01.03 09:05".
func ClockOf(prefix string) (hour, minute int, ok bool) {
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return 0, 0, false
	}
	t, err := time.Parse(ClockLayout, fields[len(fields)-1])
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
