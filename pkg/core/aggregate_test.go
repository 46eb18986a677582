package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/dailynotes/pkg/core"
)

func TestEntriesToText(t *testing.T) {
	base := time.Date(2024, time.March, 1, 9, 5, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []core.NoteEntry
		want    string
	}{
		{name: "Empty", entries: nil, want: ""},
		{
			name: "Ascending by created_at",
			entries: []core.NoteEntry{
				{ID: 2, Content: "Call Bob", CreatedAt: base.Add(5 * time.Minute)},
				{ID: 1, Content: "Buy milk", CreatedAt: base},
			},
			want: "[09:05] Buy milk\n[09:10] Call Bob",
		},
		{
			name: "Ties broken by id",
			entries: []core.NoteEntry{
				{ID: 7, Content: "b", CreatedAt: base},
				{ID: 3, Content: "a", CreatedAt: base},
			},
			want: "[09:05] a\n[09:05] b",
		},
		{
			name: "Ties without id keep input order",
			entries: []core.NoteEntry{
				{Content: "first", CreatedAt: base},
				{Content: "second", CreatedAt: base},
			},
			want: "[09:05] first\n[09:05] second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.EntriesToText(tt.entries, time.UTC))
		})
	}
}

func TestEntriesToText_LocalTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	entries := []core.NoteEntry{{Content: "x", CreatedAt: time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)}}
	assert.Equal(t, "[09:00] x", core.EntriesToText(entries, loc))
}

func TestTextToContents(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "Empty", in: "", want: nil},
		{name: "Blank lines dropped", in: "\n  \n\t\n", want: nil},
		{name: "Prefix stripped", in: "[09:05] Buy milk\n[09:10]   Call Bob  ", want: []string{"Buy milk", "Call Bob"}},
		{name: "Dated prefix stripped", in: "[01.03 09:05] Buy milk", want: []string{"Buy milk"}},
		{name: "No closing bracket kept", in: "[unfinished thought", want: []string{"[unfinished thought"}},
		{name: "Bracket not at start kept", in: "see [1] later", want: []string{"see [1] later"}},
		{name: "Only first bracket removed", in: "[a] [b] c", want: []string{"[b] c"}},
		{name: "CRLF tolerated", in: "[09:05] one\r\n[09:06] two\r\n", want: []string{"one", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.TextToContents(tt.in))
		})
	}
}

func TestClockOf(t *testing.T) {
	h, m, ok := core.ClockOf("09:05")
	assert.True(t, ok)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	h, m, ok = core.ClockOf("01.03 23:59")
	assert.True(t, ok)
	assert.Equal(t, 23, h)
	assert.Equal(t, 59, m)

	_, _, ok = core.ClockOf("not a time")
	assert.False(t, ok)
	_, _, ok = core.ClockOf("")
	assert.False(t, ok)
}

func TestDay(t *testing.T) {
	d, err := core.ParseDay("2024-02-28")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2023-12-31", core.Day{Year: 2024, Month: time.January, Day: 1}.AddDays(-1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))

	start, end := d.Bounds(time.UTC)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, err = core.ParseDay("28/02/2024")
	assert.Error(t, err)
}
