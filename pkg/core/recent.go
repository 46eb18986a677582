package core

import (
	"fmt"
	"strconv"
	"strings"
)

// PolicyKind selects how GetRecentNotes windows the history.
type PolicyKind string

const (
	// PolicyCalendarDays selects whole local calendar days by offset from today.
	PolicyCalendarDays PolicyKind = "days"
	// PolicyRollingHours selects entries created within the last N hours.
	PolicyRollingHours PolicyKind = "hours"
)

// RecentPolicy is the explicit windowing policy for GetRecentNotes.
// The zero value is invalid; build one with CalendarDays or RollingHours.
type RecentPolicy struct {
	Kind PolicyKind
	// From and To are inclusive day offsets back from today (0 is today).
	From, To int
	Hours    int
}

// CalendarDays selects the days from..to back from today, inclusive.
// CalendarDays(1, 2) is yesterday and the day before.
func CalendarDays(from, to int) RecentPolicy {
	return RecentPolicy{Kind: PolicyCalendarDays, From: from, To: to}
}

// RollingHours selects entries whose created_at is within the last hours.
func RollingHours(hours int) RecentPolicy {
	return RecentPolicy{Kind: PolicyRollingHours, Hours: hours}
}

// Validate reports whether p selects a meaningful window.
func (p RecentPolicy) Validate() error {
	switch p.Kind {
	case PolicyCalendarDays:
		if p.From < 0 || p.To < p.From {
			return fmt.Errorf("%w: day offsets %d..%d", ErrInvalidPolicy, p.From, p.To)
		}
	case PolicyRollingHours:
		if p.Hours <= 0 {
			return fmt.Errorf("%w: hours must be positive, got %d", ErrInvalidPolicy, p.Hours)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPolicy, p.Kind)
	}
	return nil
}

func (p RecentPolicy) String() string {
	if p.Kind == PolicyRollingHours {
		return fmt.Sprintf("last %dh", p.Hours)
	}
	return fmt.Sprintf("days %d..%d", p.From, p.To)
}

// ParseDayRange parses "N..M" or a single "N" into inclusive day offsets.
func ParseDayRange(s string) (from, to int, err error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "..")
	if from, err = strconv.Atoi(strings.TrimSpace(lo)); err != nil {
		return 0, 0, fmt.Errorf("%w: day range %q", ErrInvalidPolicy, s)
	}
	to = from
	if found {
		if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
			return 0, 0, fmt.Errorf("%w: day range %q", ErrInvalidPolicy, s)
		}
	}
	return from, to, nil
}
