package activity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedClock, s)
		}
		vals[i] = n
	}
	t := TimeOfDay{Hour: vals[0], Minute: vals[1], Second: vals[2]}
	if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}
	return t, nil
}

// On returns the instant of t on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Interval is one row of an activity protocol. Only Label, Start and End take
// part in tagging; the remaining columns are carried for diagnostics.
type Interval struct {
	Seq    string
	Label  string
	Start  TimeOfDay
	End    TimeOfDay
	Length string
	Grade  string
	Note   string
}

// RowIssue describes a protocol row that was skipped.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Span is an interval anchored to absolute instants, covering [Start, End).
type Span struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End).
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Overlap names two anchored spans that cover a common instant.
type Overlap struct {
	First  Span `json:"first"`
	Second Span `json:"second"`
}
