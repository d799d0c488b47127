// Package timeutil provides date parsing and formatting for backend payloads.
// The backend emits calendar dates ("2006-01-02") for telemetry days and
// ISO-8601 timestamps with or without a zone for audit fields.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date layout used by the backend.
const DateLayout = "2006-01-02"

// layouts are tried in order by ParseTimestamp.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	DateLayout,
}

// ParseDate parses a calendar date, also accepting a full timestamp whose
// date part is then used. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse date: empty value")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return StartOfDay(t), nil
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are
// taken as UTC. An empty string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// StartOfDay returns midnight UTC of t's UTC date.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatRemaining renders a duration until a deadline as "3h12m", or
// "expired" when the deadline has passed.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
