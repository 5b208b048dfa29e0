// Package dateutil holds the calendar arithmetic shared by the reporting code.
// All values are normalised to UTC.
package dateutil

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

var layouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", DayLayout}

// Parse accepts a calendar date or an RFC 3339 timestamp.
func Parse(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ParseOptional returns nil for an empty string.
func ParseOptional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay is the last millisecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Millisecond)
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// WeekBounds returns the Sunday 00:00 and Saturday 23:59:59.999 enclosing ref.
func WeekBounds(ref time.Time) (time.Time, time.Time) {
	start := StartOfDay(ref).AddDate(0, 0, -int(ref.UTC().Weekday()))
	return start, EndOfDay(start.AddDate(0, 0, 6))
}

// MonthsBefore subtracts n calendar months from t.
func MonthsBefore(t time.Time, n int) time.Time {
	return t.UTC().AddDate(0, -n, 0)
}

func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParsePtr is ParseOptional for optional DTO fields.
func ParsePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return ParseOptional(*s)
}
