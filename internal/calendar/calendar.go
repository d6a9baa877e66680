// Package calendar is the single source of truth for converting between
// absolute instants and clinic-local civil dates. All date reasoning in the
// scheduling engine goes through a named-timezone conversion here; nothing
// else in the codebase is allowed to do UTC day arithmetic.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate reports a civil date that does not exist, such as February 30.
var ErrInvalidDate = errors.New("calendar: invalid date")

// DateKey is a clinic-local calendar date with no time-of-day or timezone
// component.
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDateKey validates and constructs a DateKey.
func NewDateKey(year int, month time.Month, day int) (DateKey, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return DateKey{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return DateKey{Year: year, Month: month, Day: day}, nil
}

// ParseDateKey parses a "YYYY-MM-DD" string into a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DateKey{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String formats the key as "YYYY-MM-DD".
func (k DateKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// AddDays performs civil-date arithmetic. The math runs in UTC where days are
// uniformly 24 hours, so the result is independent of any DST transition in
// the clinic timezone.
func (k DateKey) AddDays(n int) DateKey {
	t := time.Date(k.Year, k.Month, k.Day+n, 0, 0, 0, 0, time.UTC)
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Weekday returns the day of the week for the civil date.
func (k DateKey) Weekday() time.Weekday {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// IsZero reports whether the key is the zero value.
func (k DateKey) IsZero() bool {
	return k == DateKey{}
}

// Calendar converts between instants and clinic-local civil dates for one
// fixed named timezone.
type Calendar struct {
	loc *time.Location
}

// New loads the named clinic timezone, e.g. "America/New_York".
func New(zone string) (*Calendar, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("calendar: load timezone %q: %w", zone, err)
	}
	return &Calendar{loc: loc}, nil
}

// Location returns the clinic timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DateOf returns the clinic-local calendar date containing the instant,
// using the zone's actual offset at that instant.
func (c *Calendar) DateOf(t time.Time) DateKey {
	local := t.In(c.loc)
	return DateKey{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// Today returns the clinic-local date for the given current instant.
func (c *Calendar) Today(now time.Time) DateKey {
	return c.DateOf(now)
}

// DayBounds returns the instant range [local 00:00, next local 00:00) for the
// civil date. On DST transition days the span is 23 or 25 hours; both bounds
// are exact local midnights.
func (c *Calendar) DayBounds(k DateKey) (start, end time.Time) {
	start = time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, c.loc)
	end = time.Date(k.Year, k.Month, k.Day+1, 0, 0, 0, 0, c.loc)
	return start, end
}

// At returns the instant at the given clinic-local time of day on the civil
// date.
func (c *Calendar) At(k DateKey, hour, minute int) time.Time {
	return time.Date(k.Year, k.Month, k.Day, hour, minute, 0, 0, c.loc)
}
