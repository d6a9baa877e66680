package calendar

import (
	"errors"
	"testing"
	"time"
)

func newTestCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := New("America/New_York")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cal
}

func TestNewDateKeyRejectsImpossibleDates(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
		valid bool
	}{
		{2026, time.February, 28, true},
		{2026, time.February, 29, false}, // not a leap year
		{2028, time.February, 29, true},  // leap year
		{2026, time.April, 31, false},
		{2026, time.June, 0, false},
	}
	for _, tt := range tests {
		_, err := NewDateKey(tt.year, tt.month, tt.day)
		if tt.valid && err != nil {
			t.Errorf("NewDateKey(%d,%d,%d) unexpected error: %v", tt.year, tt.month, tt.day, err)
		}
		if !tt.valid {
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("NewDateKey(%d,%d,%d) expected ErrInvalidDate, got %v", tt.year, tt.month, tt.day, err)
			}
		}
	}
}

func TestParseDateKey(t *testing.T) {
	k, err := ParseDateKey("2026-08-31")
	if err != nil {
		t.Fatalf("ParseDateKey: %v", err)
	}
	if k.Year != 2026 || k.Month != time.August || k.Day != 31 {
		t.Errorf("unexpected key: %+v", k)
	}
	if k.String() != "2026-08-31" {
		t.Errorf("String() = %s", k.String())
	}

	if _, err := ParseDateKey("08/31/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate for bad format, got %v", err)
	}
	if _, err := ParseDateKey("2026-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate for Feb 30, got %v", err)
	}
}

func TestDateOfUsesClinicOffset(t *testing.T) {
	cal := newTestCalendar(t)

	// 2026-03-09 03:00 UTC is 2026-03-08 23:00 in New York (EDT, -4, after
	// the spring-forward that morning).
	instant := time.Date(2026, time.March, 9, 3, 0, 0, 0, time.UTC)
	got := cal.DateOf(instant)
	if got.String() != "2026-03-08" {
		t.Errorf("DateOf = %s, want 2026-03-08", got)
	}

	// One hour later it is past New York midnight.
	got = cal.DateOf(instant.Add(time.Hour))
	if got.String() != "2026-03-09" {
		t.Errorf("DateOf = %s, want 2026-03-09", got)
	}
}

func TestDayBoundsSpringForward(t *testing.T) {
	cal := newTestCalendar(t)

	// US DST starts 2026-03-08: 02:00 EST jumps to 03:00 EDT, a 23-hour day.
	k, err := NewDateKey(2026, time.March, 8)
	if err != nil {
		t.Fatalf("NewDateKey: %v", err)
	}
	start, end := cal.DayBounds(k)
	if got := end.Sub(start); got != 23*time.Hour {
		t.Errorf("spring-forward day length = %s, want 23h", got)
	}
	if start.Hour() != 0 || end.Hour() != 0 {
		t.Errorf("bounds are not local midnights: %s .. %s", start, end)
	}
}

func TestDayBoundsFallBack(t *testing.T) {
	cal := newTestCalendar(t)

	// US DST ends 2026-11-01, a 25-hour day.
	k, err := NewDateKey(2026, time.November, 1)
	if err != nil {
		t.Fatalf("NewDateKey: %v", err)
	}
	start, end := cal.DayBounds(k)
	if got := end.Sub(start); got != 25*time.Hour {
		t.Errorf("fall-back day length = %s, want 25h", got)
	}
}

func TestAddDaysCrossesMonthAndDST(t *testing.T) {
	k, err := NewDateKey(2026, time.March, 7)
	if err != nil {
		t.Fatalf("NewDateKey: %v", err)
	}

	// Crossing the spring-forward boundary must still advance exactly one
	// civil day at a time.
	if got := k.AddDays(1).String(); got != "2026-03-08" {
		t.Errorf("AddDays(1) = %s", got)
	}
	if got := k.AddDays(2).String(); got != "2026-03-09" {
		t.Errorf("AddDays(2) = %s", got)
	}
	if got := k.AddDays(-7).String(); got != "2026-02-28" {
		t.Errorf("AddDays(-7) = %s", got)
	}

	// Month and year rollover.
	nye, _ := NewDateKey(2026, time.December, 31)
	if got := nye.AddDays(1).String(); got != "2027-01-01" {
		t.Errorf("AddDays over new year = %s", got)
	}
}

func TestWeekday(t *testing.T) {
	k, _ := NewDateKey(2026, time.August, 31)
	if k.Weekday() != time.Monday {
		t.Errorf("2026-08-31 weekday = %s, want Monday", k.Weekday())
	}
}

func TestAtBuildsClinicLocalInstant(t *testing.T) {
	cal := newTestCalendar(t)
	k, _ := NewDateKey(2026, time.August, 31)

	instant := cal.At(k, 9, 30)
	if instant.In(cal.Location()).Format("15:04") != "09:30" {
		t.Errorf("At produced wrong local time: %s", instant)
	}
	// August in New York is EDT (-4): 09:30 local is 13:30 UTC.
	if instant.UTC().Hour() != 13 || instant.UTC().Minute() != 30 {
		t.Errorf("At produced wrong UTC instant: %s", instant.UTC())
	}
}

func TestNewRejectsUnknownZone(t *testing.T) {
	if _, err := New("Mars/Olympus_Mons"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
