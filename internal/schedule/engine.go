// Package schedule derives the bookable slot list for a doctor and a civil
// date from the weekly template and the booked-interval index, applying the
// lead-time cutoff and the bounded roll-forward policy.
package schedule

import (
	"fmt"
	"time"

	"github.com/harborhealth/clinic-scheduler/internal/appointments"
	"github.com/harborhealth/clinic-scheduler/internal/availability"
	"github.com/harborhealth/clinic-scheduler/internal/calendar"
)

// Config bounds slot derivation. MinLeadTime drops slots starting sooner than
// now+lead; RollForwardLimit caps how many days past the requested date an
// automatic request may advance.
type Config struct {
	MinLeadTime      time.Duration
	RollForwardLimit int
	Window           availability.Window
}

// Request identifies one slot derivation. Automatic marks a default date
// selection (today); only automatic requests roll forward. A manually
// navigated date always resolves to itself, even when empty.
type Request struct {
	DoctorID  string
	Date      calendar.DateKey
	Automatic bool
}

// Slot is one 30-minute bookable unit. Label is the clinic-local 12-hour
// display time.
type Slot struct {
	Start     time.Time
	End       time.Time
	Label     string
	Available bool
}

// Result is the derived schedule. ResolvedDate may be later than the
// requested date when roll-forward applied.
type Result struct {
	DoctorID     string
	ResolvedDate calendar.DateKey
	Slots        []Slot
	RolledDays   int
}

// ComputeSlots derives the slot list for the request. booked must hold every
// non-cancelled interval for the doctor across the full roll-forward range;
// now is injected so results are deterministic.
//
// Too-soon slots are dropped from the output entirely, not shown as booked.
// The lead-time boundary is inclusive: a slot starting exactly at
// now+MinLeadTime stays. An automatic request advances day by day until some
// slot is available, up to RollForwardLimit days; on exhaustion it returns
// the requested date with no slots rather than teleporting further.
func ComputeSlots(cal *calendar.Calendar, req Request, tmpl availability.Weekly, booked []appointments.Interval, now time.Time, cfg Config) (Result, error) {
	cutoff := now.Add(cfg.MinLeadTime)

	for offset := 0; ; offset++ {
		date := req.Date.AddDays(offset)
		slots, err := daySlots(cal, tmpl, booked, date, cutoff)
		if err != nil {
			return Result{}, err
		}

		if hasAvailable(slots) || !req.Automatic {
			return Result{DoctorID: req.DoctorID, ResolvedDate: date, Slots: slots, RolledDays: offset}, nil
		}
		if offset >= cfg.RollForwardLimit {
			return Result{DoctorID: req.DoctorID, ResolvedDate: req.Date, Slots: []Slot{}}, nil
		}
	}
}

// daySlots expands one civil date's template marks into slots. Marks are
// stored sorted, so the output is already ascending by start.
func daySlots(cal *calendar.Calendar, tmpl availability.Weekly, booked []appointments.Interval, date calendar.DateKey, cutoff time.Time) ([]Slot, error) {
	marks := tmpl.ForWeekday(date.Weekday())
	slots := make([]Slot, 0, len(marks))
	for _, mark := range marks {
		minutes, err := availability.ParseMark(mark)
		if err != nil {
			return nil, fmt.Errorf("schedule: template mark for %s: %w", date, err)
		}
		start := cal.At(date, minutes/60, minutes%60)
		if start.Before(cutoff) {
			continue
		}
		end := start.Add(availability.SlotMinutes * time.Minute)
		slots = append(slots, Slot{
			Start:     start,
			End:       end,
			Label:     start.In(cal.Location()).Format("3:04 PM"),
			Available: !anyOverlap(booked, start, end),
		})
	}
	return slots, nil
}

func anyOverlap(booked []appointments.Interval, start, end time.Time) bool {
	for _, b := range booked {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func hasAvailable(slots []Slot) bool {
	for _, s := range slots {
		if s.Available {
			return true
		}
	}
	return false
}
