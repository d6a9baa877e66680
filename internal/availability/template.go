// Package availability manages each doctor's recurring weekly template: the
// set of 30-minute time-of-day marks per weekday the doctor is willing to see
// patients.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// SlotMinutes is the scheduling grid size. Every template mark and every
// appointment interval is exactly one grid step long.
const SlotMinutes = 30

var (
	// ErrInvalidTemplate reports a template with off-grid marks, marks outside
	// the clinic window, duplicate marks, or unrecognized weekday keys.
	ErrInvalidTemplate = errors.New("availability: invalid template")

	// ErrNotOwner reports an attempt to edit another doctor's template.
	ErrNotOwner = errors.New("availability: requesting user does not own this template")
)

// Window is the clinic-wide bookable time-of-day window, e.g. 09:00-17:00.
// Marks must start at or after Open and end at or before Close.
type Window struct {
	Open  string // "HH:MM"
	Close string // "HH:MM"
}

// Bounds returns the window as minutes since local midnight.
func (w Window) Bounds() (open, close int, err error) {
	open, err = parseClock(w.Open)
	if err != nil {
		return 0, 0, fmt.Errorf("availability: window open: %w", err)
	}
	close, err = parseClock(w.Close)
	if err != nil {
		return 0, 0, fmt.Errorf("availability: window close: %w", err)
	}
	if open >= close {
		return 0, 0, fmt.Errorf("availability: window open %s is not before close %s", w.Open, w.Close)
	}
	return open, close, nil
}

// Weekly is a doctor's full weekly template. The JSON field names match the
// wire format used by the availability editor (capitalized day names).
type Weekly struct {
	Monday    []string `json:"Monday"`
	Tuesday   []string `json:"Tuesday"`
	Wednesday []string `json:"Wednesday"`
	Thursday  []string `json:"Thursday"`
	Friday    []string `json:"Friday"`
	Saturday  []string `json:"Saturday"`
	Sunday    []string `json:"Sunday"`
}

// DayNames lists the recognized weekday keys in template order.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var dayByName = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

// ForWeekday returns the marks for one weekday. A day with no entry is an
// empty set, never an error.
func (w Weekly) ForWeekday(d time.Weekday) []string {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return nil
	}
}

// ParseMark validates a single grid mark and returns it as minutes since
// local midnight. The mark must be zero-padded "HH:MM" with minute 00 or 30.
func ParseMark(s string) (int, error) {
	m, err := parseClock(s)
	if err != nil {
		return 0, err
	}
	if m%SlotMinutes != 0 {
		return 0, fmt.Errorf("%w: mark %q is off the %d-minute grid", ErrInvalidTemplate, s, SlotMinutes)
	}
	return m, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed time %q", ErrInvalidTemplate, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewWeekly builds a validated template from a weekday-name-to-marks map, the
// exact shape the replace endpoint receives. Marks are deduplicated and
// sorted; unknown weekday keys fail the whole template.
func NewWeekly(days map[string][]string, win Window) (Weekly, error) {
	open, close, err := win.Bounds()
	if err != nil {
		return Weekly{}, err
	}

	var w Weekly
	for name, marks := range days {
		if _, ok := dayByName[name]; !ok {
			return Weekly{}, fmt.Errorf("%w: unrecognized weekday %q", ErrInvalidTemplate, name)
		}
		cleaned, err := cleanMarks(name, marks, open, close)
		if err != nil {
			return Weekly{}, err
		}
		switch name {
		case "Monday":
			w.Monday = cleaned
		case "Tuesday":
			w.Tuesday = cleaned
		case "Wednesday":
			w.Wednesday = cleaned
		case "Thursday":
			w.Thursday = cleaned
		case "Friday":
			w.Friday = cleaned
		case "Saturday":
			w.Saturday = cleaned
		case "Sunday":
			w.Sunday = cleaned
		}
	}
	return w, nil
}

func cleanMarks(day string, marks []string, open, close int) ([]string, error) {
	if len(marks) == 0 {
		return []string{}, nil
	}
	seen := make(map[int]string, len(marks))
	minutes := make([]int, 0, len(marks))
	for _, s := range marks {
		m, err := ParseMark(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", day, err)
		}
		if m < open || m+SlotMinutes > close {
			return nil, fmt.Errorf("%w: %s mark %q is outside the clinic window", ErrInvalidTemplate, day, s)
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = s
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)
	out := make([]string, len(minutes))
	for i, m := range minutes {
		out[i] = fmt.Sprintf("%02d:%02d", m/60, m%60)
	}
	return out, nil
}

// Validate re-checks a stored template against the clinic window. Used on the
// read path so a template written by an older deployment cannot silently feed
// bad marks into slot derivation.
func (w Weekly) Validate(win Window) error {
	open, close, err := win.Bounds()
	if err != nil {
		return err
	}
	for _, name := range DayNames {
		if _, err := cleanMarks(name, w.ForWeekday(dayByName[name]), open, close); err != nil {
			return err
		}
	}
	return nil
}
