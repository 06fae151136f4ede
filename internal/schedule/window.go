package schedule

import (
	"strings"
	"time"
)

// WorkingHours bounds the hours of day considered schedulable. The start hour
// is inclusive, the end hour exclusive; both are interpreted in Location.
type WorkingHours struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// DefaultWorkingHours mirrors a standard 09:00-18:00 business day in UTC.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{StartHour: 9, EndHour: 18, Location: time.UTC}
}

func (wh WorkingHours) location() *time.Location {
	if wh.Location == nil {
		return time.UTC
	}
	return wh.Location
}

// Contains reports whether t falls inside working hours on a business day.
func (wh WorkingHours) Contains(t time.Time) bool {
	local := t.In(wh.location())
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	return local.Hour() >= wh.StartHour && local.Hour() < wh.EndHour
}

// StretchesWithin expands the window into per-business-day working-hour
// stretches, clipped to the window. Weekend days produce no stretch.
func (wh WorkingHours) StretchesWithin(window Interval) []Interval {
	loc := wh.location()
	stretches := make([]Interval, 0, 8)

	day := window.Start.In(loc)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	for day.Before(window.End) {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			stretch := Interval{
				Start: day.Add(time.Duration(wh.StartHour) * time.Hour),
				End:   day.Add(time.Duration(wh.EndHour) * time.Hour),
			}
			if clipped := stretch.Clip(window); !clipped.IsZero() {
				stretches = append(stretches, clipped)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	if len(stretches) == 0 {
		return nil
	}
	return stretches
}

// NextBusinessDay returns the first weekday strictly after t, at midnight in loc.
func NextBusinessDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// weekdayNames is ordered so that requests naming several days resolve to the
// earliest named day of the week deterministically.
var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// DeriveWindow converts a free-text day constraint ("tomorrow", "next week",
// "thursday", ...) into the calendar lookup window. Unknown or empty
// constraints default to the next lookaheadDays days starting tomorrow.
func DeriveWindow(now time.Time, constraint string, lookaheadDays int, loc *time.Location) Interval {
	if loc == nil {
		loc = time.UTC
	}
	if lookaheadDays <= 0 {
		lookaheadDays = 7
	}

	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	lower := strings.ToLower(constraint)

	switch {
	case strings.Contains(lower, "next week"):
		// Start from next Monday.
		daysAhead := (int(time.Monday) - int(local.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		start := midnight.AddDate(0, 0, daysAhead)
		return Interval{Start: start, End: start.AddDate(0, 0, 7)}
	case strings.Contains(lower, "tomorrow"):
		start := midnight.AddDate(0, 0, 1)
		return Interval{Start: start, End: start.AddDate(0, 0, 1)}
	case strings.Contains(lower, "today"):
		return Interval{Start: local, End: midnight.AddDate(0, 0, 1)}
	case strings.Contains(lower, "this week"):
		daysUntilSunday := (int(time.Sunday) - int(local.Weekday()) + 7) % 7
		if daysUntilSunday == 0 {
			daysUntilSunday = 7
		}
		return Interval{Start: local, End: midnight.AddDate(0, 0, daysUntilSunday+1)}
	}

	for _, entry := range weekdayNames {
		if !strings.Contains(lower, entry.name) {
			continue
		}
		daysAhead := (int(entry.day) - int(local.Weekday()) + 7) % 7
		if daysAhead == 0 {
			// The named day is today; schedule for next week's occurrence.
			daysAhead = 7
		}
		start := midnight.AddDate(0, 0, daysAhead)
		return Interval{Start: start, End: start.AddDate(0, 0, 1)}
	}

	start := midnight.AddDate(0, 0, 1)
	return Interval{Start: start, End: start.AddDate(0, 0, lookaheadDays)}
}
