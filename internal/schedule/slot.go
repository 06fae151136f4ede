package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Preference is an optional time-of-day preference extracted from the request
// ("thursday at 2pm"). Hour and Minute are interpreted in the working-hours
// location.
type Preference struct {
	Hour   int
	Minute int
	Valid  bool
}

// Result is the outcome of slot selection. When Feasible is false the slot is
// zero and Diagnostics names the binding constraint.
type Result struct {
	Slot        Interval
	Feasible    bool
	Diagnostics []string
}

// FindSlot selects the best meeting slot of exactly duration length within
// window, avoiding every busy interval and respecting working hours.
//
// Candidate gaps are ranked deterministically: earlier calendar day first;
// within a day, proximity of the gap start to the stated time-of-day
// preference; remaining ties broken by earliest start. The chosen slot is the
// leading sub-interval of the top-ranked gap. Gaps that begin before now are
// advanced to now before ranking.
func FindSlot(busy []Interval, duration time.Duration, pref Preference, hours WorkingHours, window Interval, now time.Time) Result {
	if duration <= 0 {
		return Result{Diagnostics: []string{"meeting duration must be positive"}}
	}

	merged := Normalize(busy, window)
	stretches := hours.StretchesWithin(window)
	if len(stretches) == 0 {
		return Result{Diagnostics: []string{fmt.Sprintf(
			"no working-hours time within window %s – %s",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))}}
	}

	loc := hours.location()
	type candidate struct {
		gap       Interval
		day       time.Time
		proximity time.Duration
	}
	candidates := make([]candidate, 0, len(stretches))

	for _, stretch := range stretches {
		for _, gap := range Complement(merged, stretch) {
			if gap.Start.Before(now) {
				gap.Start = now
			}
			if gap.Duration() < duration {
				continue
			}

			local := gap.Start.In(loc)
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
			proximity := time.Duration(0)
			if pref.Valid {
				preferred := day.Add(time.Duration(pref.Hour)*time.Hour + time.Duration(pref.Minute)*time.Minute)
				// A gap spanning the preferred instant yields a slot starting
				// exactly there, provided the remainder still fits.
				if preferred.After(gap.Start) && !preferred.Add(duration).After(gap.End) {
					gap.Start = preferred
				}
				proximity = gap.Start.Sub(preferred)
				if proximity < 0 {
					proximity = -proximity
				}
			}
			candidates = append(candidates, candidate{gap: gap, day: day, proximity: proximity})
		}
	}

	if len(candidates) == 0 {
		days := int(window.End.Sub(window.Start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		return Result{Diagnostics: []string{fmt.Sprintf(
			"no common free window >= %dmin within %d days", int(duration.Minutes()), days)}}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].day.Equal(candidates[j].day) {
			return candidates[i].day.Before(candidates[j].day)
		}
		if candidates[i].proximity != candidates[j].proximity {
			return candidates[i].proximity < candidates[j].proximity
		}
		return candidates[i].gap.Start.Before(candidates[j].gap.Start)
	})

	best := candidates[0].gap
	return Result{
		Feasible: true,
		Slot:     Interval{Start: best.Start, End: best.Start.Add(duration)},
	}
}
