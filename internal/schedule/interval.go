package schedule

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) time range. All interval math in this
// package assumes both endpoints are expressed in the same location; callers
// normalize to UTC before handing intervals in.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IsZero reports whether the interval carries no time range.
func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// Overlaps reports whether two half-open intervals share any instant.
// Back-to-back intervals ([9:00,10:00) and [10:00,11:00)) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Contains reports whether t falls within the half-open interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Clip restricts the interval to the supplied bounds. The zero Interval is
// returned when there is no intersection.
func (iv Interval) Clip(bounds Interval) Interval {
	start := iv.Start
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	end := iv.End
	if end.After(bounds.End) {
		end = bounds.End
	}
	if !start.Before(end) {
		return Interval{}
	}
	return Interval{Start: start, End: end}
}

// Normalize sorts the supplied intervals by start, merges overlapping and
// adjacent entries, drops empty or inverted ones, and clips the result to
// bounds when bounds is non-zero. The input slice is not modified.
//
// The output is strictly ordered and non-overlapping and covers exactly the
// same busy time as the input restricted to bounds.
func Normalize(intervals []Interval, bounds Interval) []Interval {
	cleaned := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Start.Before(iv.End) {
			continue
		}
		if !bounds.IsZero() {
			iv = iv.Clip(bounds)
			if iv.IsZero() {
				continue
			}
		}
		cleaned = append(cleaned, iv)
	}
	if len(cleaned) == 0 {
		return nil
	}

	sort.Slice(cleaned, func(i, j int) bool {
		if cleaned[i].Start.Equal(cleaned[j].Start) {
			return cleaned[i].End.Before(cleaned[j].End)
		}
		return cleaned[i].Start.Before(cleaned[j].Start)
	})

	merged := make([]Interval, 0, len(cleaned))
	current := cleaned[0]
	for _, iv := range cleaned[1:] {
		// Adjacent intervals are coalesced as well as overlapping ones.
		if !iv.Start.After(current.End) {
			if iv.End.After(current.End) {
				current.End = iv.End
			}
			continue
		}
		merged = append(merged, current)
		current = iv
	}
	merged = append(merged, current)

	return merged
}

// Complement returns the free gaps inside bounds not covered by busy. The busy
// intervals must be normalized (sorted, non-overlapping) but may extend beyond
// bounds; gaps never do.
func Complement(busy []Interval, bounds Interval) []Interval {
	if bounds.IsZero() || !bounds.Start.Before(bounds.End) {
		return nil
	}

	gaps := make([]Interval, 0, len(busy)+1)
	cursor := bounds.Start
	for _, iv := range busy {
		if !cursor.Before(bounds.End) {
			break
		}
		gapEnd := iv.Start
		if gapEnd.After(bounds.End) {
			gapEnd = bounds.End
		}
		if gapEnd.After(cursor) {
			gaps = append(gaps, Interval{Start: cursor, End: gapEnd})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if cursor.Before(bounds.End) {
		gaps = append(gaps, Interval{Start: cursor, End: bounds.End})
	}
	if len(gaps) == 0 {
		return nil
	}
	return gaps
}
