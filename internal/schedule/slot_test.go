package schedule

import (
	"strings"
	"testing"
	"time"
)

func thursdayWindow() Interval {
	return Interval{
		Start: time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC),
	}
}

func TestFindSlotEarliestGapWithoutPreference(t *testing.T) {
	day := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	busy := []Interval{{Start: at(day, 10, 0), End: at(day, 11, 0)}}

	result := FindSlot(busy, 30*time.Minute, Preference{}, DefaultWorkingHours(), thursdayWindow(), referenceNow)
	if !result.Feasible {
		t.Fatalf("expected a feasible slot, diagnostics: %v", result.Diagnostics)
	}
	wantStart := at(day, 9, 0)
	wantEnd := at(day, 9, 30)
	if !result.Slot.Start.Equal(wantStart) || !result.Slot.End.Equal(wantEnd) {
		t.Errorf("expected slot %v-%v, got %v-%v", wantStart, wantEnd, result.Slot.Start, result.Slot.End)
	}
}

func TestFindSlotInfeasibleWhenNoCommonWindow(t *testing.T) {
	day := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	busy := []Interval{
		{Start: at(day, 9, 0), End: at(day, 17, 30)},
		{Start: at(day, 9, 0), End: at(day, 17, 45)},
	}

	result := FindSlot(busy, 30*time.Minute, Preference{}, DefaultWorkingHours(), thursdayWindow(), referenceNow)
	if result.Feasible {
		t.Fatalf("expected infeasible result, got slot %v-%v", result.Slot.Start, result.Slot.End)
	}
	if len(result.Diagnostics) == 0 || !strings.Contains(result.Diagnostics[0], "no common free window >= 30min") {
		t.Errorf("expected a binding-constraint diagnostic, got %v", result.Diagnostics)
	}
}

func TestFindSlotHonorsTimeOfDayPreference(t *testing.T) {
	result := FindSlot(nil, 30*time.Minute, Preference{Hour: 14, Valid: true}, DefaultWorkingHours(), thursdayWindow(), referenceNow)
	if !result.Feasible {
		t.Fatalf("expected a feasible slot, diagnostics: %v", result.Diagnostics)
	}
	day := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	if !result.Slot.Start.Equal(at(day, 14, 0)) {
		t.Errorf("expected slot at the preferred 14:00, got %v", result.Slot.Start)
	}
}

func TestFindSlotPreferenceFallsBackToNearestGap(t *testing.T) {
	day := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	// 14:00-18:00 is fully busy; the nearest remaining gap starts at 9:00.
	busy := []Interval{{Start: at(day, 14, 0), End: at(day, 18, 0)}}

	result := FindSlot(busy, 30*time.Minute, Preference{Hour: 14, Valid: true}, DefaultWorkingHours(), thursdayWindow(), referenceNow)
	if !result.Feasible {
		t.Fatalf("expected a feasible slot, diagnostics: %v", result.Diagnostics)
	}
	if !result.Slot.Start.Equal(at(day, 9, 0)) {
		t.Errorf("expected nearest gap at 9:00, got %v", result.Slot.Start)
	}
}

func TestFindSlotSkipsTimeBeforeNow(t *testing.T) {
	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	window := Interval{Start: day, End: day.AddDate(0, 0, 1)}
	now := at(day, 11, 15)

	result := FindSlot(nil, 30*time.Minute, Preference{}, DefaultWorkingHours(), window, now)
	if !result.Feasible {
		t.Fatalf("expected a feasible slot, diagnostics: %v", result.Diagnostics)
	}
	if result.Slot.Start.Before(now) {
		t.Errorf("slot %v starts before now %v", result.Slot.Start, now)
	}
	if !result.Slot.Start.Equal(now) {
		t.Errorf("expected slot to start at now %v, got %v", now, result.Slot.Start)
	}
}

func TestFindSlotSpansMultipleDays(t *testing.T) {
	day := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	window := Interval{Start: day, End: day.AddDate(0, 0, 5)}
	// Thursday and Friday fully busy; Saturday/Sunday skipped; Monday free.
	busy := []Interval{
		{Start: at(day, 9, 0), End: at(day, 18, 0)},
		{Start: at(day.AddDate(0, 0, 1), 9, 0), End: at(day.AddDate(0, 0, 1), 18, 0)},
	}

	result := FindSlot(busy, time.Hour, Preference{}, DefaultWorkingHours(), window, referenceNow)
	if !result.Feasible {
		t.Fatalf("expected a feasible slot, diagnostics: %v", result.Diagnostics)
	}
	monday := day.AddDate(0, 0, 4)
	if !result.Slot.Start.Equal(at(monday, 9, 0)) {
		t.Errorf("expected slot Monday 9:00, got %v", result.Slot.Start)
	}
}

func TestFindSlotStaysInsideWorkingHoursAcrossDays(t *testing.T) {
	day := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	friday := day.AddDate(0, 0, 1)
	window := Interval{Start: day, End: day.AddDate(0, 0, 2)}
	// Thursday leaves only 15 free minutes; the next busy block is on Friday.
	// The Thursday gap must end at 18:00, not run into Friday morning.
	busy := []Interval{
		{Start: at(day, 9, 0), End: at(day, 17, 45)},
		{Start: at(friday, 10, 0), End: at(friday, 11, 0)},
	}

	result := FindSlot(busy, 30*time.Minute, Preference{}, DefaultWorkingHours(), window, referenceNow)
	if !result.Feasible {
		t.Fatalf("expected a feasible slot, diagnostics: %v", result.Diagnostics)
	}
	if !result.Slot.Start.Equal(at(friday, 9, 0)) || !result.Slot.End.Equal(at(friday, 9, 30)) {
		t.Errorf("expected slot Friday 9:00-9:30, got %v-%v", result.Slot.Start, result.Slot.End)
	}
	hours := DefaultWorkingHours()
	if !hours.Contains(result.Slot.Start) || !hours.Contains(result.Slot.End.Add(-time.Minute)) {
		t.Errorf("slot %v-%v escapes working hours", result.Slot.Start, result.Slot.End)
	}
}

func TestFindSlotDurationMatchesExactly(t *testing.T) {
	result := FindSlot(nil, 45*time.Minute, Preference{}, DefaultWorkingHours(), thursdayWindow(), referenceNow)
	if !result.Feasible {
		t.Fatalf("expected a feasible slot, diagnostics: %v", result.Diagnostics)
	}
	if got := result.Slot.Duration(); got != 45*time.Minute {
		t.Errorf("expected slot duration 45m, got %v", got)
	}
}

func TestFindSlotRejectsNonPositiveDuration(t *testing.T) {
	result := FindSlot(nil, 0, Preference{}, DefaultWorkingHours(), thursdayWindow(), referenceNow)
	if result.Feasible {
		t.Fatal("expected infeasible result for zero duration")
	}
}

func TestFindSlotWeekendOnlyWindow(t *testing.T) {
	window := Interval{
		Start: time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
	}
	result := FindSlot(nil, 30*time.Minute, Preference{}, DefaultWorkingHours(), window, referenceNow)
	if result.Feasible {
		t.Fatal("expected infeasible result for a weekend-only window")
	}
	if len(result.Diagnostics) == 0 {
		t.Error("expected a diagnostic naming the constraint")
	}
}
