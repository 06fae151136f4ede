package application

import (
	"time"

	"github.com/example/meeting-coordinator/internal/schedule"
)

// SchedulingRequest is the validated inbound meeting request. It is immutable
// once received; every field is an echo of what the caller sent.
type SchedulingRequest struct {
	ID        string
	Timestamp time.Time
	Organizer string
	Attendees []string
	Subject   string
	Body      string
	Location  string
}

// Provenance records which extraction strategy produced an intent.
type Provenance string

const (
	// ProvenanceLLMStrict is the strict-JSON parse of the model completion.
	ProvenanceLLMStrict Provenance = "llm-strategy-1"
	// ProvenanceLLMTolerant is the fence-stripping, brace-matching parse.
	ProvenanceLLMTolerant Provenance = "llm-strategy-2"
	// ProvenanceLLMFields is per-field regex extraction from the raw completion.
	ProvenanceLLMFields Provenance = "llm-strategy-3"
	// ProvenanceRegexFallback bypasses the model and parses the request text.
	ProvenanceRegexFallback Provenance = "regex-fallback"
	// ProvenanceEmergencyDefault is the fixed last-resort intent.
	ProvenanceEmergencyDefault Provenance = "emergency-default"
)

// Priority classifies how urgently the meeting was requested.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ExtractedIntent is the structured scheduling intent distilled from the
// request text. It is created once per strategy attempt and never mutated; a
// failed strategy yields a fresh candidate, never a patch.
type ExtractedIntent struct {
	DurationMinutes int
	DayConstraint   string
	Preference      schedule.Preference
	Participants    []string
	Topic           string
	Priority        Priority
	Provenance      Provenance
	Diagnostics     []string
}

// Duration returns the meeting length as a time.Duration.
func (i ExtractedIntent) Duration() time.Duration {
	return time.Duration(i.DurationMinutes) * time.Minute
}

// ParticipantAvailability is one participant's normalized calendar view over
// the requested window. Known is false when the fetch failed; such
// participants are treated as unconstrained (optimistic policy) and are named
// in the decision diagnostics.
type ParticipantAvailability struct {
	Busy  []schedule.Interval
	Known bool
}

// ChosenSlot is the concrete meeting time selected by the resolver.
type ChosenSlot struct {
	Start time.Time
	End   time.Time
}

// SchedulingDecision is the terminal artifact returned to the caller. A nil
// Slot signals that no feasible slot was found; Diagnostics then names the
// binding constraint. Degraded marks best-effort decisions produced after the
// deadline forced a short-circuit.
type SchedulingDecision struct {
	RequestID       string
	Slot            *ChosenSlot
	Participants    []string
	Unavailable     []string
	Provenance      Provenance
	DurationMinutes int
	Topic           string
	Priority        Priority
	Diagnostics     []string
	Degraded        bool
	Elapsed         time.Duration
	CreatedAt       time.Time
}

// Feasible reports whether the decision carries a concrete slot.
func (d SchedulingDecision) Feasible() bool {
	return d.Slot != nil
}
