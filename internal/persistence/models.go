package persistence

import (
	"time"

	"github.com/example/meeting-coordinator/internal/application"
)

// DecisionRecord is the storage shape of a scheduling decision. Slot times
// are nil for infeasible decisions; list fields are stored as JSON columns.
type DecisionRecord struct {
	ID              string
	RequestID       string
	SlotStart       *time.Time
	SlotEnd         *time.Time
	Participants    []string
	Unavailable     []string
	Provenance      string
	DurationMinutes int
	Topic           string
	Priority        string
	Diagnostics     []string
	Degraded        bool
	ElapsedMillis   int64
	CreatedAt       time.Time
}

// NewDecisionRecord converts a finished decision into its storage shape.
func NewDecisionRecord(id string, decision application.SchedulingDecision) DecisionRecord {
	record := DecisionRecord{
		ID:              id,
		RequestID:       decision.RequestID,
		Participants:    decision.Participants,
		Unavailable:     decision.Unavailable,
		Provenance:      string(decision.Provenance),
		DurationMinutes: decision.DurationMinutes,
		Topic:           decision.Topic,
		Priority:        string(decision.Priority),
		Diagnostics:     decision.Diagnostics,
		Degraded:        decision.Degraded,
		ElapsedMillis:   decision.Elapsed.Milliseconds(),
		CreatedAt:       decision.CreatedAt.UTC(),
	}
	if decision.Slot != nil {
		start := decision.Slot.Start.UTC()
		end := decision.Slot.End.UTC()
		record.SlotStart = &start
		record.SlotEnd = &end
	}
	return record
}

// ToDecision converts a stored record back to the application shape.
func (r DecisionRecord) ToDecision() application.SchedulingDecision {
	decision := application.SchedulingDecision{
		RequestID:       r.RequestID,
		Participants:    r.Participants,
		Unavailable:     r.Unavailable,
		Provenance:      application.Provenance(r.Provenance),
		DurationMinutes: r.DurationMinutes,
		Topic:           r.Topic,
		Priority:        application.Priority(r.Priority),
		Diagnostics:     r.Diagnostics,
		Degraded:        r.Degraded,
		Elapsed:         time.Duration(r.ElapsedMillis) * time.Millisecond,
		CreatedAt:       r.CreatedAt,
	}
	if r.SlotStart != nil && r.SlotEnd != nil {
		decision.Slot = &application.ChosenSlot{Start: *r.SlotStart, End: *r.SlotEnd}
	}
	return decision
}
