package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/meeting-coordinator/internal/logging"
	"github.com/example/meeting-coordinator/internal/schedule"
)

// IntentExtractor distills structured scheduling intent from request text.
// Implementations must always return a usable intent: the last strategy in
// the chain is an emergency default that cannot fail.
type IntentExtractor interface {
	Extract(ctx context.Context, text string) ExtractedIntent
}

// AvailabilityFetcher retrieves busy intervals for each participant over the
// window. The returned map has one entry per requested participant; failed
// fetches are reported with Known=false, never as a batch error.
type AvailabilityFetcher interface {
	FetchAll(ctx context.Context, participants []string, window schedule.Interval) map[string]ParticipantAvailability
}

// DecisionRecorder persists finished decisions for later inspection.
type DecisionRecorder interface {
	SaveDecision(ctx context.Context, decision SchedulingDecision) error
}

// CoordinatorConfig bounds the coordinator's time budgets and search space.
type CoordinatorConfig struct {
	// OverallDeadline caps the whole request; a best-effort decision is
	// always assembled before it lapses.
	OverallDeadline time.Duration
	// ExtractionBudget caps the extraction phase, carved from the deadline.
	ExtractionBudget time.Duration
	// FetchBudget caps the calendar fetch batch, carved from the deadline.
	FetchBudget time.Duration
	// LookaheadDays sizes the default search window when the request names
	// no day.
	LookaheadDays int
	// WorkingHours bounds schedulable hours.
	WorkingHours schedule.WorkingHours
}

func (cfg CoordinatorConfig) withDefaults() CoordinatorConfig {
	if cfg.OverallDeadline <= 0 {
		cfg.OverallDeadline = 5 * time.Second
	}
	if cfg.ExtractionBudget <= 0 || cfg.ExtractionBudget > cfg.OverallDeadline {
		cfg.ExtractionBudget = cfg.OverallDeadline / 2
	}
	if cfg.FetchBudget <= 0 || cfg.FetchBudget > cfg.OverallDeadline {
		cfg.FetchBudget = cfg.OverallDeadline / 2
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = 7
	}
	if cfg.WorkingHours.EndHour <= cfg.WorkingHours.StartHour {
		cfg.WorkingHours = schedule.DefaultWorkingHours()
	}
	return cfg
}

// Coordinator orchestrates extraction, availability retrieval and slot
// selection for one request at a time. It holds no per-request state; the
// response cache inside the extractor's client is the only shared mutable
// state between requests.
type Coordinator struct {
	extractor IntentExtractor
	fetcher   AvailabilityFetcher
	recorder  DecisionRecorder
	cfg       CoordinatorConfig
	now       func() time.Time
	logger    *slog.Logger
}

// NewCoordinator wires dependencies for scheduling operations. The recorder
// may be nil when decisions should not be persisted.
func NewCoordinator(extractor IntentExtractor, fetcher AvailabilityFetcher, recorder DecisionRecorder, cfg CoordinatorConfig, now func() time.Time) *Coordinator {
	return NewCoordinatorWithLogger(extractor, fetcher, recorder, cfg, now, nil)
}

// NewCoordinatorWithLogger wires dependencies together with a base logger.
func NewCoordinatorWithLogger(extractor IntentExtractor, fetcher AvailabilityFetcher, recorder DecisionRecorder, cfg CoordinatorConfig, now func() time.Time, logger *slog.Logger) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		extractor: extractor,
		fetcher:   fetcher,
		recorder:  recorder,
		cfg:       cfg.withDefaults(),
		now:       now,
		logger:    logging.Default(logger),
	}
}

// Handle produces a SchedulingDecision for the request. Only validation
// failures are returned as errors; every other failure mode is absorbed into
// the decision's diagnostics so the coordinator always answers.
func (c *Coordinator) Handle(ctx context.Context, req SchedulingRequest) (SchedulingDecision, error) {
	if c == nil {
		return SchedulingDecision{}, fmt.Errorf("Coordinator is nil")
	}
	started := c.now()

	req = SanitizeRequest(req)
	if vErr := ValidateRequest(req); vErr != nil {
		return SchedulingDecision{}, vErr
	}

	logger := serviceLogger(ctx, c.logger, "coordinator", "handle", "request_id", req.ID)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.OverallDeadline)
	defer cancel()

	degraded := false
	diagnostics := make([]string, 0, 4)

	// Phase 1: intent extraction. The extractor walks its own fallback chain
	// and cannot fail; a lapsed budget simply forces it down to the regex and
	// emergency strategies.
	extractCtx, extractCancel := context.WithTimeout(ctx, c.cfg.ExtractionBudget)
	intent := c.extractor.Extract(extractCtx, extractionText(req))
	extractCancel()
	diagnostics = append(diagnostics, intent.Diagnostics...)

	participants := participantUnion(req, intent)
	window := schedule.DeriveWindow(started, intent.DayConstraint, c.cfg.LookaheadDays, c.cfg.WorkingHours.Location)

	logger.InfoContext(ctx, "intent extracted",
		"provenance", intent.Provenance,
		"duration_minutes", intent.DurationMinutes,
		"participants", len(participants),
		"window_start", window.Start,
		"window_end", window.End,
	)

	// Phase 2: availability. Skipped entirely when the overall deadline has
	// already lapsed; unknown participants impose no constraints.
	availability := map[string]ParticipantAvailability{}
	if ctx.Err() != nil {
		degraded = true
		diagnostics = append(diagnostics, "deadline exceeded before calendar fetch; participants treated as unconstrained")
	} else {
		fetchCtx, fetchCancel := context.WithTimeout(ctx, c.cfg.FetchBudget)
		availability = c.fetcher.FetchAll(fetchCtx, participants, window)
		fetchCancel()
	}

	busy := make([]schedule.Interval, 0, len(participants)*4)
	unavailable := make([]string, 0)
	for _, participant := range participants {
		avail, ok := availability[participant]
		if !ok || !avail.Known {
			unavailable = append(unavailable, participant)
			continue
		}
		busy = append(busy, avail.Busy...)
	}
	for _, participant := range unavailable {
		diagnostics = append(diagnostics, "calendar unavailable for "+participant+"; treated as free")
	}

	// Phase 3: slot selection. Pure in-memory work, not separately boxed.
	result := schedule.FindSlot(busy, intent.Duration(), intent.Preference, c.cfg.WorkingHours, window, started)
	diagnostics = append(diagnostics, result.Diagnostics...)

	if ctx.Err() != nil {
		degraded = true
	}

	decision := SchedulingDecision{
		RequestID:       req.ID,
		Participants:    participants,
		Unavailable:     unavailable,
		Provenance:      intent.Provenance,
		DurationMinutes: intent.DurationMinutes,
		Topic:           intent.Topic,
		Priority:        intent.Priority,
		Diagnostics:     diagnostics,
		Degraded:        degraded,
		Elapsed:         c.now().Sub(started),
		CreatedAt:       started,
	}
	if result.Feasible {
		decision.Slot = &ChosenSlot{Start: result.Slot.Start, End: result.Slot.End}
	}

	if c.recorder != nil {
		// Persistence is advisory; a failed write never fails the request.
		if err := c.recorder.SaveDecision(context.WithoutCancel(ctx), decision); err != nil {
			logger.ErrorContext(ctx, "failed to record decision", "error", err, "error_kind", ErrorKind(err))
		}
	}

	logger.InfoContext(ctx, "decision assembled",
		"feasible", decision.Feasible(),
		"degraded", decision.Degraded,
		"elapsed", decision.Elapsed,
	)

	return decision, nil
}

// extractionText joins the subject and body; priority and constraint keywords
// can appear in either.
func extractionText(req SchedulingRequest) string {
	if req.Subject == "" {
		return req.Body
	}
	return req.Subject + "\n" + req.Body
}

// participantUnion merges organizer, attendees and body-mentioned addresses,
// preserving first-seen order with the organizer first.
func participantUnion(req SchedulingRequest, intent ExtractedIntent) []string {
	seen := make(map[string]struct{}, len(req.Attendees)+len(intent.Participants)+1)
	union := make([]string, 0, len(req.Attendees)+len(intent.Participants)+1)

	appendOne := func(email string) {
		if email == "" || !ValidEmail(email) {
			return
		}
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		union = append(union, email)
	}

	appendOne(req.Organizer)
	for _, attendee := range req.Attendees {
		appendOne(attendee)
	}
	for _, mentioned := range intent.Participants {
		appendOne(sanitizeEmail(mentioned))
	}
	return union
}
