package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/example/meeting-coordinator/internal/application"
	"github.com/example/meeting-coordinator/internal/schedule"
)

// clampDuration enforces the configured duration bounds. Unset or
// out-of-range values collapse to the default; short-but-plausible values are
// raised to the minimum.
func (cfg Config) clampDuration(minutes int, set bool) int {
	if !set || minutes <= 0 || minutes > cfg.MaxDurationMinutes {
		return cfg.DefaultDurationMinutes
	}
	if minutes < cfg.MinDurationMinutes {
		return cfg.MinDurationMinutes
	}
	return minutes
}

// qualifyParticipants lowercases addresses and appends the default domain to
// bare names.
func (cfg Config) qualifyParticipants(raw []string) []string {
	participants := make([]string, 0, len(raw))
	for _, entry := range raw {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "@") {
			entry += cfg.DefaultDomain
		}
		participants = append(participants, entry)
	}
	return participants
}

// buildIntent finalizes the fields lifted from a model completion. The
// priority signal always comes from the original request text, not the
// completion, so a chatty model cannot escalate a meeting.
func (cfg Config) buildIntent(fields intentFields, text string, provenance application.Provenance) application.ExtractedIntent {
	topic := fields.topic
	if topic == "" {
		topic = "Meeting"
	}
	return application.ExtractedIntent{
		DurationMinutes: cfg.clampDuration(fields.durationMinutes, fields.durationSet),
		DayConstraint:   strings.ToLower(fields.constraints),
		Preference:      parseTimeOfDay(fields.constraints),
		Participants:    cfg.qualifyParticipants(fields.participants),
		Topic:           topic,
		Priority:        detectPriority(text),
		Provenance:      provenance,
	}
}

// llmStrict accepts only a completion that is, after trimming, a single valid
// JSON object with every required field.
type llmStrict struct {
	completer Completer
	cfg       Config
}

func (s *llmStrict) Name() string { return string(application.ProvenanceLLMStrict) }

func (s *llmStrict) Attempt(ctx context.Context, text string) (application.ExtractedIntent, error) {
	completion, err := s.completer.Complete(ctx, BuildPrompt(s.cfg.DefaultDomain, s.cfg.DefaultDurationMinutes, text))
	if err != nil {
		return application.ExtractedIntent{}, err
	}

	doc := strings.TrimSpace(completion)
	if !strings.HasPrefix(doc, "{") || !strings.HasSuffix(doc, "}") || !gjson.Valid(doc) {
		return application.ExtractedIntent{}, errInvalidJSON
	}
	fields, err := parseIntentFields(doc)
	if err != nil {
		return application.ExtractedIntent{}, err
	}
	return s.cfg.buildIntent(fields, text, application.ProvenanceLLMStrict), nil
}

// llmTolerant re-reads the same completion (served from cache when the
// endpoint succeeded) but forgives surrounding prose: markdown fences, an
// echoed "JSON:" cue, and leading or trailing commentary around the object.
type llmTolerant struct {
	completer Completer
	cfg       Config
}

func (s *llmTolerant) Name() string { return string(application.ProvenanceLLMTolerant) }

func (s *llmTolerant) Attempt(ctx context.Context, text string) (application.ExtractedIntent, error) {
	completion, err := s.completer.Complete(ctx, BuildPrompt(s.cfg.DefaultDomain, s.cfg.DefaultDurationMinutes, text))
	if err != nil {
		return application.ExtractedIntent{}, err
	}

	doc := AfterMarker(StripFences(completion), "JSON:")
	span, ok := BalancedObject(doc)
	if !ok {
		return application.ExtractedIntent{}, errNoJSONObject
	}
	if !gjson.Valid(span) {
		return application.ExtractedIntent{}, errInvalidJSON
	}
	fields, err := parseIntentFields(span)
	if err != nil {
		return application.ExtractedIntent{}, err
	}
	return s.cfg.buildIntent(fields, text, application.ProvenanceLLMTolerant), nil
}

// Field-level patterns for completions too mangled to parse as JSON at all.
var (
	fieldDurationRx    = regexp.MustCompile(`"?duration_minutes"?\s*[:=]\s*"?(\d+)`)
	fieldConstraintsRx = regexp.MustCompile(`"?time_constraints"?\s*[:=]\s*"([^"]*)"`)
	fieldTopicRx       = regexp.MustCompile(`"?topic"?\s*[:=]\s*"([^"]*)"`)
)

// llmFields scrapes individual fields out of the raw completion text when no
// JSON object survives. It needs at least a duration or a constraint to
// count as a success.
type llmFields struct {
	completer Completer
	cfg       Config
}

func (s *llmFields) Name() string { return string(application.ProvenanceLLMFields) }

func (s *llmFields) Attempt(ctx context.Context, text string) (application.ExtractedIntent, error) {
	completion, err := s.completer.Complete(ctx, BuildPrompt(s.cfg.DefaultDomain, s.cfg.DefaultDurationMinutes, text))
	if err != nil {
		return application.ExtractedIntent{}, err
	}

	fields := intentFields{}
	matched := false

	if match := fieldDurationRx.FindStringSubmatch(completion); match != nil {
		if minutes, convErr := strconv.Atoi(match[1]); convErr == nil {
			fields.durationMinutes = minutes
			fields.durationSet = true
			matched = true
		}
	}
	if match := fieldConstraintsRx.FindStringSubmatch(completion); match != nil {
		fields.constraints = strings.TrimSpace(match[1])
		matched = matched || fields.constraints != ""
	}
	if match := fieldTopicRx.FindStringSubmatch(completion); match != nil {
		fields.topic = strings.TrimSpace(match[1])
	}
	fields.participants = emailRx.FindAllString(completion, -1)

	if !matched {
		return application.ExtractedIntent{}, errNoFieldsMatched
	}
	return s.cfg.buildIntent(fields, text, application.ProvenanceLLMFields), nil
}

// ruleBased bypasses the model and applies deterministic heuristics to the
// original request text.
type ruleBased struct {
	cfg Config
}

func (s *ruleBased) Name() string { return string(application.ProvenanceRegexFallback) }

func (s *ruleBased) Attempt(_ context.Context, text string) (application.ExtractedIntent, error) {
	if strings.TrimSpace(text) == "" {
		return application.ExtractedIntent{}, errEmptyRequestText
	}
	lower := strings.ToLower(text)

	duration := parseDuration(lower)
	constraint, preference := parseDayConstraint(lower)

	return application.ExtractedIntent{
		DurationMinutes: s.cfg.clampDuration(duration, duration > 0),
		DayConstraint:   constraint,
		Preference:      preference,
		Participants:    s.cfg.qualifyParticipants(parseParticipants(text, lower, s.cfg.DefaultDomain)),
		Topic:           parseTopic(text, lower),
		Priority:        detectPriority(text),
		Provenance:      application.ProvenanceRegexFallback,
	}, nil
}

// emergencyDefault is the infallible tail of the chain: a default-length
// meeting at 10:00 on the next business day inside the search window.
type emergencyDefault struct {
	cfg Config
}

func (s *emergencyDefault) Name() string { return string(application.ProvenanceEmergencyDefault) }

func (s *emergencyDefault) Attempt(_ context.Context, _ string) (application.ExtractedIntent, error) {
	return application.ExtractedIntent{
		DurationMinutes: s.cfg.DefaultDurationMinutes,
		Preference:      schedule.Preference{Hour: 10, Valid: true},
		Topic:           "Meeting",
		Priority:        application.PriorityNormal,
		Provenance:      application.ProvenanceEmergencyDefault,
		Diagnostics:     []string{"emergency default intent applied"},
	}, nil
}
