package extract

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// Completion parsing errors. Each names the reason a strategy gave up so the
// chain's diagnostics read as a parse trace.
var (
	errNoJSONObject     = errors.New("no balanced JSON object in completion")
	errInvalidJSON      = errors.New("extracted span is not valid JSON")
	errMissingFields    = errors.New("completion JSON missing required fields")
	errBadParticipants  = errors.New("participants field is neither array nor string")
	errNoFieldsMatched  = errors.New("no recognizable fields in completion text")
	errEmptyRequestText = errors.New("request text is empty")
)

// StripFences removes a surrounding markdown code fence, including an
// optional language tag line, from a completion. Text without fences is
// returned trimmed but otherwise untouched.
func StripFences(completion string) string {
	trimmed := strings.TrimSpace(completion)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.Index(trimmed, "\n"); newline >= 0 && !strings.ContainsAny(trimmed[:newline], "{}") {
		trimmed = trimmed[newline+1:]
	}
	if closing := strings.LastIndex(trimmed, "```"); closing >= 0 {
		trimmed = trimmed[:closing]
	}
	return strings.TrimSpace(trimmed)
}

// AfterMarker returns the text following the first occurrence of marker, or
// the input unchanged when the marker is absent. Completions often echo the
// prompt's trailing "JSON:" cue before the payload.
func AfterMarker(completion, marker string) string {
	if pos := strings.Index(completion, marker); pos >= 0 {
		return completion[pos+len(marker):]
	}
	return completion
}

// BalancedObject returns the first balanced {...} span in the text. Brace
// counting is byte-level and does not account for braces inside JSON strings;
// the payloads produced here never contain them.
func BalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// intentFields is the raw payload lifted out of a completion before defaults
// and clamping are applied.
type intentFields struct {
	participants    []string
	durationMinutes int
	durationSet     bool
	constraints     string
	topic           string
}

// parseIntentFields reads the extraction payload out of a JSON document. All
// four fields must be present; participants may be a string array or a
// comma-separated string.
func parseIntentFields(doc string) (intentFields, error) {
	participants := gjson.Get(doc, "participants")
	duration := gjson.Get(doc, "duration_minutes")
	constraints := gjson.Get(doc, "time_constraints")
	topic := gjson.Get(doc, "topic")

	if !participants.Exists() || !duration.Exists() || !constraints.Exists() || !topic.Exists() {
		return intentFields{}, errMissingFields
	}

	fields := intentFields{
		durationMinutes: int(duration.Int()),
		durationSet:     true,
		constraints:     strings.TrimSpace(constraints.String()),
		topic:           strings.TrimSpace(topic.String()),
	}

	switch {
	case participants.IsArray():
		for _, entry := range participants.Array() {
			fields.participants = append(fields.participants, entry.String())
		}
	case participants.Type == gjson.String:
		for _, entry := range strings.Split(participants.String(), ",") {
			fields.participants = append(fields.participants, strings.TrimSpace(entry))
		}
	default:
		return intentFields{}, errBadParticipants
	}

	return fields, nil
}
