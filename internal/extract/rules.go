package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/example/meeting-coordinator/internal/application"
	"github.com/example/meeting-coordinator/internal/schedule"
)

// Rule-based heuristics over request text. These mirror what the model is
// prompted to extract so the fallback degrades gracefully rather than
// changing shape.
var (
	emailRx = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Name lists after "attendees:", "with", "invite" and similar cues.
	nameListRx  = regexp.MustCompile(`(?i)(?:attendees?|participants?|invite|with|cc|include|team)[:\s]+([^.!?\n]+)`)
	nameSplitRx = regexp.MustCompile(`\s*(?:,|&|\band\b)\s*`)

	hoursRx       = regexp.MustCompile(`(\d+)\s*hours?`)
	minutesRx     = regexp.MustCompile(`(\d+)\s*(?:minutes?|mins?)`)
	halfHourRx    = regexp.MustCompile(`half\s*(?:an?\s*)?hour`)
	bareHourRx    = regexp.MustCompile(`\ban?\s+hour\b`)
	compactHourRx = regexp.MustCompile(`\b(\d+)h\b`)
	compactMinRx  = regexp.MustCompile(`\b(\d+)m\b`)

	// "thursday at 2pm", "friday 10:30am".
	dayTimeRx = regexp.MustCompile(`(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+(?:at\s+)?(\d{1,2}):?(\d{0,2})\s*(am|pm)`)
	dayOnlyRx = regexp.MustCompile(`(?:next\s+|this\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)

	// Clock times without a day, e.g. "at 2pm".
	clockRx = regexp.MustCompile(`(\d{1,2}):?(\d{0,2})\s*(am|pm)`)

	topicRx      = regexp.MustCompile(`(?i)(?:about|regarding|discuss(?:ing)?)\s+([^.!?\n]+)`)
	sentenceRx   = regexp.MustCompile(`[.!?]+`)
	highPriority = regexp.MustCompile(`(?i)urgent|high\s*priority|asap|emergency|critical|important|must\s*schedule|mandatory|escalated|crisis|deadline|time\s*sensitive|board\s*meeting|executive\s*meeting`)
)

// detectPriority classifies the request text as high or normal priority.
func detectPriority(text string) application.Priority {
	if highPriority.MatchString(text) {
		return application.PriorityHigh
	}
	return application.PriorityNormal
}

// parseTimeOfDay lifts an explicit clock time out of the text. Returns an
// invalid preference when none is stated.
func parseTimeOfDay(text string) schedule.Preference {
	match := clockRx.FindStringSubmatch(strings.ToLower(text))
	if match == nil {
		return schedule.Preference{}
	}
	hour, err := strconv.Atoi(match[1])
	if err != nil || hour > 12 {
		return schedule.Preference{}
	}
	minute := 0
	if match[2] != "" {
		minute, err = strconv.Atoi(match[2])
		if err != nil || minute > 59 {
			return schedule.Preference{}
		}
	}
	switch match[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return schedule.Preference{Hour: hour, Minute: minute, Valid: true}
}

// parseDuration reads a stated meeting length in minutes. Returns 0 when the
// text states none.
func parseDuration(lower string) int {
	if match := hoursRx.FindStringSubmatch(lower); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n * 60
		}
	}
	if match := minutesRx.FindStringSubmatch(lower); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	if halfHourRx.MatchString(lower) {
		return 30
	}
	if bareHourRx.MatchString(lower) {
		return 60
	}
	if match := compactHourRx.FindStringSubmatch(lower); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n * 60
		}
	}
	if match := compactMinRx.FindStringSubmatch(lower); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	return 0
}

// parseDayConstraint reads the day constraint phrase and any explicit time
// attached to it. Returns "" when the text names no day.
func parseDayConstraint(lower string) (string, schedule.Preference) {
	for _, phrase := range []string{"next week", "this week", "tomorrow", "today"} {
		if strings.Contains(lower, phrase) {
			return phrase, schedule.Preference{}
		}
	}
	if match := dayTimeRx.FindStringSubmatch(lower); match != nil {
		return match[1], parseTimeOfDay(match[0])
	}
	if match := dayOnlyRx.FindStringSubmatch(lower); match != nil {
		return match[1], schedule.Preference{}
	}
	return "", schedule.Preference{}
}

// parseParticipants collects mailbox addresses from the text, falling back to
// name lists qualified with the default domain.
func parseParticipants(text, lower, domain string) []string {
	if emails := emailRx.FindAllString(text, -1); len(emails) > 0 {
		return emails
	}

	match := nameListRx.FindStringSubmatch(lower)
	if match == nil {
		return nil
	}
	var names []string
	for _, name := range nameSplitRx.Split(match[1], -1) {
		name = strings.TrimSpace(name)
		if len(name) < 2 || strings.ContainsAny(name, "@ ") {
			continue
		}
		switch name {
		case "meet", "discuss", "talk", "everyone", "all":
			continue
		}
		names = append(names, name+domain)
	}
	return names
}

// parseTopic derives a short subject line for the meeting. Falls back to the
// first reasonably sized sentence, then to a generic label.
func parseTopic(text, lower string) string {
	if match := topicRx.FindStringSubmatch(lower); match != nil {
		topic := strings.TrimSpace(match[1])
		if len(topic) > 3 && len(topic) < 100 {
			return topic
		}
	}
	for _, sentence := range sentenceRx.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 10 && len(sentence) < 80 && !strings.HasPrefix(strings.ToLower(sentence), "hi") {
			return sentence
		}
	}
	return "Meeting"
}
