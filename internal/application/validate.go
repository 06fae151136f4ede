package application

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether the address has a plausible mailbox shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// SanitizeRequest normalizes a request before validation: addresses are
// trimmed and lowercased, free-text fields have excess whitespace collapsed.
// The body is only trimmed so the extractor sees the original line structure.
func SanitizeRequest(req SchedulingRequest) SchedulingRequest {
	req.Organizer = sanitizeEmail(req.Organizer)
	attendees := make([]string, 0, len(req.Attendees))
	for _, attendee := range req.Attendees {
		if cleaned := sanitizeEmail(attendee); cleaned != "" {
			attendees = append(attendees, cleaned)
		}
	}
	req.Attendees = attendees
	req.Subject = collapseWhitespace(req.Subject)
	req.Location = collapseWhitespace(req.Location)
	req.Body = strings.TrimSpace(req.Body)
	return req
}

// ValidateRequest checks the inbound request for the fields required before
// any model or calendar call is made. It returns nil when the request is
// acceptable.
func ValidateRequest(req SchedulingRequest) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(req.ID) == "" {
		vErr.add("request_id", "request id is required")
	}

	if strings.TrimSpace(req.Organizer) == "" {
		vErr.add("from", "organizer is required")
	} else if !ValidEmail(req.Organizer) {
		vErr.add("from", "organizer must be a valid email address")
	}

	if strings.TrimSpace(req.Body) == "" {
		vErr.add("email_content", "email content is required")
	}

	for _, attendee := range req.Attendees {
		if !ValidEmail(attendee) {
			vErr.add("attendees", "attendee list contains an invalid email address: "+attendee)
			break
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func sanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
