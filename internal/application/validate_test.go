package application

import (
	"strings"
	"testing"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"alice@example.com", "bob.smith+tag@sub.example.co.uk", "x_1@example.io"}
	for _, email := range valid {
		if !ValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "alice", "alice@", "@example.com", "alice@example", "alice @example.com"}
	for _, email := range invalid {
		if ValidEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestSanitizeRequest(t *testing.T) {
	req := SanitizeRequest(SchedulingRequest{
		Organizer: "  Alice@Example.COM ",
		Attendees: []string{" Bob@Example.com", "", "  "},
		Subject:   "  Quarterly   review \n meeting ",
		Body:      "  line one\nline two  ",
		Location:  " Room   42 ",
	})

	if req.Organizer != "alice@example.com" {
		t.Errorf("organizer not normalized: %q", req.Organizer)
	}
	if len(req.Attendees) != 1 || req.Attendees[0] != "bob@example.com" {
		t.Errorf("attendees not normalized: %v", req.Attendees)
	}
	if req.Subject != "Quarterly review meeting" {
		t.Errorf("subject whitespace not collapsed: %q", req.Subject)
	}
	if req.Location != "Room 42" {
		t.Errorf("location whitespace not collapsed: %q", req.Location)
	}
	// The body keeps its internal line structure for the extractor.
	if req.Body != "line one\nline two" {
		t.Errorf("body must only be trimmed: %q", req.Body)
	}
}

func TestValidateRequestAcceptsCompleteRequest(t *testing.T) {
	err := ValidateRequest(SchedulingRequest{
		ID:        "req-1",
		Organizer: "alice@example.com",
		Attendees: []string{"bob@example.com"},
		Body:      "let's meet thursday",
	})
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err.FieldErrors)
	}
}

func TestValidateRequestMissingFields(t *testing.T) {
	err := ValidateRequest(SchedulingRequest{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, field := range []string{"request_id", "from", "email_content"} {
		if _, ok := err.FieldErrors[field]; !ok {
			t.Errorf("expected a field error for %s, got %v", field, err.FieldErrors)
		}
	}
}

func TestValidateRequestInvalidOrganizer(t *testing.T) {
	err := ValidateRequest(SchedulingRequest{
		ID:        "req-1",
		Organizer: "not-an-address",
		Body:      "meet tomorrow",
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if msg := err.FieldErrors["from"]; !strings.Contains(msg, "valid email") {
		t.Errorf("unexpected organizer error %q", msg)
	}
}

func TestValidateRequestInvalidAttendee(t *testing.T) {
	err := ValidateRequest(SchedulingRequest{
		ID:        "req-1",
		Organizer: "alice@example.com",
		Attendees: []string{"bob@example.com", "broken"},
		Body:      "meet tomorrow",
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if msg := err.FieldErrors["attendees"]; !strings.Contains(msg, "broken") {
		t.Errorf("expected the offending address to be named, got %q", msg)
	}
}
