package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/meeting-coordinator/internal/application"
	"github.com/example/meeting-coordinator/internal/persistence"
)

type serviceStub struct {
	decision    application.SchedulingDecision
	err         error
	lastRequest application.SchedulingRequest
	calls       int
}

func (s *serviceStub) Handle(_ context.Context, req application.SchedulingRequest) (application.SchedulingDecision, error) {
	s.calls++
	s.lastRequest = req
	if s.err != nil {
		return application.SchedulingDecision{}, s.err
	}
	return s.decision, nil
}

type storeStub struct {
	records   map[string]persistence.DecisionRecord
	recent    []persistence.DecisionRecord
	err       error
	lastLimit int
}

func (s *storeStub) GetDecision(_ context.Context, requestID string) (persistence.DecisionRecord, error) {
	if s.err != nil {
		return persistence.DecisionRecord{}, s.err
	}
	record, ok := s.records[requestID]
	if !ok {
		return persistence.DecisionRecord{}, persistence.ErrNotFound
	}
	return record, nil
}

func (s *storeStub) ListRecentDecisions(_ context.Context, limit int) ([]persistence.DecisionRecord, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.recent, nil
}

type pingerStub struct {
	err error
}

func (p *pingerStub) Ping(_ context.Context) error {
	return p.err
}

func newTestRouter(service *serviceStub, store *storeStub, db *pingerStub) http.Handler {
	cfg := RouterConfig{
		Health: NewHealthHandler(db, nil),
	}
	if service != nil {
		cfg.Schedule = NewScheduleHandler(service, nil)
	}
	if store != nil {
		cfg.Decisions = NewDecisionHandler(store, nil)
	}
	return NewRouter(cfg)
}

func feasibleDecision() application.SchedulingDecision {
	start := time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)
	return application.SchedulingDecision{
		RequestID:       "req-1",
		Slot:            &application.ChosenSlot{Start: start, End: start.Add(30 * time.Minute)},
		Participants:    []string{"a@example.com", "b@example.com"},
		Provenance:      application.ProvenanceLLMStrict,
		DurationMinutes: 30,
		Topic:           "quarterly review",
		Priority:        application.PriorityNormal,
		Elapsed:         1200 * time.Millisecond,
	}
}

func TestScheduleEndpoint(t *testing.T) {
	service := &serviceStub{decision: feasibleDecision()}
	router := newTestRouter(service, nil, &pingerStub{})

	body := `{
		"request_id": "req-1",
		"datetime": "02-06-2025T08:30:00",
		"from": "a@example.com",
		"attendees": [{"email": "b@example.com"}],
		"subject": "quarterly review",
		"email_content": "let's meet thursday for 30 minutes"
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if service.lastRequest.Organizer != "a@example.com" {
		t.Errorf("organizer not mapped: %q", service.lastRequest.Organizer)
	}
	if len(service.lastRequest.Attendees) != 1 || service.lastRequest.Attendees[0] != "b@example.com" {
		t.Errorf("attendees not mapped: %v", service.lastRequest.Attendees)
	}
	wantTimestamp := time.Date(2025, time.June, 2, 8, 30, 0, 0, time.UTC)
	if !service.lastRequest.Timestamp.Equal(wantTimestamp) {
		t.Errorf("legacy datetime not parsed: %v", service.lastRequest.Timestamp)
	}

	var resp decisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID != "req-1" || !resp.Feasible {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Slot == nil || !resp.Slot.Start.Equal(time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected slot %+v", resp.Slot)
	}
	if resp.ElapsedMillis != 1200 {
		t.Errorf("unexpected elapsed %d", resp.ElapsedMillis)
	}
}

func TestScheduleEndpointRejectsBadJSON(t *testing.T) {
	service := &serviceStub{decision: feasibleDecision()}
	router := newTestRouter(service, nil, &pingerStub{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Error("the service must not be called for a malformed body")
	}
}

func TestScheduleEndpointValidationError(t *testing.T) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{"from": "organizer is required"}}
	service := &serviceStub{err: vErr}
	router := newTestRouter(service, nil, &pingerStub{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(`{"request_id": "req-1"}`)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Errors["from"] != "organizer is required" {
		t.Errorf("field errors not surfaced: %+v", resp)
	}
}

func TestScheduleEndpointMethodNotAllowed(t *testing.T) {
	router := newTestRouter(&serviceStub{}, nil, &pingerStub{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("unexpected Allow header %q", allow)
	}
}

func TestDecisionListEndpoint(t *testing.T) {
	store := &storeStub{recent: []persistence.DecisionRecord{
		persistence.NewDecisionRecord("id-1", feasibleDecision()),
	}}
	router := newTestRouter(nil, store, &pingerStub{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastLimit != 5 {
		t.Errorf("limit not passed through, got %d", store.lastLimit)
	}
	var resp decisionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Decisions) != 1 || resp.Decisions[0].RequestID != "req-1" {
		t.Errorf("unexpected list %+v", resp.Decisions)
	}
}

func TestDecisionListEndpointRejectsInvalidLimit(t *testing.T) {
	router := newTestRouter(nil, &storeStub{}, &pingerStub{})

	for _, limit := range []string{"abc", "-1", "0"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions?limit="+limit, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected 400, got %d", limit, rec.Code)
		}
	}
}

func TestDecisionGetEndpoint(t *testing.T) {
	store := &storeStub{records: map[string]persistence.DecisionRecord{
		"req-1": persistence.NewDecisionRecord("id-1", feasibleDecision()),
	}}
	router := newTestRouter(nil, store, &pingerStub{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions/req-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp decisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID != "req-1" || resp.Slot == nil {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestDecisionGetEndpointNotFound(t *testing.T) {
	router := newTestRouter(nil, &storeStub{}, &pingerStub{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions/unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(nil, nil, &pingerStub{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHealthEndpointDegraded(t *testing.T) {
	router := newTestRouter(nil, nil, &pingerStub{err: context.DeadlineExceeded})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
