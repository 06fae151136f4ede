package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/meeting-coordinator/internal/application"
	"github.com/example/meeting-coordinator/internal/logging"
)

type schedulingService interface {
	Handle(ctx context.Context, req application.SchedulingRequest) (application.SchedulingDecision, error)
}

type ScheduleHandler struct {
	service   schedulingService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service schedulingService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logging.Default(logger),
	}
}

// Schedule handles POST /schedule.
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	decision, err := h.service.Handle(r.Context(), req.toRequest())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "schedule", "schedule", "request_id", decision.RequestID)
	logger.InfoContext(r.Context(), "scheduling decision returned",
		"feasible", decision.Feasible(),
		"provenance", decision.Provenance,
	)

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDecisionResponse(decision))
}

type scheduleRequest struct {
	RequestID    string        `json:"request_id"`
	Datetime     string        `json:"datetime"`
	From         string        `json:"from"`
	Attendees    []attendeeDTO `json:"attendees"`
	Subject      string        `json:"subject"`
	EmailContent string        `json:"email_content"`
	Location     string        `json:"location"`
}

type attendeeDTO struct {
	Email string `json:"email"`
}

// Inbound timestamps arrive either as RFC 3339 or in the legacy
// day-first layout older senders still use.
var requestTimeLayouts = []string{time.RFC3339, "02-01-2006T15:04:05"}

func (req scheduleRequest) toRequest() application.SchedulingRequest {
	attendees := make([]string, 0, len(req.Attendees))
	for _, attendee := range req.Attendees {
		attendees = append(attendees, attendee.Email)
	}

	var timestamp time.Time
	for _, layout := range requestTimeLayouts {
		if parsed, err := time.Parse(layout, req.Datetime); err == nil {
			timestamp = parsed.UTC()
			break
		}
	}

	return application.SchedulingRequest{
		ID:        req.RequestID,
		Timestamp: timestamp,
		Organizer: req.From,
		Attendees: attendees,
		Subject:   req.Subject,
		Body:      req.EmailContent,
		Location:  req.Location,
	}
}

type decisionResponse struct {
	RequestID       string   `json:"request_id"`
	Feasible        bool     `json:"feasible"`
	Slot            *slotDTO `json:"slot,omitempty"`
	Participants    []string `json:"participants"`
	Unavailable     []string `json:"unavailable,omitempty"`
	Provenance      string   `json:"provenance"`
	DurationMinutes int      `json:"duration_minutes"`
	Topic           string   `json:"topic"`
	Priority        string   `json:"priority"`
	Diagnostics     []string `json:"diagnostics,omitempty"`
	Degraded        bool     `json:"degraded"`
	ElapsedMillis   int64    `json:"elapsed_ms"`
}

type slotDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func toDecisionResponse(decision application.SchedulingDecision) decisionResponse {
	resp := decisionResponse{
		RequestID:       decision.RequestID,
		Feasible:        decision.Feasible(),
		Participants:    decision.Participants,
		Unavailable:     decision.Unavailable,
		Provenance:      string(decision.Provenance),
		DurationMinutes: decision.DurationMinutes,
		Topic:           decision.Topic,
		Priority:        string(decision.Priority),
		Diagnostics:     decision.Diagnostics,
		Degraded:        decision.Degraded,
		ElapsedMillis:   decision.Elapsed.Milliseconds(),
	}
	if decision.Slot != nil {
		resp.Slot = &slotDTO{Start: decision.Slot.Start.UTC(), End: decision.Slot.End.UTC()}
	}
	return resp
}
