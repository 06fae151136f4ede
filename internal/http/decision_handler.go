package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/meeting-coordinator/internal/persistence"
)

type decisionStore interface {
	GetDecision(ctx context.Context, requestID string) (persistence.DecisionRecord, error)
	ListRecentDecisions(ctx context.Context, limit int) ([]persistence.DecisionRecord, error)
}

type DecisionHandler struct {
	store     decisionStore
	responder responder
}

func NewDecisionHandler(store decisionStore, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{store: store, responder: newResponder(logger)}
}

// List handles GET /decisions.
func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLimitParam)
			return
		}
		limit = parsed
	}

	records, err := h.store.ListRecentDecisions(r.Context(), limit)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	decisions := make([]decisionResponse, 0, len(records))
	for _, record := range records {
		decisions = append(decisions, toDecisionResponse(record.ToDecision()))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, decisionListResponse{Decisions: decisions})
}

// Get handles GET /decisions/{request_id}.
func (h *DecisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID, ok := RequestIDFromContext(r.Context())
	if !ok || requestID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingRequestID)
		return
	}

	record, err := h.store.GetDecision(r.Context(), requestID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDecisionResponse(record.ToDecision()))
}

type decisionListResponse struct {
	Decisions []decisionResponse `json:"decisions"`
}
