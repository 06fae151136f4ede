package persistence

import "context"

// DecisionRepository stores and retrieves scheduling decision records.
type DecisionRepository interface {
	// SaveRecord inserts a decision record.
	SaveRecord(ctx context.Context, record DecisionRecord) error
	// GetDecision retrieves a record by request id. Returns ErrNotFound when
	// no decision exists for the id.
	GetDecision(ctx context.Context, requestID string) (DecisionRecord, error)
	// ListRecentDecisions returns up to limit records, newest first.
	ListRecentDecisions(ctx context.Context, limit int) ([]DecisionRecord, error)
}
