package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/meeting-coordinator/internal/application"
	"github.com/example/meeting-coordinator/internal/persistence"
)

// DecisionRepository implements persistence.DecisionRepository using SQLite.
// It also satisfies the application's DecisionRecorder boundary so the
// coordinator can persist decisions without knowing the storage shape.
type DecisionRepository struct {
	pool        *ConnectionPool
	idGenerator func() string
}

var _ persistence.DecisionRepository = (*DecisionRepository)(nil)

// NewDecisionRepository creates a SQLite decision repository with uuid record
// identifiers.
func NewDecisionRepository(pool *ConnectionPool) *DecisionRepository {
	return NewDecisionRepositoryWithIDGenerator(pool, uuid.NewString)
}

// NewDecisionRepositoryWithIDGenerator allows tests to inject deterministic
// record identifiers.
func NewDecisionRepositoryWithIDGenerator(pool *ConnectionPool, idGenerator func() string) *DecisionRepository {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &DecisionRepository{pool: pool, idGenerator: idGenerator}
}

// SaveDecision converts and stores a finished decision. It implements the
// application.DecisionRecorder boundary.
func (r *DecisionRepository) SaveDecision(ctx context.Context, decision application.SchedulingDecision) error {
	return r.SaveRecord(ctx, persistence.NewDecisionRecord(r.idGenerator(), decision))
}

// SaveRecord inserts a decision record.
func (r *DecisionRepository) SaveRecord(ctx context.Context, record persistence.DecisionRecord) error {
	if record.ID == "" || record.RequestID == "" {
		return persistence.ErrConstraintViolation
	}

	participants, err := json.Marshal(orEmpty(record.Participants))
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}
	unavailable, err := json.Marshal(orEmpty(record.Unavailable))
	if err != nil {
		return fmt.Errorf("failed to encode unavailable: %w", err)
	}
	diagnostics, err := json.Marshal(orEmpty(record.Diagnostics))
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}

	query := `
		INSERT INTO decisions (
			id, request_id, slot_start, slot_end, participants, unavailable,
			provenance, duration_minutes, topic, priority, diagnostics,
			degraded, elapsed_ms, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.pool.db.ExecContext(ctx, query,
		record.ID,
		record.RequestID,
		formatNullableTime(record.SlotStart),
		formatNullableTime(record.SlotEnd),
		string(participants),
		string(unavailable),
		record.Provenance,
		record.DurationMinutes,
		record.Topic,
		record.Priority,
		string(diagnostics),
		boolToInt(record.Degraded),
		record.ElapsedMillis,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetDecision retrieves the newest decision record for a request id.
func (r *DecisionRepository) GetDecision(ctx context.Context, requestID string) (persistence.DecisionRecord, error) {
	if requestID == "" {
		return persistence.DecisionRecord{}, persistence.ErrNotFound
	}

	query := selectColumns + `
		WHERE request_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	row := r.pool.db.QueryRowContext(ctx, query, requestID)
	record, err := scanRecord(row.Scan)
	if err != nil {
		return persistence.DecisionRecord{}, mapError(err)
	}
	return record, nil
}

// ListRecentDecisions returns up to limit records, newest first.
func (r *DecisionRepository) ListRecentDecisions(ctx context.Context, limit int) ([]persistence.DecisionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := selectColumns + `
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.pool.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.DecisionRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

const selectColumns = `
	SELECT id, request_id, slot_start, slot_end, participants, unavailable,
		provenance, duration_minutes, topic, priority, diagnostics,
		degraded, elapsed_ms, created_at
	FROM decisions
`

func scanRecord(scan func(dest ...any) error) (persistence.DecisionRecord, error) {
	var (
		record                 persistence.DecisionRecord
		slotStart, slotEnd     sql.NullString
		participants, unavail  string
		diagnostics, createdAt string
		degraded               int
	)

	err := scan(
		&record.ID,
		&record.RequestID,
		&slotStart,
		&slotEnd,
		&participants,
		&unavail,
		&record.Provenance,
		&record.DurationMinutes,
		&record.Topic,
		&record.Priority,
		&diagnostics,
		&degraded,
		&record.ElapsedMillis,
		&createdAt,
	)
	if err != nil {
		return persistence.DecisionRecord{}, err
	}

	if record.SlotStart, err = parseNullableTime(slotStart); err != nil {
		return persistence.DecisionRecord{}, fmt.Errorf("failed to parse slot_start: %w", err)
	}
	if record.SlotEnd, err = parseNullableTime(slotEnd); err != nil {
		return persistence.DecisionRecord{}, fmt.Errorf("failed to parse slot_end: %w", err)
	}
	if err = json.Unmarshal([]byte(participants), &record.Participants); err != nil {
		return persistence.DecisionRecord{}, fmt.Errorf("failed to decode participants: %w", err)
	}
	if err = json.Unmarshal([]byte(unavail), &record.Unavailable); err != nil {
		return persistence.DecisionRecord{}, fmt.Errorf("failed to decode unavailable: %w", err)
	}
	if err = json.Unmarshal([]byte(diagnostics), &record.Diagnostics); err != nil {
		return persistence.DecisionRecord{}, fmt.Errorf("failed to decode diagnostics: %w", err)
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return persistence.DecisionRecord{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	record.Degraded = degraded != 0

	return record, nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil, err
	}
	parsed = parsed.UTC()
	return &parsed, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
