package repository

import (
	"context"
	"database/sql"
	"time"
)

// UsageRepo records completion call outcomes. It never stores turn text.
type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo { return &UsageRepo{db: db} }

func (r *UsageRepo) Add(ctx context.Context, u UsageRecord) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO completion_usage(id, conversation_id, profile, outcome, status_code, tag, latency_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, u.ID, u.ConversationID, u.Profile, u.Outcome, u.StatusCode, u.Tag, u.Latency.Milliseconds(), u.CreatedAt.UTC())
	return err
}

// Recent returns the newest records first.
func (r *UsageRepo) Recent(ctx context.Context, limit int) ([]UsageRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, conversation_id, profile, outcome, status_code, tag, latency_ms, created_at
	FROM completion_usage
	ORDER BY created_at DESC, id
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UsageRecord
	for rows.Next() {
		var u UsageRecord
		var latencyMS int64
		if err := rows.Scan(&u.ID, &u.ConversationID, &u.Profile, &u.Outcome, &u.StatusCode, &u.Tag, &latencyMS, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Latency = time.Duration(latencyMS) * time.Millisecond
		out = append(out, u)
	}
	return out, rows.Err()
}

// Summarize groups records created at or after since by profile and outcome.
func (r *UsageRepo) Summarize(ctx context.Context, since time.Time) ([]UsageSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT profile, outcome, COUNT(*), CAST(AVG(latency_ms) AS INTEGER)
	FROM completion_usage
	WHERE created_at >= ?
	GROUP BY profile, outcome
	ORDER BY profile, outcome`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UsageSummary
	for rows.Next() {
		var s UsageSummary
		var avgMS int64
		if err := rows.Scan(&s.Profile, &s.Outcome, &s.Calls, &avgMS); err != nil {
			return nil, err
		}
		s.AvgLatency = time.Duration(avgMS) * time.Millisecond
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes records created before cutoff and reports how many went.
func (r *UsageRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM completion_usage WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
