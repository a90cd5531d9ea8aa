package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

const auditSchema = `CREATE TABLE IF NOT EXISTS record_transitions (
	entry_id UUID PRIMARY KEY,
	record_id TEXT NOT NULL,
	previous_status TEXT NOT NULL,
	new_status TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
)`

// PostgresAuditSink writes transitions into record_transitions.
type PostgresAuditSink struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditSink returns a sink backed by pool.
func NewPostgresAuditSink(pool *pgxpool.Pool) *PostgresAuditSink {
	return &PostgresAuditSink{pool: pool}
}

// Migrate creates the audit table.
func (s *PostgresAuditSink) Migrate(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("audit sink not initialised")
	}
	if _, err := s.pool.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("create record_transitions: %w", err)
	}
	return nil
}

// RecordTransition persists entry. Redelivered entries are ignored.
func (s *PostgresAuditSink) RecordTransition(ctx context.Context, entry records.HistoryEntry) error {
	if s == nil || s.pool == nil {
		return errors.New("audit sink not initialised")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO record_transitions (entry_id, record_id, previous_status, new_status, note, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (entry_id) DO NOTHING`,
		entry.ID.String(), entry.RecordID, string(entry.PreviousStatus), string(entry.NewStatus), entry.Note, entry.Timestamp)
	return err
}
