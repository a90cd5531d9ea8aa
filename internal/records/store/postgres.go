package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reviewdesk/reviewdesk/internal/platform/db"
	"github.com/reviewdesk/reviewdesk/internal/records"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS records (
	position BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository stores records in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository wraps an existing pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the records table and seeds it when empty.
func (r *PostgresRepository) Migrate(ctx context.Context, seed []records.Record) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("store: create records table: %w", err)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, rec := range seed {
			batch.Queue(`INSERT INTO records (id, name, description, status, note) VALUES ($1, $2, $3, $4, $5)`,
				rec.ID, rec.Name, rec.Description, string(rec.Status), rec.Note)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *PostgresRepository) List(ctx context.Context, page, limit int) ([]records.Record, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM records`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, status, note FROM records ORDER BY position LIMIT $1 OFFSET $2`,
		limit, offset(page, limit))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []records.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (records.Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, description, status, note FROM records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.Record{}, notFound(id)
	}
	return rec, err
}

func (r *PostgresRepository) Update(ctx context.Context, patch records.Patch) (Change, error) {
	var change Change
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT id, name, description, status, note FROM records WHERE id = $1 FOR UPDATE`, patch.ID)
		previous, err := scanRecord(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(patch.ID)
		}
		if err != nil {
			return err
		}
		current := patch.Apply(previous)
		if _, err := tx.Exec(ctx, `UPDATE records SET status = $1, note = $2, updated_at = NOW() WHERE id = $3`,
			string(current.Status), current.Note, current.ID); err != nil {
			return fmt.Errorf("store: update %s: %w", patch.ID, err)
		}
		change = Change{Previous: previous, Current: current}
		return nil
	})
	return change, err
}

func scanRecord(row pgx.Row) (records.Record, error) {
	var rec records.Record
	var status string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &status, &rec.Note); err != nil {
		return records.Record{}, err
	}
	rec.Status = records.Status(status)
	return rec, nil
}
