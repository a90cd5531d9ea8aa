package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/reviewdesk/reviewdesk/internal/records"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS records (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT ''
)`

// SQLiteRepository stores records in a single SQLite table.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, creates the schema and
// inserts seed when the table is empty. ":memory:" keeps everything in process.
func OpenSQLite(ctx context.Context, path string, seed []records.Record) (*SQLiteRepository, error) {
	if path == "" {
		path = "reviewdesk.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("store: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)
	repo := &SQLiteRepository{db: db}
	if err := repo.init(ctx, seed); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) init(ctx context.Context, seed []records.Record) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("store: create records table: %w", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return fmt.Errorf("store: count records: %w", err)
	}
	if count > 0 || len(seed) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, rec := range seed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (id, name, description, status, note) VALUES (?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.Description, string(rec.Status), rec.Note); err != nil {
			return fmt.Errorf("store: seed %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) List(ctx context.Context, page, limit int) ([]records.Record, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, status, note FROM records ORDER BY position LIMIT ? OFFSET ?`,
		limit, offset(page, limit))
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()
	out := []records.Record{}
	for rows.Next() {
		var rec records.Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Description, &status, &rec.Note); err != nil {
			return nil, 0, err
		}
		rec.Status = records.Status(status)
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (records.Record, error) {
	return sqliteGet(ctx, r.db, id)
}

func (r *SQLiteRepository) Update(ctx context.Context, patch records.Patch) (Change, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Change{}, err
	}
	defer func() { _ = tx.Rollback() }()

	previous, err := sqliteGet(ctx, tx, patch.ID)
	if err != nil {
		return Change{}, err
	}
	current := patch.Apply(previous)
	if _, err := tx.ExecContext(ctx, `UPDATE records SET status = ?, note = ? WHERE id = ?`,
		string(current.Status), current.Note, current.ID); err != nil {
		return Change{}, fmt.Errorf("store: update %s: %w", patch.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return Change{}, err
	}
	return Change{Previous: previous, Current: current}, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteGet(ctx context.Context, q rowQuerier, id string) (records.Record, error) {
	var rec records.Record
	var status string
	err := q.QueryRowContext(ctx, `SELECT id, name, description, status, note FROM records WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &rec.Description, &status, &rec.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Record{}, notFound(id)
	}
	if err != nil {
		return records.Record{}, err
	}
	rec.Status = records.Status(status)
	return rec, nil
}
