// Package history persists finished runs and their override audit trail in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/autoeda/internal/eda"
	"github.com/KaramelBytes/autoeda/internal/infer"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
}

// RunSummary is one row of List.
type RunSummary struct {
	ID        string
	Name      string
	Rows      int
	Columns   int
	Warnings  int
	Overrides int
	CreatedAt time.Time
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			row_count INTEGER NOT NULL DEFAULT 0,
			column_count INTEGER NOT NULL DEFAULT 0,
			warnings INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			result_json TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS overrides (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id),
			column_name TEXT NOT NULL,
			automatic TEXT NOT NULL,
			forced TEXT NOT NULL,
			by_user TEXT NOT NULL,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_overrides_run ON overrides(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Save stores a run and its override audit entries in one transaction.
func (s *Store) Save(ctx context.Context, r *eda.Result) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	cols := 0
	var overrides []infer.Override
	if r.TypeMap != nil {
		cols = len(r.TypeMap.Order)
		overrides = r.TypeMap.Overrides
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, row_count, column_count, warnings, created_at, result_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Name, r.Rows, cols, len(r.Warnings), r.StartedAt.UTC().Format(timeLayout), string(body))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, o := range overrides {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO overrides (id, run_id, column_name, automatic, forced, by_user, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ID, r.RunID, o.Column, o.Automatic.Category.String(), o.Forced.String(), o.By, o.At.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert override %s: %w", o.Column, err)
		}
	}
	return tx.Commit()
}

// List returns up to limit runs, newest first. limit <= 0 lists all.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT r.id, r.name, r.row_count, r.column_count, r.warnings, r.created_at,
		        (SELECT COUNT(*) FROM overrides o WHERE o.run_id = r.id)
		 FROM runs r ORDER BY r.created_at DESC, r.id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var created string
		if err := rows.Scan(&rs.ID, &rs.Name, &rs.Rows, &rs.Columns, &rs.Warnings, &created, &rs.Overrides); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if rs.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", rs.ID, err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Get loads a stored run by id.
func (s *Store) Get(ctx context.Context, id string) (*eda.Result, error) {
	var body string
	err := s.conn.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	var r eda.Result
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &r, nil
}

// AuditEntry is a stored override, flattened for listing.
type AuditEntry struct {
	ID        string
	RunID     string
	Column    string
	Automatic infer.Category
	Forced    infer.Category
	By        string
	At        time.Time
}

// Overrides returns the audit trail of one run, or of every run when runID is empty.
func (s *Store) Overrides(ctx context.Context, runID string) ([]AuditEntry, error) {
	q := `SELECT id, run_id, column_name, automatic, forced, by_user, at FROM overrides`
	var args []any
	if runID != "" {
		q += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	q += ` ORDER BY at, column_name`
	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var auto, forced, at string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Column, &auto, &forced, &e.By, &at); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if e.Automatic, err = infer.ParseCategory(auto); err != nil {
			return nil, err
		}
		if e.Forced, err = infer.ParseCategory(forced); err != nil {
			return nil, err
		}
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse override time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
