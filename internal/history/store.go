// Package history persists completed run invocations so `sitewright history`
// can show what the orchestrator has done.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sitewright/sitewright/internal/task"
)

// Record is one persisted run invocation.
type Record struct {
	ID         int64
	RunID      string
	Task       string
	State      string
	Files      int
	DurationMS int64
	Error      string
	StartedAt  time.Time
}

// Store persists run records in SQLite.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and initializes) the store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		task TEXT NOT NULL,
		state TEXT NOT NULL,
		files INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		error TEXT,
		started_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_task ON runs(task);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one finished run invocation.
func (s *Store) Append(ctx context.Context, report *task.Report, files int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errText := ""
	if report.Err != nil {
		errText = report.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, task, state, files, duration_ms, error, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		report.ID, report.Task, string(report.State), files,
		report.Duration().Milliseconds(), errText, report.Started.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// Recent returns the most recent run records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, task, state, files, duration_ms, error, started_at FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var startedAt int64
		if err := rows.Scan(&r.ID, &r.RunID, &r.Task, &r.State, &r.Files, &r.DurationMS, &r.Error, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		r.StartedAt = time.Unix(startedAt, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
