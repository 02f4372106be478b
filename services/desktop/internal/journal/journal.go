// Package journal keeps an audit trail of supervisor lifecycle events in a
// local SQLite database next to the worker's own storage. Recording is
// best-effort: a journal failure must never affect supervisor operations.
package journal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/caw-hq/caw-desktop/pkg/shared/defs"
)

const dbFileName = "desktop.db"

// DefaultPath places the journal alongside the worker database, in the
// same .caw directory, under its own file.
func DefaultPath(workflowsDBPath string) string {
	return filepath.Join(filepath.Dir(workflowsDBPath), dbFileName)
}

type Journal struct {
	db    *sqlx.DB
	runID string
}

type row struct {
	ID        int64     `db:"id"`
	RunID     string    `db:"run_id"`
	Event     string    `db:"event"`
	Pid       int       `db:"pid"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

func Open(path, runID string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	j := &Journal{db: db, runID: runID}
	if err := j.ensureTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) ensureTables() error {
	schema := `
    CREATE TABLE IF NOT EXISTS lifecycle_events (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id     TEXT NOT NULL,
        event      TEXT NOT NULL,
        pid        INTEGER NOT NULL DEFAULT 0,
        detail     TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_lifecycle_events_run
        ON lifecycle_events (run_id, created_at);
    `
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure journal tables: %w", err)
	}
	return nil
}

// Record appends one event. Errors are logged and swallowed.
func (j *Journal) Record(event string, pid int, detail string) {
	_, err := j.db.Exec(
		`INSERT INTO lifecycle_events (run_id, event, pid, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		j.runID, event, pid, detail, time.Now().UTC(),
	)
	if err != nil {
		slog.Error("Failed to record lifecycle event", "event", event, "error", err)
	}
}

// Recent returns up to n most recent events across all runs, newest first.
func (j *Journal) Recent(n int) ([]defs.StateEvent, error) {
	var rows []row
	err := j.db.Select(&rows,
		`SELECT id, run_id, event, pid, detail, created_at
         FROM lifecycle_events ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query lifecycle events: %w", err)
	}

	events := make([]defs.StateEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, defs.StateEvent{
			RunID:  r.RunID,
			State:  r.Event,
			Pid:    r.Pid,
			Detail: r.Detail,
			Time:   r.CreatedAt,
		})
	}
	return events, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
