// Package audit keeps a SQLite ledger of tool executions.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/minhyannv/workspace-agent/pkg/tools"
)

// ErrClosed is returned by operations on a closed Ledger.
var ErrClosed = errors.New("audit ledger closed")

const schema = `
CREATE TABLE IF NOT EXISTS tool_executions (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	tool        TEXT NOT NULL,
	input       TEXT NOT NULL,
	result      TEXT NOT NULL,
	ok          INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_executions_session ON tool_executions(session_id, started_at);
`

// Entry is one stored execution.
type Entry struct {
	ID        string
	SessionID string
	Tool      string
	Input     string
	Result    string
	OK        bool
	StartedAt time.Time
	Duration  time.Duration
}

// Ledger records tool executions for one session. It implements
// tools.Recorder.
type Ledger struct {
	db        *sql.DB
	sessionID string
}

// Open creates or opens the ledger database at path.
func Open(path, sessionID string) (*Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("audit database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Ledger{db: db, sessionID: sessionID}, nil
}

// SessionID returns the id stamped on every recorded row.
func (l *Ledger) SessionID() string {
	return l.sessionID
}

// Record stores exec.
func (l *Ledger) Record(ctx context.Context, exec tools.Execution) error {
	if l.db == nil {
		return ErrClosed
	}
	started := exec.Started
	if started.IsZero() {
		started = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO tool_executions (id, session_id, tool, input, result, ok, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		l.sessionID,
		exec.Tool,
		string(exec.Input),
		exec.Result,
		boolToInt(exec.OK),
		started.UTC().Format(time.RFC3339Nano),
		exec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert tool execution: %w", err)
	}
	return nil
}

// Entries returns the executions of sessionID in recording order. An empty
// sessionID selects the ledger's own session.
func (l *Ledger) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	if l.db == nil {
		return nil, ErrClosed
	}
	if sessionID == "" {
		sessionID = l.sessionID
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, session_id, tool, input, result, ok, started_at, duration_ms
		 FROM tool_executions WHERE session_id = ? ORDER BY started_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query tool executions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			startedAt  string
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Tool, &e.Input, &e.Result, &e.OK, &startedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("scan tool execution: %w", err)
		}
		e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Sessions lists the recorded session ids, oldest first.
func (l *Ledger) Sessions(ctx context.Context) ([]string, error) {
	if l.db == nil {
		return nil, ErrClosed
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT session_id FROM tool_executions GROUP BY session_id ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the database. Closing twice is a no-op.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
