// Package ledger keeps a local SQLite history of sync and wipe runs.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/anshulchahar/gita/internal/ledger/migrations"
	gsync "github.com/anshulchahar/gita/internal/sync"
)

const schemaVersion = "2"

var (
	// ErrClosed is returned when using a closed ledger.
	ErrClosed = errors.New("ledger is closed")

	// ErrNoRuns is returned by LastRun when nothing has been recorded.
	ErrNoRuns = errors.New("no runs recorded")
)

// Ledger records run summaries.
type Ledger struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

var gooseMu sync.Mutex

// Open opens or creates the ledger database at path.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ledger: %s: %w", pragma, err)
		}
	}

	l := &Ledger{db: db, path: path}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return l, nil
}

func (l *Ledger) migrate() error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("ledger: set goose dialect: %w", err)
	}
	if err := goose.Up(l.db, "."); err != nil {
		return fmt.Errorf("ledger: run migrations: %w", err)
	}
	_, err := l.db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	return err
}

// Path returns the database location.
func (l *Ledger) Path() string { return l.path }

// Close closes the database. Further calls return ErrClosed.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

// RecordSummary stores a run and all of its results in one transaction.
func (l *Ledger) RecordSummary(ctx context.Context, s *gsync.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, kind, started_at, finished_at, units, succeeded, failed, aborted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.RunID,
		s.Kind,
		s.StartedAt.UTC().Format(time.RFC3339Nano),
		s.FinishedAt.UTC().Format(time.RFC3339Nano),
		joinInts(s.Units),
		s.Succeeded,
		s.Failed,
		nullString(s.Aborted),
	)
	if err != nil {
		return fmt.Errorf("ledger: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, seq, collection, document_id, outcome, reason, status_code)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("ledger: prepare results: %w", err)
	}
	defer stmt.Close()

	for i, r := range s.Results {
		var code sql.NullInt64
		if r.StatusCode != 0 {
			code = sql.NullInt64{Int64: int64(r.StatusCode), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, s.RunID, i, r.Collection, r.ID, string(r.Outcome), nullString(r.Reason), code); err != nil {
			return fmt.Errorf("ledger: insert result %s/%s: %w", r.Collection, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit: %w", err)
	}
	return nil
}

// Run is a stored run without its per-document results.
type Run struct {
	ID         string    `json:"run_id"`
	Kind       string    `json:"kind"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Units      []int     `json:"units,omitempty"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Aborted    string    `json:"aborted,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// LastRun returns the most recently started run, optionally of one kind.
func (l *Ledger) LastRun(ctx context.Context, kind string) (*Run, error) {
	runs, err := l.Runs(ctx, kind, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return &runs[0], nil
}

// Runs lists up to limit runs, newest first. An empty kind matches all runs.
func (l *Ledger) Runs(ctx context.Context, kind string, limit int) ([]Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, kind, started_at, finished_at, units, succeeded, failed, aborted FROM runs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			units, aborted    sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Kind, &started, &finished, &units, &r.Succeeded, &r.Failed, &aborted); err != nil {
			return nil, fmt.Errorf("ledger: scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		r.Units = splitInts(units.String)
		r.Aborted = aborted.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Failures returns the failed results of a run in the order they happened.
func (l *Ledger) Failures(ctx context.Context, runID string) ([]gsync.Result, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT collection, document_id, outcome, reason, status_code
		FROM results WHERE run_id = ? AND outcome = ?
		ORDER BY seq
	`, runID, string(gsync.OutcomeFailure))
	if err != nil {
		return nil, fmt.Errorf("ledger: query failures: %w", err)
	}
	defer rows.Close()

	var out []gsync.Result
	for rows.Next() {
		var (
			r       gsync.Result
			outcome string
			reason  sql.NullString
			code    sql.NullInt64
		)
		if err := rows.Scan(&r.Collection, &r.ID, &outcome, &reason, &code); err != nil {
			return nil, fmt.Errorf("ledger: scan result: %w", err)
		}
		r.Outcome = gsync.Outcome(outcome)
		r.Reason = reason.String
		r.StatusCode = int(code.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func joinInts(ns []int) sql.NullString {
	if len(ns) == 0 {
		return sql.NullString{}
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return sql.NullString{String: strings.Join(parts, ","), Valid: true}
}

func splitInts(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, p := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}
