package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agentic-research/flowmend/api"
	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	command TEXT NOT NULL,
	dir TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	total INTEGER NOT NULL,
	failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	file TEXT NOT NULL,
	outcome TEXT NOT NULL,
	actions TEXT,
	record_id TEXT,
	reason TEXT,
	warnings JSON
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
`

// Run is one recorded invocation.
type Run struct {
	ID        int64
	Command   string
	Dir       string
	StartedAt time.Time
	Total     int
	// Failed counts error outcomes for repair runs and invalid records for verify runs.
	Failed int
}

// Ledger records runs and their per-record results in SQLite.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (creating if needed) the ledger database at dbPath.
func OpenLedger(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordRepair stores a repair run and every per-record result in one transaction.
func (l *Ledger) RecordRepair(ctx context.Context, run Run, results []api.Result) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertRun(ctx, tx, run)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, file, outcome, actions, record_id, reason, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range results {
		actions := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			actions[i] = string(a)
		}
		var warnings []byte
		if len(r.Warnings) > 0 {
			warnings, _ = json.Marshal(r.Warnings)
		}
		if _, err := stmt.ExecContext(ctx, id, r.File, string(r.Outcome), strings.Join(actions, ","), r.ID, r.Reason, warnings); err != nil {
			return 0, fmt.Errorf("insert result %s: %w", r.File, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// RecordVerify stores a verification run; only invalid records get a row.
func (l *Ledger) RecordVerify(ctx context.Context, run Run, problems []api.Problem) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertRun(ctx, tx, run)
	if err != nil {
		return 0, err
	}
	for _, p := range problems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, file, outcome, reason) VALUES (?, ?, 'invalid', ?)`,
			id, p.File, strings.Join(p.Reasons, "; ")); err != nil {
			return 0, fmt.Errorf("insert problem %s: %w", p.File, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// History returns the most recent runs, newest first.
func (l *Ledger) History(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, command, dir, started_at, total, failed FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started int64
		if err := rows.Scan(&r.ID, &r.Command, &r.Dir, &started, &r.Total, &r.Failed); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Results returns the stored per-record rows of one run.
func (l *Ledger) Results(ctx context.Context, runID int64) ([]api.Result, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT file, outcome, COALESCE(actions, ''), COALESCE(record_id, ''), COALESCE(reason, ''), warnings
		 FROM results WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []api.Result
	for rows.Next() {
		var r api.Result
		var outcome, actions string
		var warnings []byte
		if err := rows.Scan(&r.File, &outcome, &actions, &r.ID, &r.Reason, &warnings); err != nil {
			return nil, err
		}
		r.Outcome = api.Outcome(outcome)
		if actions != "" {
			for _, a := range strings.Split(actions, ",") {
				r.Actions = append(r.Actions, api.Action(a))
			}
		}
		if len(warnings) > 0 {
			if err := json.Unmarshal(warnings, &r.Warnings); err != nil {
				return nil, fmt.Errorf("decode warnings for %s: %w", r.File, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (command, dir, started_at, total, failed) VALUES (?, ?, ?, ?, ?)`,
		run.Command, run.Dir, run.StartedAt.UnixNano(), run.Total, run.Failed)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}
