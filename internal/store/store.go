package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/Tispy-Bacon/wordfilter/internal"
	"github.com/Tispy-Bacon/wordfilter/internal/dictionary"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Store keeps a history of filtering runs and the outcome of every lookup
// they made. It is an audit log: nothing here is read back to classify a word.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		policy TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'running',
		total INTEGER NOT NULL DEFAULT 0,
		kept INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	-- lookups stores one row per word position checked during a run
	CREATE TABLE IF NOT EXISTS lookups (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		word TEXT NOT NULL,
		word_key TEXT NOT NULL,
		outcome TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		kept BOOLEAN NOT NULL DEFAULT FALSE,
		checked_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_lookups_word ON lookups(word_key);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun records the start of a run.
func (s *Store) CreateRun(ctx context.Context, run internal.RunRecord) error {
	startedAt := run.Timestamp
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_file, output_file, endpoint, policy, status, total, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputFile, run.OutputFile, run.Endpoint, run.Policy, StatusRunning, run.Total, startedAt.UTC())
	return err
}

// SaveLookup records the outcome for the word at position index of a run.
func (s *Store) SaveLookup(ctx context.Context, runID string, index int, res dictionary.Result, kept bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO lookups (run_id, idx, word, word_key, outcome, status, reason, kept, checked_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, index, res.Word, normalizeWord(res.Word), res.Outcome.String(), res.Status, res.Reason, kept, time.Now().UTC())
	return err
}

// CompleteRun marks a run as finished with its final counts.
func (s *Store) CompleteRun(ctx context.Context, runID string, kept, failed int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, kept = ?, failed = ?, finished_at = ? WHERE id = ?`,
		StatusCompleted, kept, failed, time.Now().UTC(), runID)
	return err
}

// FailRun marks a run as aborted by a fatal error.
func (s *Store) FailRun(ctx context.Context, runID, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		StatusFailed, errMsg, time.Now().UTC(), runID)
	return err
}

// Run is a row from the runs table.
type Run struct {
	ID         string
	InputFile  string
	OutputFile string
	Endpoint   string
	Policy     string
	Status     string
	Total      int
	Kept       int
	Failed     int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

const runColumns = `id, input_file, output_file, endpoint, policy, status, total, kept, failed, error, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var finished sql.NullTime
	if err := row.Scan(&r.ID, &r.InputFile, &r.OutputFile, &r.Endpoint, &r.Policy, &r.Status,
		&r.Total, &r.Kept, &r.Failed, &r.Error, &r.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return run, err
}

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// Lookup is a row from the lookups table.
type Lookup struct {
	RunID     string
	Index     int
	Word      string
	Outcome   string
	Status    int
	Reason    string
	Kept      bool
	CheckedAt time.Time
}

func (s *Store) queryLookups(ctx context.Context, query string, args ...any) ([]Lookup, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lookups []Lookup
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.RunID, &l.Index, &l.Word, &l.Outcome, &l.Status, &l.Reason, &l.Kept, &l.CheckedAt); err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

// GetLookups returns the lookups of a run in input order.
func (s *Store) GetLookups(ctx context.Context, runID string) ([]Lookup, error) {
	return s.queryLookups(ctx,
		`SELECT run_id, idx, word, outcome, status, reason, kept, checked_at FROM lookups WHERE run_id = ? ORDER BY idx`,
		runID)
}

// WordHistory returns every recorded lookup of word across runs, newest
// first. Matching ignores case and Unicode normalisation form.
func (s *Store) WordHistory(ctx context.Context, word string) ([]Lookup, error) {
	return s.queryLookups(ctx,
		`SELECT run_id, idx, word, outcome, status, reason, kept, checked_at FROM lookups WHERE word_key = ? ORDER BY checked_at DESC, rowid DESC`,
		normalizeWord(word))
}

// HistoryStats summarises the run history.
type HistoryStats struct {
	TotalRuns     int
	CompletedRuns int
	FailedRuns    int
	TotalLookups  int
	Defined       int
	Undefined     int
	Errors        int
}

// Stats returns summary statistics for the run history.
func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM runs`, StatusCompleted, StatusFailed).Scan(
		&stats.TotalRuns,
		&stats.CompletedRuns,
		&stats.FailedRuns,
	)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
		FROM lookups`,
		dictionary.OutcomeDefined.String(), dictionary.OutcomeUndefined.String(), dictionary.OutcomeError.String()).Scan(
		&stats.TotalLookups,
		&stats.Defined,
		&stats.Undefined,
		&stats.Errors,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Clear removes all runs and their lookups and returns the number of runs
// deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lookups`); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeWord lower-cases, trims and applies Unicode NFC normalization so
// history queries match regardless of how the word was typed.
func normalizeWord(word string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(word)))
}
