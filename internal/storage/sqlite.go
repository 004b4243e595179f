package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"semgate/internal/report"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			baseline_id TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			preserved INTEGER NOT NULL,
			score REAL NOT NULL,
			parse_error TEXT,
			report JSON,
			created_at TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_baseline ON runs(baseline_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const insertRunQuery = `
	INSERT INTO runs (baseline_id, candidate_id, preserved, score, parse_error, report, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// SaveReport appends a single pair report to the history.
func (s *SQLiteStore) SaveReport(ctx context.Context, r *report.Report) (int64, error) {
	preserved, score := runColumns(r)

	payload, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("failed to encode report: %w", err)
	}

	res, err := s.db.ExecContext(ctx, insertRunQuery,
		r.BaselineID, r.CandidateID, preserved, score, r.ParseError, payload, r.GeneratedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SaveBatch appends every report of a batch in one transaction.
func (s *SQLiteStore) SaveBatch(ctx context.Context, b *report.BatchReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRunQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range b.Reports {
		preserved, score := runColumns(r)

		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report for %s: %w", r.CandidateID, err)
		}

		if _, err := stmt.Exec(r.BaselineID, r.CandidateID, preserved, score, r.ParseError, payload, r.GeneratedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, baseline_id, candidate_id, preserved, score, parse_error, report, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run by its ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, baseline_id, candidate_id, preserved, score, parse_error, report, created_at
		FROM runs WHERE id = ?`, id)
	return scanRun(row.Scan)
}

func runColumns(r *report.Report) (preserved bool, score float64) {
	if r.Verdict != nil {
		preserved = r.Verdict.Preserved
		score = r.Verdict.Score
	}
	return preserved, score
}

func scanRun(scan func(dest ...any) error) (*Run, error) {
	var run Run
	var parseErr sql.NullString
	var payload []byte
	if err := scan(&run.ID, &run.BaselineID, &run.CandidateID, &run.Preserved, &run.Score, &parseErr, &payload, &run.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.ParseError = parseErr.String
	if len(payload) > 0 {
		var r report.Report
		if err := json.Unmarshal(payload, &r); err == nil {
			run.Report = &r
		}
	}
	return &run, nil
}
