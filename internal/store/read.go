package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eabdelfa/03-philosophers/internal/analyzer"
	"github.com/eabdelfa/03-philosophers/internal/harness"
	"github.com/eabdelfa/03-philosophers/internal/runner"
)

// RunSummary is one row of the run history.
type RunSummary struct {
	ID          string    `json:"id"`
	Suite       string    `json:"suite"`
	Digest      string    `json:"suite_digest"`
	Binary      string    `json:"binary"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Total       int       `json:"total"`
	Interrupted bool      `json:"interrupted,omitempty"`
}

// CaseRecord is the outcome of one named case in one recorded run.
type CaseRecord struct {
	RunID     string           `json:"run_id"`
	Suite     string           `json:"suite"`
	StartedAt time.Time        `json:"started_at"`
	Passed    bool             `json:"passed"`
	Reason    string           `json:"reason"`
	Outcome   analyzer.Outcome `json:"outcome"`
}

type scanner interface {
	Scan(dest ...any) error
}

// ListRuns returns the most recent runs first. A non-positive limit
// returns every run. An empty suite matches all suites.
func (s *Store) ListRuns(ctx context.Context, suite string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, suite, suite_digest, binary_path, started_at, finished_at, passed, failed, total, interrupted
		FROM runs
		WHERE ? = '' OR suite = ?
		ORDER BY id COLLATE BINARY DESC
		LIMIT ?
	`, suite, suite, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun rebuilds the report recorded under id.
func (s *Store) GetRun(ctx context.Context, id string) (*harness.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, suite, suite_digest, binary_path, started_at, finished_at, passed, failed, total, interrupted
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	report := &harness.Report{
		ID:          run.ID,
		Suite:       run.Suite,
		Digest:      run.Digest,
		Binary:      run.Binary,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		Interrupted: run.Interrupted,
		Entries:     []harness.Entry{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, args, description, passed, reason, outcome, kind, exit_code, duration_ns
		FROM entries
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e          harness.Entry
			args       string
			passed     int
			outcome    string
			kind       string
			durationNs int64
		)
		if err := rows.Scan(&e.Name, &args, &e.Description, &passed, &e.Reason,
			&outcome, &kind, &e.ExitCode, &durationNs); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Args, err = unmarshalArgs(args); err != nil {
			return nil, err
		}
		e.Passed = passed != 0
		e.Outcome = analyzer.Outcome(outcome)
		e.Kind = runner.Kind(kind)
		e.Duration = time.Duration(durationNs)
		report.Entries = append(report.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return report, nil
}

// CaseHistory returns the recorded outcomes of the case called name,
// most recent first.
func (s *Store) CaseHistory(ctx context.Context, name string, limit int) ([]CaseRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.suite, r.started_at, e.passed, e.reason, e.outcome
		FROM entries e
		JOIN runs r ON r.id = e.run_id
		WHERE e.name = ?
		ORDER BY r.id COLLATE BINARY DESC, e.seq ASC
		LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query case history: %w", err)
	}
	defer rows.Close()

	records := []CaseRecord{}
	for rows.Next() {
		var (
			rec     CaseRecord
			started string
			passed  int
			outcome string
		)
		if err := rows.Scan(&rec.RunID, &rec.Suite, &started, &passed, &rec.Reason, &outcome); err != nil {
			return nil, fmt.Errorf("scan case history: %w", err)
		}
		if rec.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		rec.Passed = passed != 0
		rec.Outcome = analyzer.Outcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case history: %w", err)
	}
	return records, nil
}

func scanRun(row scanner) (RunSummary, error) {
	var (
		run         RunSummary
		started     string
		finished    string
		interrupted int
	)
	if err := row.Scan(&run.ID, &run.Suite, &run.Digest, &run.Binary, &started, &finished,
		&run.Passed, &run.Failed, &run.Total, &interrupted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunSummary{}, err
		}
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return RunSummary{}, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return RunSummary{}, err
	}
	run.Interrupted = interrupted != 0
	return run, nil
}
