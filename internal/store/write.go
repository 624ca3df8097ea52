package store

import (
	"context"
	"fmt"

	"github.com/eabdelfa/03-philosophers/internal/harness"
)

// SaveReport records a report and its entries in one transaction.
// Saving a report whose ID already exists is silently ignored.
func (s *Store) SaveReport(ctx context.Context, r *harness.Report) error {
	if r.ID == "" {
		return fmt.Errorf("save report: missing run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save report: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, suite, suite_digest, binary_path, started_at, finished_at, passed, failed, total, interrupted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Suite,
		r.Digest,
		r.Binary,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
		r.PassedCount(),
		r.FailedCount(),
		r.Total(),
		boolToInt(r.Interrupted),
	)
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries
		(run_id, seq, name, args, description, passed, reason, outcome, kind, exit_code, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save report %s: prepare entries: %w", r.ID, err)
	}
	defer stmt.Close()

	for i, e := range r.Entries {
		args, err := marshalArgs(e.Args)
		if err != nil {
			return fmt.Errorf("save report %s: entry %d: %w", r.ID, i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			i,
			e.Name,
			args,
			e.Description,
			boolToInt(e.Passed),
			e.Reason,
			string(e.Outcome),
			string(e.Kind),
			e.ExitCode,
			int64(e.Duration),
		); err != nil {
			return fmt.Errorf("save report %s: entry %d: %w", r.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save report %s: commit: %w", r.ID, err)
	}
	return nil
}

// DeleteRun removes a run and its entries.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrNotFound)
	}
	return nil
}
