package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, operation, root, dry_run, status, error_message, export_path, started_at, finished_at, " +
	"tagged, skipped, failed, matches, mismatches, parse_errors, unreadable, untagged, moved, renamed"

// RecordRun stores a finished run and its per-file outcomes in one
// transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, outcomes []Outcome) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is empty")
	}
	return retryOnBusy(ctx, func() error {
		return s.recordRun(ctx, run, outcomes)
	})
}

func (s *Store) recordRun(ctx context.Context, run Run, outcomes []Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c := run.Counts
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Operation,
		run.Root,
		boolToInt(run.DryRun),
		run.Status,
		nullableString(run.Error),
		nullableString(run.ExportPath),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		c.Tagged, c.Skipped, c.Failed,
		c.Matches, c.Mismatches, c.ParseErrors, c.Unreadable, c.Untagged,
		c.Moved, c.Renamed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(outcomes) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO outcomes (run_id, seq, path, state, target, expected, actual, detail)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare outcome insert: %w", err)
		}
		defer stmt.Close()
		for i, o := range outcomes {
			if _, err := stmt.ExecContext(ctx,
				run.ID, i, o.Path, o.State,
				nullableString(o.Target),
				nullableString(o.Expected),
				nullableString(o.Actual),
				nullableString(o.Detail),
			); err != nil {
				return fmt.Errorf("insert outcome %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun resolves a full run ID or a unique prefix of one.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	ctx = ensureContext(ctx)
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		idOrPrefix, len(idOrPrefix), idOrPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return &found[0], nil
	default:
		for i := range found {
			if found[i].ID == idOrPrefix {
				return &found[i], nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// RunOutcomes returns the per-file outcomes of a run in processing order.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]Outcome, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, state, target, expected, actual, detail FROM outcomes WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o                                Outcome
			target, expected, actual, detail sql.NullString
		)
		if err := rows.Scan(&o.Path, &o.State, &target, &expected, &actual, &detail); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Target = target.String
		o.Expected = expected.String
		o.Actual = actual.String
		o.Detail = detail.String
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}

// Prune deletes runs that started before cutoff along with their outcomes.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stamp := formatTime(cutoff)
		// foreign_keys is per connection, so outcomes are removed explicitly.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM outcomes WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, stamp); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, stamp)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run                   Run
		dryRun                int
		errMsg, exportPath    sql.NullString
		startedRaw, finishRaw string
	)
	c := &run.Counts
	if err := scanner.Scan(
		&run.ID, &run.Operation, &run.Root, &dryRun, &run.Status, &errMsg, &exportPath,
		&startedRaw, &finishRaw,
		&c.Tagged, &c.Skipped, &c.Failed,
		&c.Matches, &c.Mismatches, &c.ParseErrors, &c.Unreadable, &c.Untagged,
		&c.Moved, &c.Renamed,
	); err != nil {
		return Run{}, err
	}
	run.DryRun = dryRun != 0
	run.Error = errMsg.String
	run.ExportPath = exportPath.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishRaw)
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
