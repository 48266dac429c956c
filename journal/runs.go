package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/riskbudget/plan"
)

// RecordRun stores a plan's summary and per-trade results.
func (j *SQLite) RecordRun(ctx context.Context, p plan.Plan) error {
	if p.ID == "" {
		return errors.New("record run: plan has no id")
	}
	s := p.Summary
	return j.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO allocation_runs
			(run_id, created, total_risk, used_risk, leftover, active_count, active_weight, enabled_count, invalid_count, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.CreatedAt.UTC(), s.TotalRisk, s.UsedRisk, s.Leftover,
			s.ActiveCount, s.ActiveWeight, s.EnabledCount, s.InvalidCount, s.Note,
		)
		if err != nil {
			return fmt.Errorf("insert run %s: %w", p.ID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO allocation_results (run_id, deal_id, pair, risk, active, status, weight, lots)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range p.Rows {
			var lots sql.NullFloat64
			if r.Lots != nil {
				lots = sql.NullFloat64{Float64: r.Lots.Lots, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, p.ID, r.ID, r.Pair, r.Risk, r.Active, string(r.Status), r.Weight, lots); err != nil {
				return fmt.Errorf("insert result %s/%s: %w", p.ID, r.ID, err)
			}
		}
		return nil
	})
}

// ListRuns returns the newest runs first, without their results.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, created, total_risk, used_risk, leftover, active_count, active_weight, enabled_count, invalid_count, note
		FROM allocation_runs
		ORDER BY created DESC, run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun returns one run with its results in deal order.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT run_id, created, total_risk, used_risk, leftover, active_count, active_weight, enabled_count, invalid_count, note
		FROM allocation_runs
		WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
		}
		return RunRecord{}, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT deal_id, pair, risk, active, status, weight, lots
		FROM allocation_results
		WHERE run_id = ?
		ORDER BY rowid ASC`, runID)
	if err != nil {
		return RunRecord{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r    RunResult
			lots sql.NullFloat64
		)
		if err := rows.Scan(&r.DealID, &r.Pair, &r.Risk, &r.Active, &r.Status, &r.Weight, &lots); err != nil {
			return RunRecord{}, err
		}
		r.Lots = fromNullable(lots)
		rec.Results = append(rec.Results, r)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

func scanRun(s scanner) (RunRecord, error) {
	var (
		rec     RunRecord
		created time.Time
	)
	err := s.Scan(
		&rec.RunID,
		&created,
		&rec.Summary.TotalRisk,
		&rec.Summary.UsedRisk,
		&rec.Summary.Leftover,
		&rec.Summary.ActiveCount,
		&rec.Summary.ActiveWeight,
		&rec.Summary.EnabledCount,
		&rec.Summary.InvalidCount,
		&rec.Summary.Note,
	)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Created = created.UTC()
	return rec, nil
}
