package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/rustyeddy/riskbudget/pkg/id"
	"github.com/rustyeddy/riskbudget/risk"
)

const dealColumns = `id, pair, direction, open, sl, tp, lots, deposit, deposit_currency, created`

type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(s scanner) (risk.Deal, error) {
	var (
		d            risk.Deal
		open, sl, tp sql.NullFloat64
	)
	err := s.Scan(&d.ID, &d.Pair, &d.Direction, &open, &sl, &tp, &d.Lots, &d.Deposit, &d.DepositCurrency, &d.Created)
	if err != nil {
		return risk.Deal{}, err
	}
	d.Open, d.StopLoss, d.TakeProfit = fromNullable(open), fromNullable(sl), fromNullable(tp)
	return d, nil
}

// ListDeals returns deals in the order they were added.
func (j *SQLite) ListDeals(ctx context.Context) ([]risk.Deal, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+dealColumns+` FROM deals ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []risk.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDeal returns a single deal by ID.
func (j *SQLite) GetDeal(ctx context.Context, dealID string) (risk.Deal, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, dealID)
	d, err := scanDeal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return risk.Deal{}, fmt.Errorf("deal %q: %w", dealID, ErrNotFound)
		}
		return risk.Deal{}, err
	}
	return d, nil
}

// SaveDeal inserts or updates a deal. A deal without an ID gets a new one
// and goes to the end of the list.
func (j *SQLite) SaveDeal(ctx context.Context, d risk.Deal) (risk.Deal, error) {
	if d.ID == "" {
		d.ID = id.New()
	}
	d.Created = createdAt(d)
	d.Pair = market.NormalizePair(d.Pair)

	err := j.withTx(ctx, func(tx *sql.Tx) error {
		return upsertDeal(ctx, tx, d, -1)
	})
	if err != nil {
		return risk.Deal{}, fmt.Errorf("save deal %s: %w", d.ID, err)
	}
	return d, nil
}

// createdAt falls back to the time encoded in a ULID, then to now.
func createdAt(d risk.Deal) int64 {
	if d.Created != 0 {
		return d.Created
	}
	if t, ok := id.Time(d.ID); ok {
		return t.UnixMilli()
	}
	return time.Now().UnixMilli()
}

// upsertDeal keeps an existing row's position. pos < 0 appends.
func upsertDeal(ctx context.Context, tx *sql.Tx, d risk.Deal, pos int) error {
	if pos < 0 {
		row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM deals`)
		if err := row.Scan(&pos); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO deals (id, position, pair, direction, open, sl, tp, lots, deposit, deposit_currency, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pair = excluded.pair,
			direction = excluded.direction,
			open = excluded.open,
			sl = excluded.sl,
			tp = excluded.tp,
			lots = excluded.lots,
			deposit = excluded.deposit,
			deposit_currency = excluded.deposit_currency`,
		d.ID, pos, d.Pair, d.Direction,
		nullable(d.Open), nullable(d.StopLoss), nullable(d.TakeProfit),
		d.Lots, d.Deposit, d.DepositCurrency, d.Created,
	)
	return err
}

// DeleteDeal removes a deal and its params.
func (j *SQLite) DeleteDeal(ctx context.Context, dealID string) error {
	return j.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, dealID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("deal %q: %w", dealID, ErrNotFound)
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM params WHERE deal_id = ?`, dealID)
		return err
	})
}

// ReplaceDeals swaps the whole deal list, keeping the given order. Params
// of deals that are gone are dropped.
func (j *SQLite) ReplaceDeals(ctx context.Context, deals []risk.Deal) error {
	return j.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM deals`); err != nil {
			return err
		}
		for i, d := range deals {
			d.Created = createdAt(d)
			d.Pair = market.NormalizePair(d.Pair)
			if err := upsertDeal(ctx, tx, d, i); err != nil {
				return fmt.Errorf("deal %s: %w", d.ID, err)
			}
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM params WHERE deal_id NOT IN (SELECT id FROM deals)`)
		return err
	})
}

// LoadParams returns params keyed by deal ID.
func (j *SQLite) LoadParams(ctx context.Context) (map[string]risk.Params, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT deal_id, data FROM params`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]risk.Params)
	for rows.Next() {
		var (
			dealID, data string
			p            risk.Params
		)
		if err := rows.Scan(&dealID, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("params for %s: %w", dealID, err)
		}
		out[dealID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) SaveParams(ctx context.Context, dealID string, p risk.Params) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO params (deal_id, data) VALUES (?, ?)
		ON CONFLICT(deal_id) DO UPDATE SET data = excluded.data`,
		dealID, string(data),
	)
	if err != nil {
		return fmt.Errorf("save params %s: %w", dealID, err)
	}
	return nil
}

// LoadSettings returns the stored settings, or the defaults if none were
// saved yet.
func (j *SQLite) LoadSettings(ctx context.Context) (risk.Settings, error) {
	var s risk.Settings
	row := j.db.QueryRowContext(ctx, `SELECT total_risk, max_risk, usefulness_share FROM settings WHERE id = 1`)
	if err := row.Scan(&s.TotalRisk, &s.MaxRisk, &s.UsefulnessShare); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return risk.DefaultSettings(), nil
		}
		return risk.Settings{}, err
	}
	return risk.NormalizeSettings(s), nil
}

func (j *SQLite) SaveSettings(ctx context.Context, s risk.Settings) error {
	s = risk.NormalizeSettings(s)
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO settings (id, total_risk, max_risk, usefulness_share) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_risk = excluded.total_risk,
			max_risk = excluded.max_risk,
			usefulness_share = excluded.usefulness_share`,
		s.TotalRisk, s.MaxRisk, s.UsefulnessShare,
	)
	return err
}

// SeedSettings stores s only if no settings were saved before.
func (j *SQLite) SeedSettings(ctx context.Context, s risk.Settings) error {
	s = risk.NormalizeSettings(s)
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO settings (id, total_risk, max_risk, usefulness_share) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		s.TotalRisk, s.MaxRisk, s.UsefulnessShare,
	)
	return err
}
