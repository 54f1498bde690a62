package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rustyeddy/swingtrader/market"
)

// Market regime labels. Producing the regime is out of scope; the
// pipeline only consumes the row.
const (
	RegimeBull    = "BULL"
	RegimeNeutral = "NEUTRAL"
	RegimeBear    = "BEAR"
)

// Regime scales and gates new entries: Multiplier shrinks deployable
// capital in defensive tape, AllowEntries false blocks entries
// outright.
type Regime struct {
	Name         string
	Multiplier   float64
	AllowEntries bool
	UpdatedAt    time.Time
}

// SetRegime replaces the single regime row.
func (s *Store) SetRegime(ctx context.Context, r Regime) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO market_regime (id, regime, multiplier, allow_entries, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			regime = excluded.regime,
			multiplier = excluded.multiplier,
			allow_entries = excluded.allow_entries,
			updated_at = excluded.updated_at`,
		r.Name, r.Multiplier, boolToInt(r.AllowEntries), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set regime: %w", err)
	}
	return nil
}

// CurrentRegime returns the regime row, defaulting to NEUTRAL with
// full sizing when none has been set.
func (s *Store) CurrentRegime(ctx context.Context) (Regime, error) {
	var (
		r     Regime
		allow int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT regime, multiplier, allow_entries, updated_at FROM market_regime WHERE id = 1`,
	).Scan(&r.Name, &r.Multiplier, &allow, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Regime{Name: RegimeNeutral, Multiplier: 1, AllowEntries: true}, nil
	}
	if err != nil {
		return r, fmt.Errorf("load regime: %w", err)
	}
	r.AllowEntries = allow != 0
	return r, nil
}

// SetHalt arms the kill switch for day. While the row exists the entry
// pipeline refuses to run.
func (s *Store) SetHalt(ctx context.Context, day time.Time, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trading_halts (halt_date, reason, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(halt_date) DO UPDATE SET reason = excluded.reason`,
		market.Day(day), reason, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set halt: %w", err)
	}
	return nil
}

// ClearHalt disarms the kill switch for day.
func (s *Store) ClearHalt(ctx context.Context, day time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM trading_halts WHERE halt_date = ?`, market.Day(day)); err != nil {
		return fmt.Errorf("clear halt: %w", err)
	}
	return nil
}

// ActiveHalt reports whether trading is halted on day and why.
func (s *Store) ActiveHalt(ctx context.Context, day time.Time) (string, bool, error) {
	var reason string
	err := s.db.QueryRowContext(ctx,
		`SELECT reason FROM trading_halts WHERE halt_date = ?`, market.Day(day),
	).Scan(&reason)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load halt: %w", err)
	}
	return reason, true, nil
}

// TradeRecord is one row of the append-only trade journal.
type TradeRecord struct {
	ID         string
	Ticker     string
	Strategy   string
	Side       string
	Quantity   int64
	Price      float64
	Reason     string
	ExecutedAt time.Time
}

func recordTradeTx(ctx context.Context, tx *sql.Tx, rec TradeRecord) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO trades (id, ticker, strategy, side, quantity, price, reason, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Ticker, rec.Strategy, rec.Side, rec.Quantity, rec.Price, rec.Reason, rec.ExecutedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record trade %s: %w", rec.Ticker, err)
	}
	return nil
}

// Trades returns a strategy's most recent journal rows, newest first.
func (s *Store) Trades(ctx context.Context, strategy string, limit int) ([]TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, strategy, side, quantity, price, reason, executed_at
		FROM trades WHERE strategy = ? ORDER BY executed_at DESC, id DESC LIMIT ?`,
		strategy, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(&rec.ID, &rec.Ticker, &rec.Strategy, &rec.Side,
			&rec.Quantity, &rec.Price, &rec.Reason, &rec.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
