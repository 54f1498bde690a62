package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/swingtrader/market"
)

// HoldMode says how a human override affects circuit-breaker handling
// for one ticker on one day.
type HoldMode string

const (
	// HoldSuppressed acknowledges an alert: no more alerts today, the
	// hard stop still fires.
	HoldSuppressed HoldMode = "SUPPRESSED"
	// HoldSmartStop hands the position entirely to the stop
	// synthesizer; circuit-breaker evaluation is skipped.
	HoldSmartStop HoldMode = "SMART_STOP"
)

// AddHold records a hold command for (ticker, strategy) on day.
// Re-issuing the same command is a no-op; issuing a different mode the
// same day replaces it (an operator can upgrade a hold to smart-stop).
// Holds are never deleted; they expire by their date.
func (s *Store) AddHold(ctx context.Context, ticker, strategy string, mode HoldMode, day time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO circuit_breaker_holds (ticker, strategy, mode, hold_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker, strategy, hold_date) DO UPDATE SET mode = excluded.mode`,
		ticker, strategy, string(mode), market.Day(day), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("add hold %s: %w", ticker, err)
	}
	return nil
}

// HoldFor returns the hold in force for (ticker, strategy) on day, if
// any. Rows from other days are dead by definition; the date filter
// here is the expiry mechanism.
func (s *Store) HoldFor(ctx context.Context, ticker, strategy string, day time.Time) (HoldMode, bool, error) {
	var mode string
	err := s.db.QueryRowContext(ctx, `
		SELECT mode FROM circuit_breaker_holds
		WHERE ticker = ? AND strategy = ? AND hold_date = ?`,
		ticker, strategy, market.Day(day),
	).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load hold %s: %w", ticker, err)
	}
	return HoldMode(mode), true, nil
}
