package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/swingtrader/market"
	"github.com/rustyeddy/swingtrader/risk"
)

// Position statuses.
const (
	StatusHold   = "HOLD"
	StatusClosed = "CLOSED"
)

// Position is one holding of a strategy. At most one HOLD row exists
// per (ticker, strategy); the partial unique index and the in-
// transaction check in EnterPosition both enforce it.
type Position struct {
	ID           string
	Ticker       string
	Strategy     string
	Category     market.Category
	Sector       string
	EntryPrice   float64
	Quantity     int64
	StopLoss     float64
	TakeProfit   float64
	StopMethod   string
	HighestPrice float64
	EntryDate    time.Time
	Status       string
	ExitPrice    float64
	ExitDate     time.Time
	ExitReason   string
	RealizedPnL  decimal.Decimal
}

// Cost is the ledger value of the position at entry.
func (p Position) Cost() decimal.Decimal {
	return Cost(p.EntryPrice, p.Quantity)
}

// DaysHeld is the position's calendar age.
func (p Position) DaysHeld(now time.Time) int {
	return market.DaysBetween(p.EntryDate, now)
}

// EnterPosition opens a position and debits its cost in one
// transaction: duplicate-open check, ledger debit, position insert and
// the BUY journal row all commit or roll back together. The returned
// position carries its generated id.
func (s *Store) EnterPosition(ctx context.Context, pos Position) (Position, error) {
	pos.ID = ulid.Make().String()
	pos.Status = StatusHold
	if pos.HighestPrice < pos.EntryPrice {
		pos.HighestPrice = pos.EntryPrice
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM positions WHERE ticker = ? AND strategy = ? AND status = ?`,
			pos.Ticker, pos.Strategy, StatusHold,
		).Scan(&n); err != nil {
			return fmt.Errorf("check open %s: %w", pos.Ticker, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s/%s", ErrDuplicatePosition, pos.Ticker, pos.Strategy)
		}

		if err := debitTx(ctx, tx, pos.Strategy, pos.Cost()); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO positions
			(id, ticker, strategy, category, sector, entry_price, quantity, stop_loss, take_profit,
			 stop_method, highest_price, entry_date, status, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pos.ID, pos.Ticker, pos.Strategy, string(pos.Category), pos.Sector,
			pos.EntryPrice, pos.Quantity, pos.StopLoss, pos.TakeProfit,
			pos.StopMethod, pos.HighestPrice, pos.EntryDate.UTC(), StatusHold, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("insert position %s: %w", pos.Ticker, err)
		}

		return recordTradeTx(ctx, tx, TradeRecord{
			Ticker:     pos.Ticker,
			Strategy:   pos.Strategy,
			Side:       "BUY",
			Quantity:   pos.Quantity,
			Price:      pos.EntryPrice,
			Reason:     "ENTRY",
			ExecutedAt: pos.EntryDate,
		})
	})
	if err != nil {
		return Position{}, err
	}
	return pos, nil
}

// ExitPosition closes the open position on (ticker, strategy) at
// exitPrice: the row flips to CLOSED with its realized pnl frozen, the
// entry cost is credited back, the pnl is booked, and the SELL journal
// row is written, all in one transaction.
func (s *Store) ExitPosition(ctx context.Context, ticker, strategy string, exitPrice float64, reason string, now time.Time) (Position, error) {
	var pos Position
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectPosition+`
			WHERE ticker = ? AND strategy = ? AND status = ?`,
			ticker, strategy, StatusHold)
		var err error
		pos, err = scanPosition(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s/%s", ErrPositionNotFound, ticker, strategy)
		}
		if err != nil {
			return err
		}

		cost := pos.Cost()
		proceeds := Cost(exitPrice, pos.Quantity)
		pnl := proceeds.Sub(cost)

		if _, err := tx.ExecContext(ctx, `
			UPDATE positions
			SET status = ?, exit_price = ?, exit_date = ?, exit_reason = ?, realized_pnl = ?, updated_at = ?
			WHERE id = ?`,
			StatusClosed, exitPrice, now.UTC(), reason, pnl.String(), time.Now().UTC(), pos.ID,
		); err != nil {
			return fmt.Errorf("close position %s: %w", ticker, err)
		}

		if err := creditTx(ctx, tx, strategy, cost); err != nil {
			return err
		}
		if err := applyPnLTx(ctx, tx, strategy, pnl); err != nil {
			return err
		}

		pos.Status = StatusClosed
		pos.ExitPrice = exitPrice
		pos.ExitDate = now.UTC()
		pos.ExitReason = reason
		pos.RealizedPnL = pnl

		return recordTradeTx(ctx, tx, TradeRecord{
			Ticker:     ticker,
			Strategy:   strategy,
			Side:       "SELL",
			Quantity:   pos.Quantity,
			Price:      exitPrice,
			Reason:     reason,
			ExecutedAt: now,
		})
	})
	if err != nil {
		return Position{}, err
	}
	return pos, nil
}

// ActivePositions lists a strategy's open positions, oldest first.
func (s *Store) ActivePositions(ctx context.Context, strategy string) ([]Position, error) {
	rows, err := s.db.QueryContext(ctx, selectPosition+`
		WHERE strategy = ? AND status = ? ORDER BY entry_date, ticker`,
		strategy, StatusHold)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, rows.Err()
}

// UpdateStops persists a re-tightened stop. The caller guarantees
// monotonicity; the store just records it.
func (s *Store) UpdateStops(ctx context.Context, id string, stopLoss, takeProfit float64, method string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE positions SET stop_loss = ?, take_profit = ?, stop_method = ?, updated_at = ?
		WHERE id = ?`,
		stopLoss, takeProfit, method, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update stops %s: %w", id, err)
	}
	return nil
}

// MarkHighestPrice records a new high-water mark for the position.
func (s *Store) MarkHighestPrice(ctx context.Context, id string, price float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE positions SET highest_price = ?, updated_at = ?
		WHERE id = ? AND highest_price < ?`,
		price, time.Now().UTC(), id, price)
	if err != nil {
		return fmt.Errorf("mark high %s: %w", id, err)
	}
	return nil
}

// Snapshot aggregates the open book for the limit enforcer. Total
// capital is the account's initial capital; exposures are entry costs.
func (s *Store) Snapshot(ctx context.Context, strategy string) (risk.PortfolioState, error) {
	state := risk.PortfolioState{
		ByCategory:       make(map[market.Category]int),
		BySector:         make(map[string]int),
		CategoryExposure: make(map[market.Category]float64),
	}

	acct, err := s.Account(ctx, strategy)
	if err != nil {
		return state, err
	}
	state.TotalCapital = acct.InitialCapital.InexactFloat64()

	positions, err := s.ActivePositions(ctx, strategy)
	if err != nil {
		return state, err
	}
	for _, p := range positions {
		cost := p.Cost().InexactFloat64()
		state.TotalPositions++
		state.ByCategory[p.Category]++
		if p.Sector != "" {
			state.BySector[p.Sector]++
		}
		state.CategoryExposure[p.Category] += cost
		state.TotalExposure += cost
	}
	return state, nil
}

// RecentLossExit reports whether ticker was exited at a loss on or
// after since. Used to keep freshly burned names off the buy list.
func (s *Store) RecentLossExit(ctx context.Context, ticker, strategy string, since time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM positions
		WHERE ticker = ? AND strategy = ? AND status = ?
		  AND exit_date >= ? AND CAST(realized_pnl AS REAL) < 0`,
		ticker, strategy, StatusClosed, since.UTC(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("recent exits %s: %w", ticker, err)
	}
	return n > 0, nil
}

const selectPosition = `
	SELECT id, ticker, strategy, category, sector, entry_price, quantity, stop_loss, take_profit,
	       stop_method, highest_price, entry_date, status, exit_price, exit_date, exit_reason, realized_pnl
	FROM positions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (Position, error) {
	var (
		pos        Position
		category   string
		exitPrice  sql.NullFloat64
		exitDate   sql.NullTime
		exitReason sql.NullString
		pnl        sql.NullString
	)
	err := row.Scan(
		&pos.ID, &pos.Ticker, &pos.Strategy, &category, &pos.Sector,
		&pos.EntryPrice, &pos.Quantity, &pos.StopLoss, &pos.TakeProfit,
		&pos.StopMethod, &pos.HighestPrice, &pos.EntryDate, &pos.Status,
		&exitPrice, &exitDate, &exitReason, &pnl,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pos, err
		}
		return pos, fmt.Errorf("scan position: %w", err)
	}

	pos.Category = market.Category(category)
	pos.ExitPrice = exitPrice.Float64
	if exitDate.Valid {
		pos.ExitDate = exitDate.Time
	}
	pos.ExitReason = exitReason.String
	if pnl.Valid && pnl.String != "" {
		d, err := parseDec(pnl.String)
		if err != nil {
			return pos, err
		}
		pos.RealizedPnL = d
	}
	return pos, nil
}
