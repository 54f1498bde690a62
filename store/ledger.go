package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CapitalAccount is one strategy's capital ledger row.
//
// InitialCapital never changes. DeployedCapital is the sum of open
// position costs. LockedProfits accumulates realized gains and is
// walled off from trading; RealizedLosses accumulates loss magnitudes
// and shrinks the pool.
type CapitalAccount struct {
	Strategy        string
	InitialCapital  decimal.Decimal
	DeployedCapital decimal.Decimal
	LockedProfits   decimal.Decimal
	RealizedLosses  decimal.Decimal
	UpdatedAt       time.Time
}

// AvailableCash is initial − deployed − realized losses. Locked
// profits are excluded by construction: gains leave the pool, they are
// never reinvested.
func (a CapitalAccount) AvailableCash() decimal.Decimal {
	return a.InitialCapital.Sub(a.DeployedCapital).Sub(a.RealizedLosses)
}

// SeedAccount creates the capital account for a strategy if it does
// not exist yet. An existing account is left untouched: initial
// capital is immutable.
func (s *Store) SeedAccount(ctx context.Context, strategy string, initial decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO capital_accounts (strategy, initial_capital, deployed_capital, locked_profits, realized_losses, updated_at)
		VALUES (?, ?, '0', '0', '0', ?)
		ON CONFLICT(strategy) DO NOTHING`,
		strategy, initial.String(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("seed account %s: %w", strategy, err)
	}
	return nil
}

// Account returns the ledger row for a strategy.
func (s *Store) Account(ctx context.Context, strategy string) (CapitalAccount, error) {
	return accountTx(ctx, s.db, strategy)
}

// querier covers both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func accountTx(ctx context.Context, q querier, strategy string) (CapitalAccount, error) {
	acct := CapitalAccount{Strategy: strategy}
	var initial, deployed, locked, losses string
	err := q.QueryRowContext(ctx, `
		SELECT initial_capital, deployed_capital, locked_profits, realized_losses, updated_at
		FROM capital_accounts WHERE strategy = ?`, strategy,
	).Scan(&initial, &deployed, &locked, &losses, &acct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return acct, fmt.Errorf("%w: %s", ErrNoAccount, strategy)
	}
	if err != nil {
		return acct, fmt.Errorf("load account %s: %w", strategy, err)
	}

	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&acct.InitialCapital, initial},
		{&acct.DeployedCapital, deployed},
		{&acct.LockedProfits, locked},
		{&acct.RealizedLosses, losses},
	} {
		d, err := parseDec(f.src)
		if err != nil {
			return acct, fmt.Errorf("account %s: %w", strategy, err)
		}
		*f.dst = d
	}
	return acct, nil
}

// Debit moves amount from available cash into deployed capital. It
// fails with ErrInsufficientCapital when the account cannot cover it;
// the ledger, not the caller, is the authority on that.
func (s *Store) Debit(ctx context.Context, strategy string, amount decimal.Decimal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return debitTx(ctx, tx, strategy, amount)
	})
}

// Credit returns a closed position's cost from deployed capital to
// available cash.
func (s *Store) Credit(ctx context.Context, strategy string, amount decimal.Decimal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return creditTx(ctx, tx, strategy, amount)
	})
}

// ApplyPnL books a realized result: gains lock into LockedProfits and
// leave the pool, losses add to RealizedLosses and shrink it.
func (s *Store) ApplyPnL(ctx context.Context, strategy string, pnl decimal.Decimal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return applyPnLTx(ctx, tx, strategy, pnl)
	})
}

func debitTx(ctx context.Context, tx *sql.Tx, strategy string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit %s: negative amount %s", strategy, amount)
	}
	acct, err := accountTx(ctx, tx, strategy)
	if err != nil {
		return err
	}
	if amount.GreaterThan(acct.AvailableCash()) {
		return fmt.Errorf("%w: %s needs %s, available %s",
			ErrInsufficientCapital, strategy, amount, acct.AvailableCash())
	}
	return updateAccount(ctx, tx, strategy, acct.DeployedCapital.Add(amount), acct.LockedProfits, acct.RealizedLosses)
}

func creditTx(ctx context.Context, tx *sql.Tx, strategy string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit %s: negative amount %s", strategy, amount)
	}
	acct, err := accountTx(ctx, tx, strategy)
	if err != nil {
		return err
	}
	deployed := acct.DeployedCapital.Sub(amount)
	if deployed.IsNegative() {
		return fmt.Errorf("credit %s: %s exceeds deployed %s", strategy, amount, acct.DeployedCapital)
	}
	return updateAccount(ctx, tx, strategy, deployed, acct.LockedProfits, acct.RealizedLosses)
}

func applyPnLTx(ctx context.Context, tx *sql.Tx, strategy string, pnl decimal.Decimal) error {
	acct, err := accountTx(ctx, tx, strategy)
	if err != nil {
		return err
	}
	if pnl.IsPositive() {
		return updateAccount(ctx, tx, strategy, acct.DeployedCapital, acct.LockedProfits.Add(pnl), acct.RealizedLosses)
	}
	return updateAccount(ctx, tx, strategy, acct.DeployedCapital, acct.LockedProfits, acct.RealizedLosses.Add(pnl.Abs()))
}

func updateAccount(ctx context.Context, tx *sql.Tx, strategy string, deployed, locked, losses decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE capital_accounts
		SET deployed_capital = ?, locked_profits = ?, realized_losses = ?, updated_at = ?
		WHERE strategy = ?`,
		deployed.String(), locked.String(), losses.String(), time.Now().UTC(), strategy,
	)
	if err != nil {
		return fmt.Errorf("update account %s: %w", strategy, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNoAccount, strategy)
	}
	return nil
}
