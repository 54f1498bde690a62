// Package store is the system of record: positions, per-strategy
// capital accounts, circuit-breaker holds, trading halts, the market
// regime row and the append-only trade journal, all in one SQLite
// file. Money is stored as decimal text so the capital conservation
// invariant (deployed + available + losses = initial) holds exactly.
//
// Concurrent strategy runs share the file; every read-modify-write
// happens inside an immediate transaction so two overlapping runs
// cannot double-spend an account or double-open a ticker.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientCapital rejects a debit that would drive a
	// strategy's available cash negative.
	ErrInsufficientCapital = errors.New("insufficient capital")
	// ErrDuplicatePosition rejects a second open position on the same
	// (ticker, strategy).
	ErrDuplicatePosition = errors.New("duplicate open position")
	// ErrPositionNotFound reports a close for a position that is not
	// open.
	ErrPositionNotFound = errors.New("position not found")
	// ErrNoAccount reports ledger operations against a strategy that
	// was never seeded.
	ErrNoAccount = errors.New("no capital account")
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path.
// _txlock=immediate makes every transaction take the write lock up
// front, which is what serializes concurrent strategy runs;
// _busy_timeout makes the loser of that race wait instead of failing.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back on any error.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Cost is the ledger value of qty shares at price, rounded to the
// paisa. Entries debit it; the matching exit credits the identical
// amount, recomputed from the stored entry price and quantity.
func Cost(price float64, qty int64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty)).Round(2)
}

func parseDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}
