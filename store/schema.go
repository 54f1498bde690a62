// store/schema.go
package store

const Schema = `
CREATE TABLE IF NOT EXISTS positions (
	id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	strategy TEXT NOT NULL,
	category TEXT NOT NULL,
	sector TEXT NOT NULL DEFAULT '',
	entry_price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	stop_method TEXT NOT NULL DEFAULT '',
	highest_price REAL NOT NULL,
	entry_date DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'HOLD',
	exit_price REAL,
	exit_date DATETIME,
	exit_reason TEXT,
	realized_pnl TEXT,
	updated_at DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_positions_open
	ON positions(ticker, strategy) WHERE status = 'HOLD';

CREATE INDEX IF NOT EXISTS idx_positions_strategy_status
	ON positions(strategy, status);

CREATE TABLE IF NOT EXISTS capital_accounts (
	strategy TEXT PRIMARY KEY,
	initial_capital TEXT NOT NULL,
	deployed_capital TEXT NOT NULL DEFAULT '0',
	locked_profits TEXT NOT NULL DEFAULT '0',
	realized_losses TEXT NOT NULL DEFAULT '0',
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS circuit_breaker_holds (
	ticker TEXT NOT NULL,
	strategy TEXT NOT NULL,
	mode TEXT NOT NULL,
	hold_date TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (ticker, strategy, hold_date)
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	strategy TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	reason TEXT NOT NULL,
	executed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_strategy_time ON trades(strategy, executed_at);

CREATE TABLE IF NOT EXISTS trading_halts (
	halt_date TEXT PRIMARY KEY,
	reason TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS market_regime (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	regime TEXT NOT NULL,
	multiplier REAL NOT NULL,
	allow_entries INTEGER NOT NULL,
	updated_at DATETIME NOT NULL
);
`
