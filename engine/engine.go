// Package engine drives the trading day: the entry pipeline that turns
// screened candidates into funded positions, the monitor tick that
// walks open positions through stops and the circuit breaker, and the
// operator command handlers.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/swingtrader/broker"
	"github.com/rustyeddy/swingtrader/config"
	"github.com/rustyeddy/swingtrader/indicators"
	"github.com/rustyeddy/swingtrader/logger"
	"github.com/rustyeddy/swingtrader/marketdata"
	"github.com/rustyeddy/swingtrader/metrics"
	"github.com/rustyeddy/swingtrader/notify"
	"github.com/rustyeddy/swingtrader/risk"
	"github.com/rustyeddy/swingtrader/signal"
	"github.com/rustyeddy/swingtrader/store"
)

// Params carries the engine's dependencies. Config, Store, Data and
// Broker are required; Signals only for the entry pipeline; Notify,
// Log and Now default to no-ops.
type Params struct {
	Config  *config.Profile
	Store   *store.Store
	Data    marketdata.Provider
	Broker  broker.Broker
	Signals signal.Provider
	Notify  notify.Notifier
	Log     logger.Logger
	Now     func() time.Time
}

// Engine coordinates one strategy's positions, capital and alerts.
type Engine struct {
	cfg     *config.Profile
	store   *store.Store
	data    marketdata.Provider
	broker  broker.Broker
	signals signal.Provider
	notify  notify.Notifier
	log     logger.Logger
	now     func() time.Time
}

// New validates the dependencies and builds an engine.
func New(p Params) (*Engine, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("engine: config is required")
	}
	if p.Store == nil {
		return nil, fmt.Errorf("engine: store is required")
	}
	if p.Data == nil {
		return nil, fmt.Errorf("engine: market data provider is required")
	}
	if p.Broker == nil {
		return nil, fmt.Errorf("engine: broker is required")
	}
	if p.Notify == nil {
		p.Notify = notify.Nop{}
	}
	if p.Log == nil {
		p.Log = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}

	return &Engine{
		cfg:     p.Config,
		store:   p.Store,
		data:    p.Data,
		broker:  p.Broker,
		signals: p.Signals,
		notify:  p.Notify,
		log:     p.Log,
		now:     p.Now,
	}, nil
}

// account loads the strategy's capital account, seeding it from the
// profile on first contact.
func (e *Engine) account(ctx context.Context) (store.CapitalAccount, error) {
	acct, err := e.store.Account(ctx, e.cfg.Strategy)
	if err == nil {
		return acct, nil
	}

	if seedErr := e.store.SeedAccount(ctx, e.cfg.Strategy, decimal.NewFromFloat(e.cfg.InitialCapital)); seedErr != nil {
		return store.CapitalAccount{}, fmt.Errorf("seed account: %w", seedErr)
	}
	return e.store.Account(ctx, e.cfg.Strategy)
}

// exitPosition sells the position, books the result and tells the
// operator. The store write happens at the fill price; an unknown fill
// falls back to the reference price rather than leaving the book
// open.
func (e *Engine) exitPosition(ctx context.Context, pos store.Position, price float64, reason string) error {
	orderID, err := e.broker.PlaceOrder(ctx, broker.OrderRequest{
		Ticker:    pos.Ticker,
		Side:      broker.Sell,
		Quantity:  pos.Quantity,
		Reference: price,
	})
	if err != nil {
		return fmt.Errorf("place sell order for %s: %w", pos.Ticker, err)
	}

	fill := price
	if got, err := e.fillPrice(ctx, orderID); err != nil {
		e.log.Warn("sell fill unknown, booking at reference price",
			zap.String("ticker", pos.Ticker),
			zap.String("order_id", orderID),
			zap.Error(err))
	} else {
		fill = got
	}

	closed, err := e.store.ExitPosition(ctx, pos.Ticker, pos.Strategy, fill, reason, e.now())
	if err != nil {
		return fmt.Errorf("close %s: %w", pos.Ticker, err)
	}

	metrics.ExitsTotal.WithLabelValues(e.cfg.Strategy, reason).Inc()
	e.log.Info("position closed",
		zap.String("ticker", closed.Ticker),
		zap.String("reason", reason),
		zap.Float64("entry", closed.EntryPrice),
		zap.Float64("exit", closed.ExitPrice),
		zap.String("pnl", closed.RealizedPnL.String()))

	e.send(ctx, notify.ExitAlert(
		closed.Ticker, closed.Quantity, closed.EntryPrice, closed.ExitPrice,
		closed.RealizedPnL.InexactFloat64(),
		risk.PnLPct(closed.EntryPrice, closed.ExitPrice)*100,
		reason))
	return nil
}

// fillPrice asks the broker for the fill, retrying once.
func (e *Engine) fillPrice(ctx context.Context, orderID string) (float64, error) {
	fill, err := e.broker.FillPrice(ctx, orderID)
	if err == nil {
		return fill, nil
	}
	return e.broker.FillPrice(ctx, orderID)
}

// send delivers a notification, logging delivery failures instead of
// failing the trading flow.
func (e *Engine) send(ctx context.Context, text string) {
	if err := e.notify.Send(ctx, text); err != nil {
		e.log.Warn("notification failed", zap.Error(err))
	}
}

// refreshGauges publishes the book and ledger to the metric gauges.
func (e *Engine) refreshGauges(ctx context.Context) {
	snap, err := e.store.Snapshot(ctx, e.cfg.Strategy)
	if err == nil {
		metrics.OpenPositions.WithLabelValues(e.cfg.Strategy).Set(float64(snap.TotalPositions))
	}
	acct, err := e.store.Account(ctx, e.cfg.Strategy)
	if err == nil {
		metrics.AvailableCash.WithLabelValues(e.cfg.Strategy).Set(acct.AvailableCash().InexactFloat64())
		metrics.DeployedCapital.WithLabelValues(e.cfg.Strategy).Set(acct.DeployedCapital.InexactFloat64())
	}
}

// position finds an open position by ticker.
func (e *Engine) position(ctx context.Context, ticker string) (store.Position, error) {
	open, err := e.store.ActivePositions(ctx, e.cfg.Strategy)
	if err != nil {
		return store.Position{}, err
	}
	for _, pos := range open {
		if pos.Ticker == ticker {
			return pos, nil
		}
	}
	return store.Position{}, fmt.Errorf("%w: %s/%s", store.ErrPositionNotFound, ticker, e.cfg.Strategy)
}

// history loads candles and derives the indicator state stops need.
func (e *Engine) history(ctx context.Context, ticker string) (vol, swingLow float64, err error) {
	candles, err := e.data.History(ctx, ticker)
	if err != nil {
		return 0, 0, err
	}
	vol = indicators.ATR(candles, indicators.DefaultATRPeriod)
	swingLow = indicators.SwingLow(candles, e.cfg.Stops.SupportWindow)
	return vol, swingLow, nil
}
