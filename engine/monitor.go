package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/swingtrader/metrics"
	"github.com/rustyeddy/swingtrader/notify"
	"github.com/rustyeddy/swingtrader/risk"
	"github.com/rustyeddy/swingtrader/store"
)

// MonitorOnce runs one monitoring tick over every open position:
// refresh the high-water mark, classify the loss against the circuit
// breaker, tighten stops, then fire whichever exit applies. Positions
// with no live price are left for the next tick.
func (e *Engine) MonitorOnce(ctx context.Context) error {
	now := e.now()

	positions, err := e.store.ActivePositions(ctx, e.cfg.Strategy)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}
	e.log.Info("monitor tick", zap.Int("open", len(positions)))

	for _, pos := range positions {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.monitorPosition(ctx, pos, now); err != nil {
			return err
		}
	}

	e.refreshGauges(ctx)
	return nil
}

func (e *Engine) monitorPosition(ctx context.Context, pos store.Position, now time.Time) error {
	price, err := e.data.LastPrice(ctx, pos.Ticker)
	if err != nil {
		e.log.Warn("no live price, position left as-is",
			zap.String("ticker", pos.Ticker), zap.Error(err))
		return nil
	}

	if price > pos.HighestPrice {
		if err := e.store.MarkHighestPrice(ctx, pos.ID, price); err != nil {
			return fmt.Errorf("mark high for %s: %w", pos.Ticker, err)
		}
		pos.HighestPrice = price
	}

	daysHeld := pos.DaysHeld(now)
	mode, held, err := e.store.HoldFor(ctx, pos.Ticker, pos.Strategy, now)
	if err != nil {
		return fmt.Errorf("load hold for %s: %w", pos.Ticker, err)
	}

	// Hard stop first. No hold flag suppresses a forced exit.
	switch risk.Classify(e.cfg.Breaker, pos.EntryPrice, price) {
	case risk.StateCircuitBreaker:
		metrics.BreakerTrips.WithLabelValues(e.cfg.Strategy).Inc()
		e.log.Warn("hard stop breached, forcing exit",
			zap.String("ticker", pos.Ticker),
			zap.Float64("entry", pos.EntryPrice),
			zap.Float64("price", price))
		e.send(ctx, notify.BreakerAlert(pos.Ticker, pos.EntryPrice, price,
			risk.PnLPct(pos.EntryPrice, price)*100))
		return e.exitPosition(ctx, pos, price, "CIRCUIT-BREAKER")
	case risk.StateAlert:
		switch {
		case held && mode == store.HoldSuppressed:
			e.log.Info("alert suppressed for today", zap.String("ticker", pos.Ticker))
		case held && mode == store.HoldSmartStop:
			e.log.Info("smart-stop hold active, stops govern", zap.String("ticker", pos.Ticker))
		default:
			metrics.BreakerAlerts.WithLabelValues(e.cfg.Strategy).Inc()
			pct := risk.PnLPct(pos.EntryPrice, price) * 100
			e.send(ctx, notify.LossAlert(pos.Ticker, pos.EntryPrice, price, pct))
			e.log.Warn("loss alert sent",
				zap.String("ticker", pos.Ticker),
				zap.Float64("pnl_pct", pct))
		}
	}

	// Stop maintenance: recompute, tighten, then apply the profit
	// lock floor. Missing history keeps the stored stops.
	stop, method := pos.StopLoss, pos.StopMethod
	raised := false
	timeExit := false

	vol, swingLow, histErr := e.history(ctx, pos.Ticker)
	if histErr == nil {
		res := risk.ComputeStops(e.cfg.Stops, risk.StopInputs{
			EntryPrice:   pos.EntryPrice,
			CurrentPrice: price,
			HighestPrice: pos.HighestPrice,
			Volatility:   vol,
			DaysHeld:     daysHeld,
			SwingLow:     swingLow,
		})
		timeExit = res.TimeExit
		if next, moved := risk.Tighten(stop, res.StopLoss); moved {
			stop, method, raised = next, res.Method, true
		}
	} else {
		e.log.Warn("no history, keeping stored stops",
			zap.String("ticker", pos.Ticker), zap.Error(histErr))
	}

	lockFloor, lockActive := risk.ProfitLockStop(e.cfg.ProfitLock, pos.EntryPrice, price, daysHeld)
	if lockActive && lockFloor > stop {
		stop, method, raised = lockFloor, risk.MethodProfitLock, true
	}

	if raised {
		if err := e.store.UpdateStops(ctx, pos.ID, stop, pos.TakeProfit, method); err != nil {
			return fmt.Errorf("update stops for %s: %w", pos.Ticker, err)
		}
		e.log.Info("stop raised",
			zap.String("ticker", pos.Ticker),
			zap.Float64("stop", stop),
			zap.String("method", method))
	}

	maxHold := e.cfg.MaxHoldDays
	if lockActive && e.cfg.ExtendedMaxHoldDays > maxHold {
		maxHold = e.cfg.ExtendedMaxHoldDays
	}

	switch {
	case price <= stop:
		return e.exitPosition(ctx, pos, price, "SMART-SL-"+strings.ToUpper(method))
	case price >= pos.TakeProfit:
		return e.exitPosition(ctx, pos, price, "TAKE-PROFIT")
	case timeExit:
		return e.exitPosition(ctx, pos, price, "TIME-BASED")
	case maxHold > 0 && daysHeld >= maxHold:
		return e.exitPosition(ctx, pos, price, "MAX-HOLD")
	}
	return nil
}
