package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/swingtrader/alloc"
	"github.com/rustyeddy/swingtrader/broker"
	"github.com/rustyeddy/swingtrader/config"
	"github.com/rustyeddy/swingtrader/market"
	"github.com/rustyeddy/swingtrader/metrics"
	"github.com/rustyeddy/swingtrader/notify"
	"github.com/rustyeddy/swingtrader/risk"
	"github.com/rustyeddy/swingtrader/signal"
	"github.com/rustyeddy/swingtrader/store"
)

// RunEntries executes one entry cycle: gate on halts and regime, plan
// capital across the BUY candidates, then admit them one at a time
// through the portfolio limits, the stop synthesizer and the ledger.
// Per-ticker problems skip the ticker; only systemic failures abort
// the cycle.
func (e *Engine) RunEntries(ctx context.Context) error {
	if e.signals == nil {
		return fmt.Errorf("engine: no signal provider configured")
	}
	now := e.now()

	if reason, halted, err := e.store.ActiveHalt(ctx, now); err != nil {
		return fmt.Errorf("check halt: %w", err)
	} else if halted {
		e.log.Warn("trading halted, skipping entries", zap.String("reason", reason))
		return nil
	}

	regime, err := e.store.CurrentRegime(ctx)
	if err != nil {
		return fmt.Errorf("load regime: %w", err)
	}
	if !regime.AllowEntries {
		e.log.Warn("regime blocks new entries", zap.String("regime", regime.Name))
		return nil
	}

	acct, err := e.account(ctx)
	if err != nil {
		return err
	}

	candidates, err := e.signals.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("load candidates: %w", err)
	}
	buys := make([]signal.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Recommendation == signal.Buy {
			buys = append(buys, c)
		}
	}
	if len(buys) == 0 {
		e.log.Info("no buy candidates")
		return nil
	}

	snap, err := e.store.Snapshot(ctx, e.cfg.Strategy)
	if err != nil {
		return fmt.Errorf("load portfolio snapshot: %w", err)
	}
	open, err := e.store.ActivePositions(ctx, e.cfg.Strategy)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}
	held := make(map[string]bool, len(open))
	for _, pos := range open {
		held[pos.Ticker] = true
	}

	available := acct.AvailableCash().InexactFloat64()
	deployable := available * regime.Multiplier
	if deployable > available {
		deployable = available
	}

	entries := e.plan(buys, deployable)
	e.log.Info("entry cycle",
		zap.Int("candidates", len(buys)),
		zap.Int("planned", len(entries)),
		zap.Float64("deployable", deployable),
		zap.String("regime", regime.Name))

	for _, ent := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if held[ent.Ticker] {
			e.log.Info("already holding, skipped", zap.String("ticker", ent.Ticker))
			continue
		}

		opened, cost, err := e.tryEnter(ctx, ent, &snap, available, now)
		if err != nil {
			return err
		}
		if opened {
			held[ent.Ticker] = true
			available -= cost
		}
	}

	e.refreshGauges(ctx)
	return nil
}

// plan turns BUY candidates into an ordered entry list. Allocation
// mode runs the percentage allocator; Kelly mode keeps score order and
// leaves capital to the sizer.
func (e *Engine) plan(buys []signal.Candidate, deployable float64) []alloc.Entry {
	if e.cfg.SizingMode == config.SizingAllocation {
		return alloc.Allocate(e.cfg.Alloc, deployable, buys).EntryOrder()
	}

	sorted := make([]signal.Candidate, len(buys))
	copy(sorted, buys)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})

	entries := make([]alloc.Entry, 0, len(sorted))
	for _, c := range sorted {
		entries = append(entries, alloc.Entry{
			Ticker:   c.Ticker,
			Category: c.Category,
			Sector:   c.Sector,
			Score:    c.Score,
			RSRating: c.RSRating,
			Price:    c.Price,
		})
	}
	return entries
}

// tryEnter walks one candidate through the admission pipeline. It
// reports whether a position was opened and at what cost; a nil error
// with opened=false means the candidate was skipped.
func (e *Engine) tryEnter(ctx context.Context, ent alloc.Entry, snap *risk.PortfolioState, available float64, now time.Time) (bool, float64, error) {
	log := e.log

	if e.cfg.ReentryGuardDays > 0 {
		since := now.AddDate(0, 0, -e.cfg.ReentryGuardDays)
		lost, err := e.store.RecentLossExit(ctx, ent.Ticker, e.cfg.Strategy, since)
		if err != nil {
			return false, 0, fmt.Errorf("re-entry guard for %s: %w", ent.Ticker, err)
		}
		if lost {
			log.Info("recent loss exit, re-entry blocked", zap.String("ticker", ent.Ticker))
			return false, 0, nil
		}
	}

	price, err := e.data.LastPrice(ctx, ent.Ticker)
	if err != nil {
		log.Warn("no live price, skipped", zap.String("ticker", ent.Ticker), zap.Error(err))
		return false, 0, nil
	}

	vol, swingLow, err := e.history(ctx, ent.Ticker)
	if err != nil {
		// Stops and sizing both degrade gracefully without history.
		log.Warn("no history, continuing without volatility",
			zap.String("ticker", ent.Ticker), zap.Error(err))
	}

	var qty int64
	switch e.cfg.SizingMode {
	case config.SizingAllocation:
		qty = risk.Shares(ent.Capital, price)
		if qty == 0 {
			log.Info("allocated capital below one share, skipped",
				zap.String("ticker", ent.Ticker),
				zap.Float64("capital", ent.Capital),
				zap.Float64("price", price))
			return false, 0, nil
		}
	default:
		res, err := risk.KellySize(e.cfg.Sizing, risk.SizeInputs{
			Ticker:     ent.Ticker,
			Price:      price,
			Volatility: vol,
			Category:   ent.Category,
		})
		if err != nil {
			log.Warn("sizing failed, skipped", zap.String("ticker", ent.Ticker), zap.Error(err))
			return false, 0, nil
		}
		qty = res.Quantity
	}
	cost := price * float64(qty)

	if dec := risk.CheckEntry(e.cfg.Limits, *snap, risk.EntryRequest{
		Ticker:   ent.Ticker,
		Category: ent.Category,
		Sector:   ent.Sector,
		Capital:  cost,
	}); !dec.Allowed {
		metrics.EntriesRejected.WithLabelValues(e.cfg.Strategy, dec.Code).Inc()
		log.Info("entry denied",
			zap.String("ticker", ent.Ticker),
			zap.String("code", dec.Code),
			zap.String("reason", dec.Reason))
		return false, 0, nil
	}

	stops := e.entryStops(price, vol, swingLow)
	if err := stops.ValidateEntry(price); err != nil {
		log.Warn("stop geometry rejected", zap.String("ticker", ent.Ticker), zap.Error(err))
		return false, 0, nil
	}

	if cost > available {
		log.Info("not enough cash remaining, skipped",
			zap.String("ticker", ent.Ticker),
			zap.Float64("cost", cost),
			zap.Float64("available", available))
		return false, 0, nil
	}

	orderID, err := e.broker.PlaceOrder(ctx, broker.OrderRequest{
		Ticker:    ent.Ticker,
		Side:      broker.Buy,
		Quantity:  qty,
		Reference: price,
	})
	if err != nil {
		log.Warn("order rejected", zap.String("ticker", ent.Ticker), zap.Error(err))
		return false, 0, nil
	}

	fill, err := e.fillPrice(ctx, orderID)
	if err != nil {
		// Never guess a fill into the book. The operator reconciles by
		// hand and the ledger stays untouched.
		log.Error("fill unknown, position not recorded",
			zap.String("ticker", ent.Ticker),
			zap.String("order_id", orderID),
			zap.Error(err))
		e.send(ctx, notify.FillUnknown(ent.Ticker, orderID))
		return false, 0, nil
	}
	if fill != price {
		stops = e.entryStops(fill, vol, swingLow)
		cost = fill * float64(qty)
	}

	pos, err := e.store.EnterPosition(ctx, store.Position{
		Ticker:     ent.Ticker,
		Strategy:   e.cfg.Strategy,
		Category:   ent.Category,
		Sector:     ent.Sector,
		EntryPrice: fill,
		Quantity:   qty,
		StopLoss:   stops.StopLoss,
		TakeProfit: stops.TakeProfit,
		StopMethod: stops.Method,
		EntryDate:  now,
	})
	if errors.Is(err, store.ErrInsufficientCapital) || errors.Is(err, store.ErrDuplicatePosition) {
		log.Warn("ledger refused entry", zap.String("ticker", ent.Ticker), zap.Error(err))
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("record entry %s: %w", ent.Ticker, err)
	}

	admit(snap, ent.Category, ent.Sector, cost)
	metrics.EntriesTotal.WithLabelValues(e.cfg.Strategy).Inc()
	log.Info("position opened",
		zap.String("ticker", pos.Ticker),
		zap.Int64("qty", pos.Quantity),
		zap.Float64("entry", pos.EntryPrice),
		zap.Float64("stop", pos.StopLoss),
		zap.Float64("target", pos.TakeProfit),
		zap.String("method", pos.StopMethod))
	e.send(ctx, notify.EntryAlert(pos.Ticker, pos.Quantity, pos.EntryPrice, pos.StopLoss, pos.TakeProfit, pos.StopMethod))
	return true, cost, nil
}

// entryStops synthesizes creation-time stops at the given price.
func (e *Engine) entryStops(price, vol, swingLow float64) risk.StopResult {
	return risk.ComputeStops(e.cfg.Stops, risk.StopInputs{
		EntryPrice:   price,
		CurrentPrice: price,
		HighestPrice: price,
		Volatility:   vol,
		SwingLow:     swingLow,
	})
}

// admit folds a freshly opened position into the running snapshot so
// later candidates in the same cycle see it.
func admit(s *risk.PortfolioState, cat market.Category, sector string, cost float64) {
	s.TotalPositions++
	if s.ByCategory == nil {
		s.ByCategory = map[market.Category]int{}
	}
	s.ByCategory[cat]++
	if sector != "" {
		if s.BySector == nil {
			s.BySector = map[string]int{}
		}
		s.BySector[sector]++
	}
	if s.CategoryExposure == nil {
		s.CategoryExposure = map[market.Category]float64{}
	}
	s.CategoryExposure[cat] += cost
	s.TotalExposure += cost
}
