package risk

import (
	"errors"
	"fmt"
)

// Stop method identifiers, reported by ComputeStops and embedded in
// exit reasons ("SMART-SL-CHANDELIER").
const (
	MethodFixed      = "fixed"
	MethodATR        = "atr"
	MethodChandelier = "chandelier"
	MethodSupport    = "support"
	MethodFallback   = "fallback"
	MethodProfitLock = "profit-lock"
)

// Fallback geometry used when no stop method yields a usable level:
// stop 2% under entry, target 2% over.
const (
	fallbackStopPct   = 0.02
	fallbackTargetPct = 0.02
)

// ErrInvalidStopGeometry reports stops that do not bracket the entry
// price. An entry with such stops must be rejected before any order is
// placed.
var ErrInvalidStopGeometry = errors.New("invalid stop geometry")

// StopInputs is the per-position state the synthesizer works from.
// SwingLow is optional; zero means no support level is known.
type StopInputs struct {
	EntryPrice   float64
	CurrentPrice float64
	HighestPrice float64
	Volatility   float64
	DaysHeld     int
	SwingLow     float64
}

// StopResult is the synthesized stop decision. Levels holds every
// candidate that was computed, keyed by method, for logging and alert
// text. TimeExit flags a stagnant position for a market exit and is
// independent of the price stop.
type StopResult struct {
	StopLoss   float64
	TakeProfit float64
	Method     string
	Levels     map[string]float64
	TimeExit   bool
}

// ComputeStops combines up to five stop policies into the tightest
// protective stop. Price-level candidates are merged by taking their
// maximum (stops sit below price, so the highest is the most
// protective). The chandelier method is the only one that rises as the
// position ages, so after a rally it usually wins.
//
// The result is stateless: callers own monotonicity across calls via
// Tighten. The take profit is entry × (1+target) and is fixed for the
// life of the position.
func ComputeStops(cfg StopConfig, in StopInputs) StopResult {
	res := StopResult{Levels: make(map[string]float64)}

	if cfg.UseFixed && in.EntryPrice > 0 && cfg.FixedPct > 0 {
		res.Levels[MethodFixed] = in.EntryPrice * (1 - cfg.FixedPct)
	}
	if cfg.UseVolatility && in.Volatility > 0 {
		if s := in.EntryPrice - in.Volatility*cfg.SLMultiplier; s > 0 {
			res.Levels[MethodATR] = s
		}
	}
	if cfg.UseChandelier && in.Volatility > 0 && in.HighestPrice > 0 {
		if s := in.HighestPrice - in.Volatility*cfg.ChandelierMultiple; s > 0 {
			res.Levels[MethodChandelier] = s
		}
	}
	if cfg.UseSupport && in.SwingLow > 0 {
		res.Levels[MethodSupport] = in.SwingLow * (1 - cfg.SupportBufferPct)
	}

	res.TimeExit = cfg.UseTimeBased &&
		cfg.MaxDaysNoProgress > 0 &&
		in.DaysHeld >= cfg.MaxDaysNoProgress &&
		in.CurrentPrice <= in.EntryPrice

	// Deterministic winner: scan in a fixed order so equal levels
	// resolve the same way every run.
	for _, m := range []string{MethodFixed, MethodATR, MethodChandelier, MethodSupport} {
		level, ok := res.Levels[m]
		if !ok {
			continue
		}
		if res.Method == "" || level > res.StopLoss {
			res.StopLoss = level
			res.Method = m
		}
	}

	if res.Method == "" || res.StopLoss <= 0 {
		res.StopLoss = in.EntryPrice * (1 - fallbackStopPct)
		res.TakeProfit = in.EntryPrice * (1 + fallbackTargetPct)
		res.Method = MethodFallback
		return res
	}

	res.TakeProfit = in.EntryPrice * (1 + cfg.TargetPct)
	return res
}

// ValidateEntry checks creation-time geometry: stop < entry < take
// profit. Re-tightened stops on aged positions may legitimately sit
// above entry; this check applies only before a position is opened.
func (r StopResult) ValidateEntry(entry float64) error {
	if r.StopLoss < entry && entry < r.TakeProfit {
		return nil
	}
	return fmt.Errorf("%w: stop %.2f, entry %.2f, take profit %.2f",
		ErrInvalidStopGeometry, r.StopLoss, entry, r.TakeProfit)
}

// Tighten enforces stop monotonicity: a stop is never loosened once
// set. Returns the new stop and whether it moved.
func Tighten(previous, candidate float64) (float64, bool) {
	if candidate > previous {
		return candidate, true
	}
	return previous, false
}

// ProfitLockStop returns the locked stop floor for a position that has
// been held at least cfg.StartDay days with a positive unrealized
// gain. The floor steps with the gain: +5% locks entry×1.03, +3% locks
// entry×1.02, any gain locks entry×1.01; a trail below the current
// price is kept alongside, and the higher of the two is returned. The
// second result reports whether the lock is active.
func ProfitLockStop(cfg ProfitLockConfig, entry, current float64, daysHeld int) (float64, bool) {
	if cfg.StartDay <= 0 || daysHeld < cfg.StartDay || entry <= 0 || current <= entry {
		return 0, false
	}

	var lockPct float64
	switch pnl := PnLPct(entry, current); {
	case pnl >= 0.05:
		lockPct = 0.03
	case pnl >= 0.03:
		lockPct = 0.02
	default:
		lockPct = 0.01
	}

	floor := entry * (1 + lockPct)
	if trail := current * (1 - cfg.TrailPct); cfg.TrailPct > 0 && trail > floor {
		floor = trail
	}
	return floor, true
}
