package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/swingtrader/market"
)

// SizeInputs describes one candidate for the Kelly × risk-parity
// sizer. Volatility is the ATR in price units; zero means unknown.
type SizeInputs struct {
	Ticker     string
	Price      float64
	Volatility float64
	Category   market.Category
}

// SizeResult reports the sized position along with the intermediate
// figures, so logs and alerts can show how the number was reached.
type SizeResult struct {
	Quantity   int64
	Value      float64 // Quantity × Price
	BaseSize   float64 // category allocation / max positions
	Adjustment float64 // risk-parity volatility adjustment (0 when volatility unknown)
}

// KellySize converts price and volatility into a share count:
//
//	base  = category_allocation / category_max_positions
//	adj   = 1 / (volatility_ratio × category_volatility_factor)
//	value = base × adj × kelly × scale, clamped to
//	        [min_value_multiple × price, max_allocation_pct × allocation]
//	qty   = floor(value / price), at least 1
//
// where volatility_ratio is the stock's ATR as a percent of price over
// the category-average volatility percent. More volatile names get
// smaller positions. With volatility unknown the value falls back to a
// flat allocation / flat_divisor slice.
func KellySize(cfg SizingConfig, in SizeInputs) (SizeResult, error) {
	if in.Price <= 0 {
		return SizeResult{}, fmt.Errorf("size %s: price must be positive, got %v", in.Ticker, in.Price)
	}
	params, ok := cfg.Categories[in.Category]
	if !ok {
		return SizeResult{}, fmt.Errorf("size %s: no sizing parameters for category %q", in.Ticker, in.Category)
	}
	if params.MaxPositions <= 0 || params.Allocation <= 0 {
		return SizeResult{}, fmt.Errorf("size %s: category %q has no allocation", in.Ticker, in.Category)
	}

	res := SizeResult{BaseSize: params.Allocation / float64(params.MaxPositions)}

	var value float64
	if in.Volatility > 0 && params.AvgVolatilityPct > 0 && params.VolatilityFactor > 0 {
		volPct := in.Volatility / in.Price * 100
		ratio := volPct / params.AvgVolatilityPct
		if ratio > 0 {
			res.Adjustment = 1 / (ratio * params.VolatilityFactor)
		}
		value = res.BaseSize * res.Adjustment * cfg.KellyFraction * cfg.Scale
	} else if cfg.FlatDivisor > 0 {
		value = params.Allocation / cfg.FlatDivisor
	}

	floor := cfg.MinValueMultiple * in.Price
	ceiling := cfg.MaxAllocationPct * params.Allocation
	if value < floor {
		value = floor
	}
	if ceiling > 0 && value > ceiling {
		value = ceiling
	}

	qty := int64(math.Floor(value / in.Price))
	if qty < 1 {
		qty = 1
	}
	res.Quantity = qty
	res.Value = float64(qty) * in.Price
	return res, nil
}

// Shares is the allocation-mode quantity: how many whole shares the
// allocated capital buys at the execution price. Zero means the
// candidate cannot be afforded and must be skipped.
func Shares(capitalAllocated, price float64) int64 {
	if price <= 0 || capitalAllocated <= 0 {
		return 0
	}
	return int64(math.Floor(capitalAllocated / price))
}
