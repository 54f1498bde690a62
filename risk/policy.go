// Package risk implements the decision core of the trading engine:
// stop-loss synthesis, circuit-breaker classification, position sizing
// and portfolio limit checks. Everything in this package is pure
// computation over snapshots; persistence and side effects stay in the
// store and engine packages.
package risk

import "github.com/rustyeddy/swingtrader/market"

// StopConfig selects and parameterizes the stop methods combined by
// ComputeStops. Each method can be switched off independently.
type StopConfig struct {
	FixedPct           float64 `json:"fixed_pct" yaml:"fixed_pct"`                         // 0.04 → stop 4% under entry
	SLMultiplier       float64 `json:"atr_multiplier_sl" yaml:"atr_multiplier_sl"`         // entry - ATR*k
	ChandelierMultiple float64 `json:"chandelier_multiplier" yaml:"chandelier_multiplier"` // highest - ATR*k
	SupportBufferPct   float64 `json:"support_buffer_pct" yaml:"support_buffer_pct"`       // swing low - buffer
	SupportWindow      int     `json:"support_window" yaml:"support_window"`               // bars of history for the swing low
	MaxDaysNoProgress  int     `json:"max_days_no_progress" yaml:"max_days_no_progress"`   // time-based exit age
	TargetPct          float64 `json:"target_profit_pct" yaml:"target_profit_pct"`         // take profit above entry

	UseFixed      bool `json:"use_fixed" yaml:"use_fixed"`
	UseVolatility bool `json:"use_volatility" yaml:"use_volatility"`
	UseChandelier bool `json:"use_chandelier" yaml:"use_chandelier"`
	UseSupport    bool `json:"use_support" yaml:"use_support"`
	UseTimeBased  bool `json:"use_time_based" yaml:"use_time_based"`
}

// BreakerConfig holds the two loss thresholds of the circuit breaker,
// as positive fractions (0.03 = alert at a 3% loss).
type BreakerConfig struct {
	AlertPct    float64 `json:"alert_threshold" yaml:"alert_threshold"`
	HardStopPct float64 `json:"hard_stop" yaml:"hard_stop"`
}

// ProfitLockConfig governs the stop floor applied to positions that
// have aged profitably. Floors only ever raise the stop, so stop
// monotonicity is preserved.
type ProfitLockConfig struct {
	StartDay int     `json:"start_day" yaml:"start_day"` // days held before floors activate
	TrailPct float64 `json:"trail_pct" yaml:"trail_pct"` // trail below current price once active
}

// CategoryParams are the per-category sizing parameters.
type CategoryParams struct {
	Allocation       float64 `json:"allocation" yaml:"allocation"`                 // capital earmarked for the category
	MaxPositions     int     `json:"max_positions" yaml:"max_positions"`           // concurrent positions allowed
	VolatilityFactor float64 `json:"volatility_factor" yaml:"volatility_factor"`   // risk-parity weight
	AvgVolatilityPct float64 `json:"avg_volatility_pct" yaml:"avg_volatility_pct"` // category-average ATR, % of price
}

// SizingConfig parameterizes the Kelly × risk-parity sizer.
type SizingConfig struct {
	KellyFraction    float64                            `json:"kelly_fraction" yaml:"kelly_fraction"`
	Scale            float64                            `json:"scale" yaml:"scale"`
	MinValueMultiple float64                            `json:"min_value_multiple" yaml:"min_value_multiple"` // floor: n × price
	MaxAllocationPct float64                            `json:"max_allocation_pct" yaml:"max_allocation_pct"` // cap: fraction of category allocation
	FlatDivisor      float64                            `json:"flat_divisor" yaml:"flat_divisor"`             // fallback when volatility is unknown
	Categories       map[market.Category]CategoryParams `json:"categories" yaml:"categories"`
}

// LimitPolicy is the static portfolio limit configuration of one
// strategy, consumed by CheckEntry.
type LimitPolicy struct {
	MaxTotalPositions   int                         `json:"max_total_positions" yaml:"max_total_positions"`
	MaxPerCategory      map[market.Category]int     `json:"max_per_category" yaml:"max_per_category"`
	MaxPerSector        int                         `json:"max_per_sector" yaml:"max_per_sector"`
	MaxPositionPct      float64                     `json:"max_position_pct" yaml:"max_position_pct"`
	MaxTotalExposurePct float64                     `json:"max_total_exposure_pct" yaml:"max_total_exposure_pct"`
	CategoryRatio       map[market.Category]float64 `json:"category_ratio" yaml:"category_ratio"` // exposure ceiling per category, fraction of capital
}
