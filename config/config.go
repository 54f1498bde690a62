// Package config defines strategy profiles: everything a trading run
// needs, from capital and stop parameters to transport settings.
// Profiles load from YAML or JSON files and ship with defaults for the
// swing, daily and live-daily strategies.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/swingtrader/alloc"
	"github.com/rustyeddy/swingtrader/market"
	"github.com/rustyeddy/swingtrader/risk"
)

// Execution modes.
const (
	ModePaper = "paper"
	ModeLive  = "live"
)

// Sizing modes.
const (
	SizingKelly      = "kelly"
	SizingAllocation = "allocation"
)

// Market data providers.
const (
	DataYahoo  = "yahoo"
	DataStatic = "static"
)

// Profile is the complete configuration of one strategy.
type Profile struct {
	Strategy       string  `json:"strategy" yaml:"strategy"`
	Mode           string  `json:"mode" yaml:"mode"`
	DBPath         string  `json:"db_path" yaml:"db_path"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	CandidateFile  string  `json:"candidate_file" yaml:"candidate_file"`

	SizingMode          string `json:"sizing_mode" yaml:"sizing_mode"`
	MaxHoldDays         int    `json:"max_hold_days" yaml:"max_hold_days"`
	ExtendedMaxHoldDays int    `json:"extended_max_hold_days" yaml:"extended_max_hold_days"`
	ReentryGuardDays    int    `json:"reentry_guard_days" yaml:"reentry_guard_days"`

	Breaker    risk.BreakerConfig    `json:"circuit_breaker" yaml:"circuit_breaker"`
	Stops      risk.StopConfig       `json:"stops" yaml:"stops"`
	ProfitLock risk.ProfitLockConfig `json:"profit_lock" yaml:"profit_lock"`
	Sizing     risk.SizingConfig     `json:"sizing" yaml:"sizing"`
	Limits     risk.LimitPolicy      `json:"limits" yaml:"limits"`
	Alloc      alloc.Config          `json:"allocation" yaml:"allocation"`

	Data        DataConfig     `json:"data" yaml:"data"`
	Telegram    TelegramConfig `json:"telegram,omitempty" yaml:"telegram,omitempty"`
	MetricsAddr string         `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

// DataConfig selects and parameterizes the market data provider.
type DataConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Suffix   string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// TelegramConfig wires the alert channel. The token itself never lives
// in the profile file; TokenEnv names the environment variable that
// carries it.
type TelegramConfig struct {
	TokenEnv string `json:"token_env,omitempty" yaml:"token_env,omitempty"`
	ChatID   int64  `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`
}

// Token resolves the bot token from the environment.
func (t TelegramConfig) Token() string {
	if t.TokenEnv == "" {
		return os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	return os.Getenv(t.TokenEnv)
}

// Enabled reports whether alerts should go to Telegram at all.
func (t TelegramConfig) Enabled() bool {
	return t.ChatID != 0 && t.Token() != ""
}

// LoadFromFile loads a profile from a file (YAML or JSON, tried in
// that order) and validates it.
func LoadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Profile{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the profile as YAML or JSON based on the file
// extension.
func (c *Profile) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the profile for internal consistency.
func (c *Profile) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	if c.Mode != ModePaper && c.Mode != ModeLive {
		return fmt.Errorf("mode must be %q or %q", ModePaper, ModeLive)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive")
	}

	if c.Breaker.AlertPct <= 0 {
		return fmt.Errorf("circuit_breaker.alert_threshold must be positive")
	}
	if c.Breaker.HardStopPct <= c.Breaker.AlertPct {
		return fmt.Errorf("circuit_breaker.hard_stop must exceed alert_threshold")
	}

	if !c.Stops.UseFixed && !c.Stops.UseVolatility && !c.Stops.UseChandelier &&
		!c.Stops.UseSupport && !c.Stops.UseTimeBased {
		return fmt.Errorf("stops: at least one method must be enabled")
	}
	if c.Stops.TargetPct <= 0 {
		return fmt.Errorf("stops.target_profit_pct must be positive")
	}

	switch c.SizingMode {
	case SizingKelly:
		if len(c.Sizing.Categories) == 0 {
			return fmt.Errorf("sizing.categories required for kelly sizing")
		}
	case SizingAllocation:
		if c.Alloc.MinPosition <= 0 || c.Alloc.MaxPosition < c.Alloc.MinPosition {
			return fmt.Errorf("allocation position bounds must satisfy 0 < min <= max")
		}
		var sum float64
		for cat, ratio := range c.Alloc.TargetRatio {
			if !cat.Valid() {
				return fmt.Errorf("allocation target_ratio: unknown category %q", cat)
			}
			sum += ratio
		}
		if math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("allocation target_ratio must sum to 1, got %v", sum)
		}
	default:
		return fmt.Errorf("sizing_mode must be %q or %q", SizingKelly, SizingAllocation)
	}

	if c.ExtendedMaxHoldDays < c.MaxHoldDays {
		return fmt.Errorf("extended_max_hold_days must be at least max_hold_days")
	}

	if c.Data.Provider != DataYahoo && c.Data.Provider != DataStatic {
		return fmt.Errorf("data.provider must be %q or %q", DataYahoo, DataStatic)
	}
	return nil
}

// DefaultSwing is the delivery-based swing strategy: percentage
// allocation sizing over a 60/20/20 category split, 3% alert and 5%
// hard stop.
func DefaultSwing() *Profile {
	return &Profile{
		Strategy:       "SWING",
		Mode:           ModePaper,
		DBPath:         "./swingtrader.db",
		InitialCapital: 500000,
		CandidateFile:  "./candidates.yaml",

		SizingMode:          SizingAllocation,
		MaxHoldDays:         10,
		ExtendedMaxHoldDays: 15,
		ReentryGuardDays:    7,

		Breaker: risk.BreakerConfig{AlertPct: 0.03, HardStopPct: 0.05},
		Stops: risk.StopConfig{
			FixedPct:           0.04,
			SLMultiplier:       2.0,
			ChandelierMultiple: 2.5,
			SupportBufferPct:   0.02,
			SupportWindow:      20,
			MaxDaysNoProgress:  10,
			TargetPct:          0.04,
			UseFixed:           true,
			UseVolatility:      true,
			UseChandelier:      true,
			UseSupport:         true,
			UseTimeBased:       true,
		},
		ProfitLock: risk.ProfitLockConfig{StartDay: 8, TrailPct: 0.02},
		Sizing:     defaultSizing(),
		Limits: risk.LimitPolicy{
			MaxTotalPositions: 19,
			MaxPerCategory: map[market.Category]int{
				market.LargeCap: 6,
				market.MidCap:   5,
				market.MicroCap: 8,
			},
			MaxPerSector:        3,
			MaxPositionPct:      0.14,
			MaxTotalExposurePct: 0.95,
			CategoryRatio: map[market.Category]float64{
				market.LargeCap: 0.60,
				market.MidCap:   0.20,
				market.MicroCap: 0.20,
			},
		},
		Alloc: alloc.Config{
			TargetRatio: map[market.Category]float64{
				market.LargeCap: 0.60,
				market.MidCap:   0.20,
				market.MicroCap: 0.20,
			},
			MinPosition: 25000,
			MaxPosition: 70000,
			MinScore:    60,
			MinRSRating: 70,
		},

		Data: DataConfig{Provider: DataYahoo},
	}
}

// DefaultDaily is the faster intraday-screened strategy: Kelly sizing,
// 4% alert, 5% hard stop, shorter holds.
func DefaultDaily() *Profile {
	p := DefaultSwing()
	p.Strategy = "DAILY"
	p.DBPath = "./dailytrader.db"
	p.SizingMode = SizingKelly
	p.MaxHoldDays = 5
	p.ExtendedMaxHoldDays = 8
	p.Breaker = risk.BreakerConfig{AlertPct: 0.04, HardStopPct: 0.05}
	p.Stops.MaxDaysNoProgress = 5
	p.ProfitLock.StartDay = 4
	return p
}

// DefaultLiveDaily is the real-money daily profile: same shape as
// daily with much tighter loss thresholds.
func DefaultLiveDaily() *Profile {
	p := DefaultDaily()
	p.Strategy = "LIVE-DAILY"
	p.Mode = ModeLive
	p.DBPath = "./livetrader.db"
	p.Breaker = risk.BreakerConfig{AlertPct: 0.015, HardStopPct: 0.025}
	return p
}

func defaultSizing() risk.SizingConfig {
	return risk.SizingConfig{
		KellyFraction:    0.05,
		Scale:            20,
		MinValueMultiple: 10,
		MaxAllocationPct: 0.30,
		FlatDivisor:      10,
		Categories: map[market.Category]risk.CategoryParams{
			market.LargeCap: {Allocation: 300000, MaxPositions: 6, VolatilityFactor: 0.8, AvgVolatilityPct: 2.5},
			market.MidCap:   {Allocation: 100000, MaxPositions: 5, VolatilityFactor: 1.0, AvgVolatilityPct: 4.0},
			market.MicroCap: {Allocation: 100000, MaxPositions: 8, VolatilityFactor: 1.3, AvgVolatilityPct: 6.0},
		},
	}
}
