// Package signal defines the boundary with the screening service. The
// engine treats scores and recommendations as opaque and authoritative;
// how they are produced is not this repository's concern.
package signal

import (
	"context"

	"github.com/rustyeddy/swingtrader/market"
)

// Recommendation is the screener's verdict on a ticker.
type Recommendation string

const (
	Buy  Recommendation = "BUY"
	Sell Recommendation = "SELL"
	Hold Recommendation = "HOLD"
)

// Candidate is one screened ticker offered to the entry pipeline.
// Score is 0-100, RSRating a 1-99 percentile. VolatilityPct may be 0
// when the screener did not compute it; the pipeline derives ATR from
// price history anyway.
type Candidate struct {
	Ticker          string          `json:"ticker" yaml:"ticker"`
	Category        market.Category `json:"category" yaml:"category"`
	Sector          string          `json:"sector" yaml:"sector"`
	Recommendation  Recommendation  `json:"recommendation" yaml:"recommendation"`
	Score           float64         `json:"score" yaml:"score"`
	RSRating        float64         `json:"rs_rating" yaml:"rs_rating"`
	Price           float64         `json:"price" yaml:"price"`
	VolatilityPct   float64         `json:"volatility_pct" yaml:"volatility_pct"`
	IndicatorsFired []string        `json:"indicators_fired" yaml:"indicators_fired"`
}

// Provider supplies the day's candidates.
type Provider interface {
	Candidates(ctx context.Context) ([]Candidate, error)
}
