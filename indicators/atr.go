// Package indicators holds the bar math the risk engine consumes:
// average true range as the volatility proxy and trailing swing lows
// for support-based stops. Signal-side indicators (scores, crossovers)
// are deliberately absent; those belong to the screening service.
package indicators

import (
	"math"

	"github.com/rustyeddy/swingtrader/market"
)

// DefaultATRPeriod is the lookback used when a profile does not set one.
const DefaultATRPeriod = 14

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(c market.Candle, prevClose float64) float64 {
	hl := c.High - c.Low
	hc := math.Abs(c.High - prevClose)
	lc := math.Abs(c.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR is the rolling mean of true range over the last period bars,
// using the most recent bars in the series. With fewer than period bars
// it degrades to the partial-window mean instead of failing; with no
// bars at all it returns 0. Callers treat 0 or NaN as "volatility
// unknown" and fall back to percentage-of-price stops.
func ATR(candles []market.Candle, period int) float64 {
	if len(candles) == 0 || period <= 0 {
		return 0
	}

	trs := make([]float64, len(candles))
	trs[0] = candles[0].High - candles[0].Low
	for i := 1; i < len(candles); i++ {
		trs[i] = TrueRange(candles[i], candles[i-1].Close)
	}

	window := period
	if len(trs) < window {
		window = len(trs)
	}

	sum := 0.0
	for _, tr := range trs[len(trs)-window:] {
		sum += tr
	}
	return sum / float64(window)
}

// SwingLow returns the lowest low over the trailing window bars, or 0
// when the series is empty. Used as the support level for
// support-based stops.
func SwingLow(candles []market.Candle, window int) float64 {
	if len(candles) == 0 || window <= 0 {
		return 0
	}
	start := len(candles) - window
	if start < 0 {
		start = 0
	}
	low := candles[start].Low
	for _, c := range candles[start+1:] {
		if c.Low < low {
			low = c.Low
		}
	}
	return low
}
