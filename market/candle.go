package market

import "time"

// Candle is one OHLCV bar of daily equity history.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// LastClose returns the close of the most recent bar, or 0 for an empty
// series.
func LastClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}
