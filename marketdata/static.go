package marketdata

import (
	"context"
	"fmt"

	"github.com/rustyeddy/swingtrader/market"
)

// Static serves candles and quotes from memory. It backs tests and
// offline dry runs.
type Static struct {
	Bars   map[string][]market.Candle
	Quotes map[string]float64
}

// NewStatic creates an empty static provider.
func NewStatic() *Static {
	return &Static{
		Bars:   map[string][]market.Candle{},
		Quotes: map[string]float64{},
	}
}

// History returns the configured candles for the ticker.
func (s *Static) History(_ context.Context, ticker string) ([]market.Candle, error) {
	bars, ok := s.Bars[ticker]
	if !ok || len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, ticker)
	}
	return bars, nil
}

// LastPrice returns the configured quote, falling back to the last
// close of the ticker's history.
func (s *Static) LastPrice(_ context.Context, ticker string) (float64, error) {
	if price, ok := s.Quotes[ticker]; ok {
		return price, nil
	}
	if bars, ok := s.Bars[ticker]; ok && len(bars) > 0 {
		return bars[len(bars)-1].Close, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrDataUnavailable, ticker)
}
