// Package marketdata supplies price history and live quotes for the
// engine. Providers are interchangeable: the Yahoo client for real
// runs, the static provider for tests and dry runs.
package marketdata

import (
	"context"
	"errors"

	"github.com/rustyeddy/swingtrader/market"
)

// ErrDataUnavailable reports that a provider has no usable data for a
// ticker. Callers skip the ticker and move on rather than abort the
// whole run.
var ErrDataUnavailable = errors.New("market data unavailable")

// Provider supplies candles and quotes.
type Provider interface {
	// History returns daily candles for the ticker, oldest first.
	History(ctx context.Context, ticker string) ([]market.Candle, error)

	// LastPrice returns the most recent traded price for the ticker.
	LastPrice(ctx context.Context, ticker string) (float64, error)
}
