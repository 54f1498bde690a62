package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swingtrader/market"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "RELIANCE.NS", "regularMarketPrice": 2510.5},
      "timestamp": [1755907800, 1755994200, 1756080600],
      "indicators": {"quote": [{
        "open":   [2480.0, null, 2500.0],
        "high":   [2495.0, null, 2520.0],
        "low":    [2470.0, null, 2492.0],
        "close":  [2490.0, null, 2510.5],
        "volume": [1200000, null, 1350000]
      }]}
    }],
    "error": null
  }
}`

func newChartServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/RELIANCE.NS", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartFixture)
	})
	mux.HandleFunc("/v8/finance/chart/DELISTED.NS", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v8/finance/chart/BROKEN.NS", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"no data"}}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooHistory(t *testing.T) {
	t.Parallel()

	srv := newChartServer(t)
	client := NewYahooClient(srv.URL, "")

	candles, err := client.History(context.Background(), "RELIANCE")
	require.NoError(t, err)

	// The null bar in the middle is dropped.
	require.Len(t, candles, 2)
	assert.Equal(t, 2480.0, candles[0].Open)
	assert.Equal(t, 2490.0, candles[0].Close)
	assert.Equal(t, int64(1200000), candles[0].Volume)
	assert.Equal(t, 2510.5, candles[1].Close)
	assert.Equal(t, 2510.5, market.LastClose(candles))
}

func TestYahooLastPrice(t *testing.T) {
	t.Parallel()

	srv := newChartServer(t)
	client := NewYahooClient(srv.URL, "")

	price, err := client.LastPrice(context.Background(), "RELIANCE")
	require.NoError(t, err)
	assert.Equal(t, 2510.5, price)
}

func TestYahooUnknownTicker(t *testing.T) {
	t.Parallel()

	srv := newChartServer(t)
	client := NewYahooClient(srv.URL, "")

	_, err := client.History(context.Background(), "DELISTED")
	assert.ErrorIs(t, err, ErrDataUnavailable)

	_, err = client.History(context.Background(), "BROKEN")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDataUnavailable)
	assert.Contains(t, err.Error(), "no data")
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	p := NewStatic()
	p.Bars["TCS"] = []market.Candle{
		{Open: 100, High: 104, Low: 99, Close: 102},
		{Open: 102, High: 106, Low: 101, Close: 105},
	}
	ctx := context.Background()

	candles, err := p.History(ctx, "TCS")
	require.NoError(t, err)
	assert.Len(t, candles, 2)

	price, err := p.LastPrice(ctx, "TCS")
	require.NoError(t, err)
	assert.Equal(t, 105.0, price)

	p.Quotes["TCS"] = 107.5
	price, err = p.LastPrice(ctx, "TCS")
	require.NoError(t, err)
	assert.Equal(t, 107.5, price)

	_, err = p.History(ctx, "NOBODY")
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = p.LastPrice(ctx, "NOBODY")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
