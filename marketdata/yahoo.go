package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rustyeddy/swingtrader/market"
)

// DefaultBaseURL is Yahoo Finance's public chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// NSESuffix is appended to bare tickers to address the National Stock
// Exchange listing on Yahoo (RELIANCE -> RELIANCE.NS).
const NSESuffix = ".NS"

// YahooClient fetches daily candles and quotes from the Yahoo Finance
// chart API.
type YahooClient struct {
	baseURL    string
	suffix     string
	histRange  string
	httpClient *http.Client
}

// NewYahooClient creates a Yahoo Finance client. Empty baseURL selects
// the public endpoint, empty suffix selects NSE listings.
func NewYahooClient(baseURL, suffix string) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if suffix == "" {
		suffix = NSESuffix
	}

	return &YahooClient{
		baseURL:   baseURL,
		suffix:    suffix,
		histRange: "3mo",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// chartResponse mirrors the v8 chart API envelope.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []quoteBlock `json:"quote"`
	} `json:"indicators"`
}

// quoteBlock carries parallel OHLCV arrays. Yahoo emits null for bars
// it has no data for, hence the pointers.
type quoteBlock struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// History fetches daily candles for the ticker, oldest first. Bars the
// exchange has no data for are skipped.
func (c *YahooClient) History(ctx context.Context, ticker string) ([]market.Candle, error) {
	result, err := c.chart(ctx, ticker, c.histRange)
	if err != nil {
		return nil, err
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s has no quote data", ErrDataUnavailable, ticker)
	}
	quote := result.Indicators.Quote[0]

	candles := make([]market.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		// Null bars carry no trade data.
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}

		candle := market.Candle{
			Time:  time.Unix(ts, 0).UTC(),
			Open:  *quote.Open[i],
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s returned no candles", ErrDataUnavailable, ticker)
	}
	return candles, nil
}

// LastPrice returns the latest traded price, preferring the live
// market quote and falling back to the last daily close.
func (c *YahooClient) LastPrice(ctx context.Context, ticker string) (float64, error) {
	result, err := c.chart(ctx, ticker, "1d")
	if err != nil {
		return 0, err
	}

	if result.Meta.RegularMarketPrice > 0 {
		return result.Meta.RegularMarketPrice, nil
	}

	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		for i := len(quote.Close) - 1; i >= 0; i-- {
			if quote.Close[i] != nil && *quote.Close[i] > 0 {
				return *quote.Close[i], nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s has no price", ErrDataUnavailable, ticker)
}

func (c *YahooClient) chart(ctx context.Context, ticker, histRange string) (chartResult, error) {
	if ticker == "" {
		return chartResult{}, fmt.Errorf("ticker is required")
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", histRange)

	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		c.baseURL, url.PathEscape(ticker+c.suffix), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return chartResult{}, fmt.Errorf("create request: %w", err)
	}
	// Yahoo rejects requests without a browser-looking agent.
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; swingtrader)")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return chartResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return chartResult{}, fmt.Errorf("%w: %s not listed", ErrDataUnavailable, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return chartResult{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return chartResult{}, fmt.Errorf("decode response: %w", err)
	}

	if apiResp.Chart.Error != nil {
		return chartResult{}, fmt.Errorf("chart error for %s: %s (%s)",
			ticker, apiResp.Chart.Error.Description, apiResp.Chart.Error.Code)
	}
	if len(apiResp.Chart.Result) == 0 {
		return chartResult{}, fmt.Errorf("%w: %s returned empty result", ErrDataUnavailable, ticker)
	}
	return apiResp.Chart.Result[0], nil
}
