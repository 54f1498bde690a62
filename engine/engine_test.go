package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swingtrader/broker"
	"github.com/rustyeddy/swingtrader/config"
	"github.com/rustyeddy/swingtrader/market"
	"github.com/rustyeddy/swingtrader/marketdata"
	"github.com/rustyeddy/swingtrader/notify"
	"github.com/rustyeddy/swingtrader/signal"
	"github.com/rustyeddy/swingtrader/store"
)

type memoNotifier struct {
	msgs []string
}

func (m *memoNotifier) Send(_ context.Context, text string) error {
	m.msgs = append(m.msgs, text)
	return nil
}

type stubSignals struct {
	list []signal.Candidate
}

func (s stubSignals) Candidates(context.Context) ([]signal.Candidate, error) {
	return s.list, nil
}

// noFillBroker places orders but never confirms a fill.
type noFillBroker struct {
	inner *broker.Paper
}

func (b *noFillBroker) PlaceOrder(ctx context.Context, req broker.OrderRequest) (string, error) {
	return b.inner.PlaceOrder(ctx, req)
}

func (b *noFillBroker) FillPrice(context.Context, string) (float64, error) {
	return 0, errors.New("fill pending")
}

type rig struct {
	t     *testing.T
	eng   *Engine
	store *store.Store
	data  *marketdata.Static
	paper *broker.Paper
	notes *memoNotifier
	cfg   *config.Profile
	clock time.Time
}

func newRig(t *testing.T, cfg *config.Profile, candidates ...signal.Candidate) *rig {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "trader.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	r := &rig{
		t:     t,
		store: s,
		data:  marketdata.NewStatic(),
		paper: broker.NewPaper(),
		notes: &memoNotifier{},
		cfg:   cfg,
		clock: time.Date(2026, time.August, 10, 9, 30, 0, 0, time.UTC),
	}

	eng, err := New(Params{
		Config:  cfg,
		Store:   s,
		Data:    r.data,
		Broker:  r.paper,
		Signals: stubSignals{list: candidates},
		Notify:  r.notes,
		Now:     func() time.Time { return r.clock },
	})
	require.NoError(t, err)
	r.eng = eng
	return r
}

func (r *rig) quote(ticker string, price float64) {
	r.data.Quotes[ticker] = price
}

// bars installs n identical daily candles so ATR and swing low come
// out as fixed, predictable numbers.
func (r *rig) bars(ticker string, n int, open, high, low, close float64) {
	day := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]market.Candle, n)
	for i := range candles {
		candles[i] = market.Candle{
			Time:   day.AddDate(0, 0, i),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 10000,
		}
	}
	r.data.Bars[ticker] = candles
}

// openPosition seeds the account on first use and books a position
// directly against the store.
func (r *rig) openPosition(ticker string, cat market.Category, sector string, entry float64, qty int64, stop, target float64) store.Position {
	r.t.Helper()
	ctx := context.Background()

	require.NoError(r.t, r.store.SeedAccount(ctx, r.cfg.Strategy, decimal.NewFromFloat(r.cfg.InitialCapital)))
	pos, err := r.store.EnterPosition(ctx, store.Position{
		Ticker:     ticker,
		Strategy:   r.cfg.Strategy,
		Category:   cat,
		Sector:     sector,
		EntryPrice: entry,
		Quantity:   qty,
		StopLoss:   stop,
		TakeProfit: target,
		StopMethod: "fixed",
		EntryDate:  r.clock,
	})
	require.NoError(r.t, err)
	return pos
}

func (r *rig) account() store.CapitalAccount {
	r.t.Helper()
	acct, err := r.store.Account(context.Background(), r.cfg.Strategy)
	require.NoError(r.t, err)
	return acct
}

func (r *rig) open() []store.Position {
	r.t.Helper()
	list, err := r.store.ActivePositions(context.Background(), r.cfg.Strategy)
	require.NoError(r.t, err)
	return list
}

func findPosition(t *testing.T, list []store.Position, ticker string) store.Position {
	t.Helper()
	for _, p := range list {
		if p.Ticker == ticker {
			return p
		}
	}
	t.Fatalf("no open position for %s", ticker)
	return store.Position{}
}

func buy(ticker string, cat market.Category, sector string, score, rs, price float64) signal.Candidate {
	return signal.Candidate{
		Ticker:         ticker,
		Category:       cat,
		Sector:         sector,
		Recommendation: signal.Buy,
		Score:          score,
		RSRating:       rs,
		Price:          price,
	}
}

func TestNewRequiresCoreDependencies(t *testing.T) {
	t.Parallel()

	s, err := store.Open(filepath.Join(t.TempDir(), "trader.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	full := Params{
		Config: config.DefaultSwing(),
		Store:  s,
		Data:   marketdata.NewStatic(),
		Broker: broker.NewPaper(),
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no config", func(p *Params) { p.Config = nil }},
		{"no store", func(p *Params) { p.Store = nil }},
		{"no data", func(p *Params) { p.Data = nil }},
		{"no broker", func(p *Params) { p.Broker = nil }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := full
			tt.mutate(&p)
			_, err := New(p)
			assert.Error(t, err)
		})
	}

	eng, err := New(full)
	require.NoError(t, err)
	assert.NotNil(t, eng.notify)
	assert.NotNil(t, eng.log)
	assert.NotNil(t, eng.now)
}

func TestRunEntriesFundsPlanAndDebitsLedger(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing(),
		buy("RELIANCE", market.LargeCap, "Energy", 90, 85, 2500),
		buy("TCS", market.LargeCap, "IT", 85, 80, 4000),
		buy("DMART", market.MidCap, "Retail", 75, 75, 4000),
	)
	r.quote("RELIANCE", 2500)
	r.quote("TCS", 4000)
	r.quote("DMART", 4000)

	require.NoError(t, r.eng.RunEntries(ctx))

	open := r.open()
	require.Len(t, open, 3)

	rel := findPosition(t, open, "RELIANCE")
	assert.Equal(t, int64(28), rel.Quantity) // 70000 ceiling / 2500
	assert.Equal(t, "Energy", rel.Sector)
	assert.Equal(t, "fixed", rel.StopMethod)
	assert.InDelta(t, 2400, rel.StopLoss, 1e-6)
	assert.InDelta(t, 2600, rel.TakeProfit, 1e-6)

	assert.Equal(t, int64(17), findPosition(t, open, "TCS").Quantity)
	assert.Equal(t, int64(17), findPosition(t, open, "DMART").Quantity)

	acct := r.account()
	assert.Equal(t, "206000", acct.DeployedCapital.String())
	assert.Equal(t, "294000", acct.AvailableCash().String())

	// Large-caps lead the execution order.
	orders := r.paper.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, "RELIANCE", orders[0].Ticker)
	assert.Equal(t, broker.Buy, orders[0].Side)
	assert.Equal(t, "TCS", orders[1].Ticker)
	assert.Equal(t, "DMART", orders[2].Ticker)

	require.Len(t, r.notes.msgs, 3)
	assert.Contains(t, r.notes.msgs[0], "BUY RELIANCE")
}

func TestRunEntriesHaltBlocksEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing(),
		buy("RELIANCE", market.LargeCap, "Energy", 90, 85, 2500))
	r.quote("RELIANCE", 2500)
	require.NoError(t, r.store.SetHalt(ctx, r.clock, "exchange maintenance"))

	require.NoError(t, r.eng.RunEntries(ctx))

	assert.Empty(t, r.open())
	assert.Empty(t, r.paper.Orders())
}

func TestRunEntriesBearRegimeBlocksEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing(),
		buy("RELIANCE", market.LargeCap, "Energy", 90, 85, 2500))
	r.quote("RELIANCE", 2500)
	require.NoError(t, r.store.SetRegime(ctx, store.Regime{
		Name:         "BEAR",
		Multiplier:   0.5,
		AllowEntries: false,
	}))

	require.NoError(t, r.eng.RunEntries(ctx))

	assert.Empty(t, r.open())
	assert.Empty(t, r.paper.Orders())
}

func TestRunEntriesRegimeMultiplierShrinksDeployable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing(),
		buy("RELIANCE", market.LargeCap, "Energy", 90, 85, 2500),
		buy("TCS", market.LargeCap, "IT", 85, 80, 4000),
		buy("DMART", market.MidCap, "Retail", 75, 75, 4000),
	)
	r.quote("RELIANCE", 2500)
	r.quote("TCS", 4000)
	r.quote("DMART", 4000)
	require.NoError(t, r.store.SetRegime(ctx, store.Regime{
		Name:         "CAUTIOUS",
		Multiplier:   0.1,
		AllowEntries: true,
	}))

	require.NoError(t, r.eng.RunEntries(ctx))

	// 10% of 500000 leaves a 30000 large-cap target: one position,
	// and the mid-cap target falls under the position minimum.
	open := r.open()
	require.Len(t, open, 1)
	assert.Equal(t, "RELIANCE", open[0].Ticker)
	assert.Equal(t, int64(12), open[0].Quantity)
	assert.Equal(t, "30000", r.account().DeployedCapital.String())
}

func TestRunEntriesStopsAtSectorLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing(),
		buy("TCS", market.LargeCap, "IT", 90, 80, 1000),
		buy("INFY", market.LargeCap, "IT", 85, 80, 1000),
		buy("WIPRO", market.LargeCap, "IT", 80, 80, 1000),
		buy("HCLTECH", market.LargeCap, "IT", 75, 80, 1000),
	)
	for _, ticker := range []string{"TCS", "INFY", "WIPRO", "HCLTECH"} {
		r.quote(ticker, 1000)
	}

	require.NoError(t, r.eng.RunEntries(ctx))

	open := r.open()
	assert.Len(t, open, 3)
	for _, p := range open {
		assert.NotEqual(t, "HCLTECH", p.Ticker)
	}
	assert.Len(t, r.paper.Orders(), 3)
}

func TestRunEntriesSkipsHeldAndRecentLossTickers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing(),
		buy("RELIANCE", market.LargeCap, "Energy", 90, 85, 2500),
		buy("TCS", market.LargeCap, "IT", 85, 80, 100),
		buy("DMART", market.MidCap, "Retail", 75, 75, 4000),
	)
	r.quote("DMART", 4000)

	// RELIANCE is already held; TCS took a loss three days ago.
	r.openPosition("RELIANCE", market.LargeCap, "Energy", 2500, 4, 2400, 2600)
	r.clock = r.clock.AddDate(0, 0, -5)
	r.openPosition("TCS", market.LargeCap, "IT", 100, 10, 96, 104)
	r.clock = r.clock.AddDate(0, 0, 5)
	_, err := r.store.ExitPosition(ctx, "TCS", r.cfg.Strategy, 90, "SMART-SL-FIXED", r.clock.AddDate(0, 0, -3))
	require.NoError(t, err)

	require.NoError(t, r.eng.RunEntries(ctx))

	open := r.open()
	require.Len(t, open, 2)
	findPosition(t, open, "RELIANCE")
	findPosition(t, open, "DMART")

	orders := r.paper.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "DMART", orders[0].Ticker)
}

func TestRunEntriesUnknownFillLeavesLedgerAlone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), "trader.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	cfg := config.DefaultSwing()
	data := marketdata.NewStatic()
	data.Quotes["RELIANCE"] = 2500
	notes := &memoNotifier{}

	eng, err := New(Params{
		Config:  cfg,
		Store:   s,
		Data:    data,
		Broker:  &noFillBroker{inner: broker.NewPaper()},
		Signals: stubSignals{list: []signal.Candidate{buy("RELIANCE", market.LargeCap, "Energy", 90, 85, 2500)}},
		Notify:  notes,
	})
	require.NoError(t, err)

	require.NoError(t, eng.RunEntries(ctx))

	open, err := s.ActivePositions(ctx, cfg.Strategy)
	require.NoError(t, err)
	assert.Empty(t, open)

	acct, err := s.Account(ctx, cfg.Strategy)
	require.NoError(t, err)
	assert.Equal(t, "0", acct.DeployedCapital.String())

	require.NotEmpty(t, notes.msgs)
	assert.Contains(t, notes.msgs[len(notes.msgs)-1], "Not recorded")
}

func TestRunEntriesKellyFlatFallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultDaily(),
		buy("INFY", market.LargeCap, "IT", 80, 75, 1500))
	r.quote("INFY", 1500)

	require.NoError(t, r.eng.RunEntries(ctx))

	// No history: flat sizing is allocation / divisor = 30000.
	open := r.open()
	require.Len(t, open, 1)
	assert.Equal(t, int64(20), open[0].Quantity)
	assert.Equal(t, "30000", r.account().DeployedCapital.String())
}

func TestRunEntriesKellyVolatilityAdjusted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultDaily(),
		buy("INFY", market.LargeCap, "IT", 80, 75, 1500))
	r.quote("INFY", 1500)
	r.bars("INFY", 15, 1500, 1530, 1470, 1500) // ATR 60, swing low 1470

	require.NoError(t, r.eng.RunEntries(ctx))

	// base 50000 × adj 0.78125 × kelly 0.05 × scale 20 = 39062.5
	open := r.open()
	require.Len(t, open, 1)
	pos := open[0]
	assert.Equal(t, int64(26), pos.Quantity)
	assert.Equal(t, "39000", r.account().DeployedCapital.String())
	assert.Equal(t, "support", pos.StopMethod)
	assert.InDelta(t, 1440.6, pos.StopLoss, 0.01)
	assert.InDelta(t, 1560, pos.TakeProfit, 1e-6)
}

func TestMonitorHardStopForcesExit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 1000, 10, 900, 1100)
	r.openPosition("TATAMOTORS", market.LargeCap, "Auto", 1000, 10, 900, 1100)
	r.quote("INFY", 945)
	r.quote("TATAMOTORS", 945)

	// A suppressed hold must not save TATAMOTORS from the hard stop.
	require.NoError(t, r.store.AddHold(ctx, "TATAMOTORS", r.cfg.Strategy, store.HoldSuppressed, r.clock))

	require.NoError(t, r.eng.MonitorOnce(ctx))

	assert.Empty(t, r.open())

	acct := r.account()
	assert.Equal(t, "0", acct.DeployedCapital.String())
	assert.Equal(t, "1100", acct.RealizedLosses.String())
	assert.Equal(t, "498900", acct.AvailableCash().String())

	var breaker, sold int
	for _, msg := range r.notes.msgs {
		if strings.Contains(msg, "CIRCUIT BREAKER") {
			breaker++
		}
		if strings.Contains(msg, "SELL") && strings.Contains(msg, "CIRCUIT-BREAKER") {
			sold++
		}
	}
	assert.Equal(t, 2, breaker)
	assert.Equal(t, 2, sold)
}

func TestMonitorAlertBandRespectsHolds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 1000, 10, 900, 1100)
	r.quote("INFY", 965) // down 3.5%: alert band

	require.NoError(t, r.eng.MonitorOnce(ctx))
	require.Len(t, r.notes.msgs, 1)
	assert.Contains(t, r.notes.msgs[0], "ALERT INFY down 3.50%")
	assert.Contains(t, r.notes.msgs[0], "/smart-stop INFY")
	require.Len(t, r.open(), 1)

	// Acknowledged: quiet for the rest of the day.
	require.NoError(t, r.store.AddHold(ctx, "INFY", r.cfg.Strategy, store.HoldSuppressed, r.clock))
	r.notes.msgs = nil
	require.NoError(t, r.eng.MonitorOnce(ctx))
	assert.Empty(t, r.notes.msgs)

	// Upgraded to smart-stop: still quiet, stops stay in charge.
	require.NoError(t, r.store.AddHold(ctx, "INFY", r.cfg.Strategy, store.HoldSmartStop, r.clock))
	require.NoError(t, r.eng.MonitorOnce(ctx))
	assert.Empty(t, r.notes.msgs)
	assert.Len(t, r.open(), 1)
}

func TestMonitorSmartStopExit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 1000, 10, 980, 1100)
	r.quote("INFY", 975) // above the alert band, below the stop

	require.NoError(t, r.eng.MonitorOnce(ctx))

	assert.Empty(t, r.open())
	trades, err := r.store.Trades(ctx, r.cfg.Strategy, 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "SELL", trades[0].Side)
	assert.Equal(t, "SMART-SL-FIXED", trades[0].Reason)
}

func TestMonitorChandelierTightensStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 100, 10, 96, 130)
	r.quote("INFY", 120)
	r.bars("INFY", 15, 100, 101, 99, 100) // ATR 2

	require.NoError(t, r.eng.MonitorOnce(ctx))

	open := r.open()
	require.Len(t, open, 1)
	pos := open[0]
	assert.InDelta(t, 120, pos.HighestPrice, 1e-6)
	assert.InDelta(t, 115, pos.StopLoss, 1e-6) // 120 − 2 × 2.5
	assert.Equal(t, "chandelier", pos.StopMethod)
}

func TestMonitorProfitLockFloorsStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 100, 10, 96, 200)
	r.clock = r.clock.AddDate(0, 0, 9)
	r.quote("INFY", 104)

	require.NoError(t, r.eng.MonitorOnce(ctx))

	open := r.open()
	require.Len(t, open, 1)
	assert.InDelta(t, 102, open[0].StopLoss, 1e-6) // +4% gain locks entry × 1.02
	assert.Equal(t, "profit-lock", open[0].StopMethod)
}

func TestMonitorMaxHoldExit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 100, 10, 90, 200)
	r.clock = r.clock.AddDate(0, 0, 11)
	r.quote("INFY", 99.5)

	require.NoError(t, r.eng.MonitorOnce(ctx))

	assert.Empty(t, r.open())
	trades, err := r.store.Trades(ctx, r.cfg.Strategy, 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "MAX-HOLD", trades[0].Reason)
}

func TestMonitorTimeBasedExit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 100, 10, 90, 200)
	r.clock = r.clock.AddDate(0, 0, 10)
	r.quote("INFY", 99.5)
	r.bars("INFY", 15, 100, 101, 99, 100)

	require.NoError(t, r.eng.MonitorOnce(ctx))

	assert.Empty(t, r.open())
	trades, err := r.store.Trades(ctx, r.cfg.Strategy, 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "TIME-BASED", trades[0].Reason)
}

func TestMonitorTakeProfitExit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 100, 10, 96, 104)
	r.quote("INFY", 105)

	require.NoError(t, r.eng.MonitorOnce(ctx))

	assert.Empty(t, r.open())
	trades, err := r.store.Trades(ctx, r.cfg.Strategy, 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "TAKE-PROFIT", trades[0].Reason)

	acct := r.account()
	assert.Equal(t, "50", acct.LockedProfits.String())
	assert.Equal(t, "500000", acct.AvailableCash().String())
}

func TestMonitorSkipsPositionWithoutQuote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 100, 10, 96, 104)

	require.NoError(t, r.eng.MonitorOnce(ctx))

	assert.Len(t, r.open(), 1)
	assert.Empty(t, r.notes.msgs)
}

func TestApplyCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := newRig(t, config.DefaultSwing())
	r.openPosition("INFY", market.LargeCap, "IT", 100, 10, 96, 200)
	r.quote("INFY", 101)

	err := r.eng.ApplyCommand(ctx, notify.Command{Action: "reboot"})
	assert.ErrorContains(t, err, "unknown command")

	require.NoError(t, r.eng.ApplyCommand(ctx, notify.Command{Action: notify.ActionHold, Ticker: "INFY"}))
	mode, held, err := r.store.HoldFor(ctx, "INFY", r.cfg.Strategy, r.clock)
	require.NoError(t, err)
	require.True(t, held)
	assert.Equal(t, store.HoldSuppressed, mode)
	assert.Contains(t, r.notes.msgs[len(r.notes.msgs)-1], "holding through today")

	require.NoError(t, r.eng.ApplyCommand(ctx, notify.Command{Action: notify.ActionSmartStop, Ticker: "INFY"}))
	mode, held, err = r.store.HoldFor(ctx, "INFY", r.cfg.Strategy, r.clock)
	require.NoError(t, err)
	require.True(t, held)
	assert.Equal(t, store.HoldSmartStop, mode)

	require.NoError(t, r.eng.ApplyCommand(ctx, notify.Command{Action: notify.ActionStatus}))
	assert.Contains(t, r.notes.msgs[len(r.notes.msgs)-1], "Positions 1 | Regime NEUTRAL")

	require.NoError(t, r.eng.ApplyCommand(ctx, notify.Command{Action: notify.ActionExit, Ticker: "ZEE"}))
	assert.Contains(t, r.notes.msgs[len(r.notes.msgs)-1], "no open position")

	require.NoError(t, r.eng.ApplyCommand(ctx, notify.Command{Action: notify.ActionExit, Ticker: "INFY"}))
	assert.Empty(t, r.open())
	trades, err := r.store.Trades(ctx, r.cfg.Strategy, 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "USER-EXIT", trades[0].Reason)
}
