package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/swingtrader/broker"
	"github.com/rustyeddy/swingtrader/config"
	"github.com/rustyeddy/swingtrader/engine"
	"github.com/rustyeddy/swingtrader/logger"
	"github.com/rustyeddy/swingtrader/marketdata"
	"github.com/rustyeddy/swingtrader/notify"
	"github.com/rustyeddy/swingtrader/signal"
	"github.com/rustyeddy/swingtrader/store"
)

var rootCmd = &cobra.Command{
	Use:   "swingtrader",
	Short: "A rule-based swing trading engine for NSE equities",
	Long: `Swingtrader runs a rule-based equity trading system: screened
candidates are sized against a capital ledger, protected by layered
smart stops and a two-tier circuit breaker, and supervised through
Telegram.

It provides commands for:
  - Running the daily entry pipeline against a candidate file
  - Monitoring open positions, stops and the circuit breaker
  - Listening for operator hold/exit/smart-stop commands
  - Inspecting the ledger, the book and the trade journal
  - Halting and resuming trading, and setting the market regime`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgPath     string
	profileName string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to a profile file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "swing", "built-in profile: swing, daily or live-daily")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose console logging")
}

// loadProfile resolves the strategy profile: an explicit file wins,
// otherwise one of the built-in defaults. Secrets come from the
// environment, optionally seeded from a .env file.
func loadProfile() (*config.Profile, error) {
	_ = godotenv.Load()

	if cfgPath != "" {
		return config.LoadFromFile(cfgPath)
	}

	switch profileName {
	case "swing":
		return config.DefaultSwing(), nil
	case "daily":
		return config.DefaultDaily(), nil
	case "live-daily":
		return config.DefaultLiveDaily(), nil
	}
	return nil, fmt.Errorf("unknown profile %q (want swing, daily or live-daily)", profileName)
}

// app is everything a command needs wired together.
type app struct {
	cfg      *config.Profile
	log      logger.Logger
	store    *store.Store
	data     marketdata.Provider
	engine   *engine.Engine
	telegram *notify.Telegram
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
}

// buildApp assembles the engine from the profile. Failures here are
// configuration errors: nothing has touched capital yet.
func buildApp() (*app, error) {
	cfg, err := loadProfile()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(verbose)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var data marketdata.Provider
	switch cfg.Data.Provider {
	case config.DataYahoo:
		data = marketdata.NewYahooClient(cfg.Data.BaseURL, cfg.Data.Suffix)
	case config.DataStatic:
		data = marketdata.NewStatic()
	default:
		s.Close()
		return nil, fmt.Errorf("unknown data provider %q", cfg.Data.Provider)
	}

	// Live order routing does not exist yet; refusing beats silently
	// paper-trading real decisions.
	if cfg.Mode == config.ModeLive {
		s.Close()
		return nil, fmt.Errorf("live mode has no broker integration; run a paper profile")
	}

	a := &app{cfg: cfg, log: log, store: s, data: data}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.Token(), cfg.Telegram.ChatID)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect telegram: %w", err)
		}
		a.telegram = tg
		notifier = tg
	}

	eng, err := engine.New(engine.Params{
		Config:  cfg,
		Store:   s,
		Data:    data,
		Broker:  broker.NewPaper(),
		Signals: signal.NewFileProvider(cfg.CandidateFile),
		Notify:  notifier,
		Log:     log,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	a.engine = eng
	return a, nil
}
